package database

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey      = "otel:span"
	startTimeKey = "otel:start_time"
)

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName   string
	EnableMetrics bool
	// SQL 截断长度，0 表示不记录 SQL
	MaxSQLLength int
}

// DefaultPluginConfig 默认插件配置
func DefaultPluginConfig(serviceName string) PluginConfig {
	return PluginConfig{
		ServiceName:   serviceName,
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

// OTELPlugin GORM OpenTelemetry 插件，为每条语句创建 client span 并记录耗时
type OTELPlugin struct {
	tracer        trace.Tracer
	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
	config        PluginConfig
}

// NewOTELPlugin 创建插件实例
func NewOTELPlugin(config PluginConfig, meter metric.Meter) (*OTELPlugin, error) {
	p := &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
	if !config.EnableMetrics {
		return p, nil
	}

	var err error
	p.queriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	p.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	register := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
		anchor string
	}{
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "query"},
		{"insert", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "create"},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, "row"},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}

	for _, r := range register {
		if err := r.before("otel:before_"+r.anchor, p.before("db."+r.op)); err != nil {
			return err
		}
		if err := r.after("otel:after_"+r.anchor, p.after("db."+r.op)); err != nil {
			return err
		}
	}
	return nil
}

func (p *OTELPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				semconv.DBOperation(operation),
			),
		)

		db.InstanceSet(startTimeKey, time.Now())
		db.InstanceSet(spanKey, span)
		db.Statement.Context = ctx
	}
}

func (p *OTELPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(spanKey)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if table := db.Statement.Table; table != "" {
			span.SetAttributes(semconv.DBSQLTable(table))
		}
		if p.config.MaxSQLLength > 0 {
			sql := db.Statement.SQL.String()
			if len(sql) > p.config.MaxSQLLength {
				sql = sql[:p.config.MaxSQLLength] + "..."
			}
			// 只记录带占位符的语句，不记录参数
			span.SetAttributes(semconv.DBStatement(sql))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		status := "success"
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Ok, "record not found")
		default:
			status = "error"
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		if p.queriesTotal == nil {
			return
		}
		var elapsed float64
		if start, ok := db.InstanceGet(startTimeKey); ok {
			if t, ok := start.(time.Time); ok {
				elapsed = time.Since(t).Seconds()
			}
		}
		p.record(db.Statement.Context, operation, status, elapsed)
	}
}

func (p *OTELPlugin) record(ctx context.Context, operation, status string, elapsed float64) {
	labels := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	p.queriesTotal.Add(ctx, 1, labels)
	p.queryDuration.Record(ctx, elapsed, labels)
}

// WithOTELPlugin 为 GORM 添加 OpenTelemetry 插件
func WithOTELPlugin(db *gorm.DB, config PluginConfig) error {
	plugin, err := NewOTELPlugin(config, otel.Meter(config.ServiceName+".gorm"))
	if err != nil {
		return err
	}
	return db.Use(plugin)
}
