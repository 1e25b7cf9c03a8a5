package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const maxKeysPerSpan = 5

// TracingHook Redis 追踪 Hook，只记录命令名和键名，不记录值（锁 token 等）
type TracingHook struct {
	tracer          trace.Tracer
	commandsTotal   metric.Int64Counter
	commandDuration metric.Float64Histogram
	attrs           []attribute.KeyValue
}

// NewTracingHook 创建追踪 Hook
func NewTracingHook(serviceName string, db int, meter metric.Meter) (*TracingHook, error) {
	th := &TracingHook{
		tracer: otel.Tracer(serviceName + ".redis"),
		attrs: []attribute.KeyValue{
			semconv.DBSystemRedis,
			semconv.DBRedisDBIndex(db),
		},
	}

	var err error
	th.commandsTotal, err = meter.Int64Counter(
		"redis.commands.total",
		metric.WithDescription("Total number of Redis commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	th.commandDuration, err = meter.Float64Histogram(
		"redis.command.duration",
		metric.WithDescription("Redis command duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}
	return th, nil
}

// DialHook 实现 redis.Hook 接口
func (th *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

// ProcessHook 实现 redis.Hook 接口
func (th *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis."+cmd.Name(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		span.SetAttributes(semconv.DBOperation(cmd.Name()))
		if keys := extractKeys(cmd.Name(), cmd.Args()); len(keys) > 0 {
			span.SetAttributes(attribute.StringSlice("redis.keys", keys))
		}

		start := time.Now()
		err := next(ctx, cmd)

		status := "success"
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, redis.Nil):
			status = "not_found"
			span.SetStatus(codes.Ok, "key not found")
		default:
			status = "error"
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		}

		labels := metric.WithAttributes(
			attribute.String("redis.command", cmd.Name()),
			attribute.String("redis.status", status),
		)
		th.commandsTotal.Add(ctx, 1, labels)
		th.commandDuration.Record(ctx, time.Since(start).Seconds(), labels)

		return err
	}
}

// ProcessPipelineHook 实现 redis.Hook 接口
func (th *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}
		span.SetAttributes(
			attribute.Int("redis.pipeline.count", len(cmds)),
			attribute.String("redis.pipeline.commands", strings.Join(names, ";")),
		)

		start := time.Now()
		err := next(ctx, cmds)

		failed := 0
		for _, cmd := range cmds {
			if cmd.Err() != nil && !errors.Is(cmd.Err(), redis.Nil) {
				failed++
			}
		}
		span.SetAttributes(attribute.Int("redis.pipeline.error_count", failed))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}

		labels := metric.WithAttributes(
			attribute.String("redis.command", "pipeline"),
			attribute.Bool("redis.failed", err != nil),
		)
		th.commandsTotal.Add(ctx, 1, labels)
		th.commandDuration.Record(ctx, time.Since(start).Seconds(), labels)

		return err
	}
}

// extractKeys 只取第一个参数作为键；EVALSHA/EVAL 的键在 numkeys 之后
func extractKeys(name string, args []interface{}) []string {
	keys := make([]string, 0, 1)

	switch strings.ToLower(name) {
	case "eval", "evalsha":
		if len(args) < 3 {
			return keys
		}
		n, ok := args[2].(int)
		if !ok {
			return keys
		}
		for i := 0; i < n && 3+i < len(args) && len(keys) < maxKeysPerSpan; i++ {
			if key, ok := args[3+i].(string); ok {
				keys = append(keys, truncate(key))
			}
		}
	default:
		if len(args) > 1 {
			if key, ok := args[1].(string); ok {
				keys = append(keys, truncate(key))
			}
		}
	}
	return keys
}

func truncate(key string) string {
	if len(key) > 100 {
		return key[:100] + "..."
	}
	return key
}

// InstrumentClient 为 Redis 客户端添加 OpenTelemetry 支持
func InstrumentClient(client *redis.Client, serviceName string, db int) error {
	hook, err := NewTracingHook(serviceName, db, otel.Meter(serviceName+".redis"))
	if err != nil {
		return err
	}
	client.AddHook(hook)
	return nil
}
