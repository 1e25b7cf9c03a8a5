package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 打卡相关指标集合
type OTelMetrics struct {
	CheckInTotal         metric.Int64Counter
	CheckInViolations    metric.Int64Counter
	CurrentStreak        metric.Int64Gauge
	StoreConflictTotal   metric.Int64Counter
	EventPublishFailed   metric.Int64Counter
	ReminderPublishTotal metric.Int64Counter
}

var (
	// 全局指标实例，InitMetrics 之前为 nil，记录函数直接跳过
	metrics *OTelMetrics
	meter   = otel.Meter("streakkeeper")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m := &OTelMetrics{}
	var err error

	m.CheckInTotal, err = meter.Int64Counter(
		"checkin_total",
		metric.WithDescription("Total number of processed check-ins by checkpoint and status"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return err
	}

	m.CheckInViolations, err = meter.Int64Counter(
		"checkin_violation_total",
		metric.WithDescription("Strikes applied, by source (rollover, lateness) and kind (warning, reset)"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return err
	}

	m.CurrentStreak, err = meter.Int64Gauge(
		"checkin_current_streak",
		metric.WithDescription("Current streak after the latest persisted check-in"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return err
	}

	m.StoreConflictTotal, err = meter.Int64Counter(
		"checkin_store_conflict_total",
		metric.WithDescription("Conditional writes rejected because the state record changed"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return err
	}

	m.EventPublishFailed, err = meter.Int64Counter(
		"checkin_event_publish_failed_total",
		metric.WithDescription("Streak events that could not be published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.ReminderPublishTotal, err = meter.Int64Counter(
		"checkpoint_reminder_total",
		metric.WithDescription("Checkpoint reminders published by the scheduler"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordCheckIn 记录一次成功落库的打卡
func RecordCheckIn(ctx context.Context, checkpoint, status string, currentStreak int) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.CheckInTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("checkpoint", checkpoint),
		attribute.String("status", status),
	))
	m.CurrentStreak.Record(ctx, int64(currentStreak))
}

// RecordViolation 记录一次处罚，source 为 rollover 或 lateness
func RecordViolation(ctx context.Context, source, kind string) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.CheckInViolations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("kind", kind),
	))
}

// RecordStoreConflict 记录条件写冲突
func RecordStoreConflict(ctx context.Context) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.StoreConflictTotal.Add(ctx, 1)
}

// RecordEventPublishFailed 记录事件发布失败
func RecordEventPublishFailed(ctx context.Context, routingKey string) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.EventPublishFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("routing_key", routingKey),
	))
}

// RecordReminder 记录提醒发送结果
func RecordReminder(ctx context.Context, checkpoint string, success bool) {
	m := GetMetrics()
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failed"
	}
	m.ReminderPublishTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("checkpoint", checkpoint),
		attribute.String("status", status),
	))
}
