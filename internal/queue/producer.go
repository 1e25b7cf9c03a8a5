package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/snowflake"
	"StreakKeeper/storage/mq"
)

// Publisher 事件发布接口，service 和 scheduler 依赖它而不是直接依赖 mq
type Publisher interface {
	PublishStreakEvent(ctx context.Context, routingKey string, msg StreakEventMessage) error
	PublishReminder(ctx context.Context, msg CheckpointReminderMessage) error
}

// publishFunc 与 mq.PublishMessage 同签名，测试时替换
type publishFunc func(ctx context.Context, routingKey, messageID string, body interface{}) error

const publishTimeout = 3 * time.Second

// MQPublisher 通过 RabbitMQ 事件交换机发布
type MQPublisher struct {
	publish publishFunc
	breaker *CircuitBreaker
}

func NewMQPublisher() *MQPublisher {
	return newMQPublisher(mq.PublishMessage)
}

func newMQPublisher(fn publishFunc) *MQPublisher {
	return &MQPublisher{
		publish: fn,
		// 连续失败 5 次后熔断 30 秒
		breaker: NewCircuitBreaker("rabbitmq_publish", 5, 30*time.Second),
	}
}

// PublishStreakEvent 发布 streak.* 事件
func (p *MQPublisher) PublishStreakEvent(ctx context.Context, routingKey string, msg StreakEventMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextMessageID("streak")
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = id
	}

	if err := p.send(ctx, routingKey, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish streak event",
			zap.String("routing_key", routingKey),
			zap.String("message_id", msg.MessageID),
			zap.String("date", msg.Date),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published streak event",
		zap.String("routing_key", routingKey),
		zap.String("message_id", msg.MessageID),
		zap.String("checkpoint", msg.Checkpoint),
		zap.Int("current_streak", msg.CurrentStreak),
	)
	return nil
}

// PublishReminder 发布 checkpoint.reminder
func (p *MQPublisher) PublishReminder(ctx context.Context, msg CheckpointReminderMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextMessageID("reminder")
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = id
	}

	if err := p.send(ctx, RoutingKeyReminder, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish checkpoint reminder",
			zap.String("message_id", msg.MessageID),
			zap.String("checkpoint", msg.Checkpoint),
			zap.String("date", msg.Date),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published checkpoint reminder",
		zap.String("message_id", msg.MessageID),
		zap.String("checkpoint", msg.Checkpoint),
		zap.String("deadline", msg.Deadline),
	)
	return nil
}

func (p *MQPublisher) send(ctx context.Context, routingKey, messageID string, body interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.breaker.Call(func() error {
		return p.publish(ctx, routingKey, messageID, body)
	})
}

// NopPublisher 未启用 RabbitMQ 时使用，只记日志
type NopPublisher struct{}

func (NopPublisher) PublishStreakEvent(ctx context.Context, routingKey string, msg StreakEventMessage) error {
	logger.Logger.Debug("RabbitMQ disabled, streak event dropped",
		zap.String("routing_key", routingKey),
		zap.String("date", msg.Date),
	)
	return nil
}

func (NopPublisher) PublishReminder(ctx context.Context, msg CheckpointReminderMessage) error {
	logger.Logger.Debug("RabbitMQ disabled, reminder dropped",
		zap.String("checkpoint", msg.Checkpoint),
		zap.String("date", msg.Date),
	)
	return nil
}
