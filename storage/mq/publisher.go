package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"StreakKeeper/pkg/logger"
	mqotel "StreakKeeper/pkg/mq"
)

// 发布通道单例，通道被关闭后在下一次发布时重建

var (
	publisherCh *amqp.Channel
	pubMutex    sync.Mutex
)

func getPublisherChannel() (*amqp.Channel, error) {
	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.IsClosed() {
		return publisherCh, nil
	}

	c := Connection()
	if c == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	publisherCh = ch

	go func(ch *amqp.Channel) {
		closeChan := ch.NotifyClose(make(chan *amqp.Error, 1))
		<-closeChan

		pubMutex.Lock()
		if publisherCh == ch {
			publisherCh = nil
		}
		pubMutex.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}(ch)

	logger.Logger.Info("Publisher channel created",
		zap.String("component", "rabbitmq"),
	)

	return publisherCh, nil
}

// PublishMessage 以 JSON 发送持久化消息到事件交换机，trace 上下文写入消息头
func PublishMessage(ctx context.Context, routingKey, messageID string, body interface{}) error {
	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := amqp.Table{}
	ctx, span := mqotel.StartPublishSpan(ctx, Exchange(), routingKey, messageID, headers)

	err = ch.PublishWithContext(
		ctx,
		Exchange(),
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			MessageId:    messageID,
			Body:         bodyBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	mqotel.EndPublishSpan(span, len(bodyBytes), err)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
