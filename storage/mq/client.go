package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"StreakKeeper/config"
	"StreakKeeper/pkg/logger"
)

var (
	conn     *amqp.Connection
	connMu   sync.RWMutex
	exchange string
)

// Init 建立连接并声明事件交换机（topic，持久化）
func Init() error {
	cfg := config.Cfg

	c, err := amqp.Dial(cfg.GetRabbitMQURL())
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		cfg.RabbitMQExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.RabbitMQExchange, err)
	}

	connMu.Lock()
	conn = c
	exchange = cfg.RabbitMQExchange
	connMu.Unlock()

	logger.Logger.Info("RabbitMQ connected",
		zap.String("component", "rabbitmq"),
		zap.String("exchange", cfg.RabbitMQExchange),
	)
	return nil
}

// Connection 未初始化时返回 nil
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

// Exchange 事件交换机名称
func Exchange() string {
	connMu.RLock()
	defer connMu.RUnlock()
	return exchange
}

func Close(ctx context.Context) error {
	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	connMu.Lock()
	defer connMu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close()
	conn = nil
	return err
}
