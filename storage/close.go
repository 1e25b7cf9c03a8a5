package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StreakKeeper/pkg/logger"
	"StreakKeeper/storage/database"
	"StreakKeeper/storage/mq"
	"StreakKeeper/storage/redis"
)

// Close 按 MQ -> Redis -> Database 的顺序关闭：先停止对外发事件，最后关闭状态存储
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := []struct {
		name  string
		close func(context.Context) error
	}{
		{"message queue", mq.Close},
		{"redis", redis.Close},
		{"database", database.Close},
	}

	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage component", zap.String("component", c.name), zap.Error(err))
			continue
		}
		logger.Logger.Info("Storage component closed", zap.String("component", c.name))
	}
}
