package middleware

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"StreakKeeper/pkg/logger"
)

// Init 初始化需要预先创建的中间件资源（HTTP 指标）
func Init() error {
	if err := InitMetrics(otel.Meter("streakkeeper-http")); err != nil {
		logger.Logger.Error("Failed to initialize http metrics", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
