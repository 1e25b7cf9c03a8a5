package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StreakKeeper/config"
	"StreakKeeper/internal/cache"
	"StreakKeeper/internal/queue"
	"StreakKeeper/internal/schedule"
	"StreakKeeper/internal/service"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/metrics"
	"StreakKeeper/pkg/otel"
	"StreakKeeper/pkg/snowflake"
	"StreakKeeper/storage"
	"StreakKeeper/storage/redis"
)

var version = "dev"

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTelEnabled {
		otelCfg := otel.FromConfig(&config.Cfg, version)
		otelCfg.ServiceName = config.Cfg.ServiceName + "-scheduler"
		shutdown, err := otel.InitOpenTelemetry(ctx, otelCfg)
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry for scheduler", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 与 server 使用不同的机器号，避免消息 ID 冲突
	if err := snowflake.Init((config.Cfg.SnowflakeMachineID+1)%32, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics for scheduler", zap.Error(err))
	}

	checkIn, err := service.NewCheckInServiceFromConfig(&config.Cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to build check-in service for scheduler", zap.Error(err))
	}

	if config.Cfg.StoreDriver == "memory" {
		logger.Logger.Warn("Scheduler is using the in-memory store, it will not see check-ins made through the server")
	}

	var marker cache.ReminderMarker = cache.NewLocalReminderMarker()
	if client := redis.Client(); client != nil {
		marker = cache.NewRedisReminderMarker(client)
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if config.Cfg.RabbitMQEnabled {
		publisher = queue.NewMQPublisher()
	}

	reminders := schedule.NewReminderScheduler(
		checkIn,
		checkIn.Engine().Policy(),
		checkIn.Clock(),
		marker,
		publisher,
		config.Cfg.ReminderLeadMinutes,
	)

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Int("reminder_lead_minutes", config.Cfg.ReminderLeadMinutes),
	)

	reminders.Run(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
