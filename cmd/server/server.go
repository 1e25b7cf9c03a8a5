package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	cfg "StreakKeeper/config"
	"StreakKeeper/internal/middleware"
	"StreakKeeper/internal/router"
	"StreakKeeper/internal/service"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/metrics"
	"StreakKeeper/pkg/otel"
	"StreakKeeper/pkg/snowflake"
	"StreakKeeper/storage"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 先初始化 OTel，存储层和指标都依赖全局 Provider
	if cfg.Cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.FromConfig(&cfg.Cfg, version))
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, continuing without it", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.Cfg.SnowflakeMachineID, cfg.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize check-in metrics", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	if err := service.InitCheckIn(); err != nil {
		logger.Logger.Fatal("Failed to initialize check-in service", zap.Error(err))
	}

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.Cfg.ServiceName),
		zap.String("version", version),
		zap.String("port", cfg.Cfg.ServerPort),
		zap.String("environment", cfg.Cfg.Environment),
		zap.String("timezone", cfg.Cfg.Timezone),
		zap.String("store", cfg.Cfg.StoreDriver),
	)

	addr := net.JoinHostPort(cfg.Cfg.ServerHost, cfg.Cfg.ServerPort)
	opts := []config.Option{server.WithHostPorts(addr)}

	var tracing app.HandlerFunc
	if cfg.Cfg.OTelEnabled {
		var tracer config.Option
		tracer, tracing = middleware.NewServerTracerConfig()
		opts = append(opts, tracer)
	}

	h := server.New(opts...)
	if tracing != nil {
		h.Use(tracing)
	}
	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
