package middleware

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"StreakKeeper/config"
	"StreakKeeper/pkg/errors"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否记录堆栈
	EnableStackTrace bool
	// 生产环境是否返回详细错误
	ExposeDetailsInProduction bool
	// 是否记录请求体（小于 1KB 时）
	LogRequestDetails bool
	// 是否在 span 中记录异常
	RecordInSpan bool
	IsProduction bool
}

// NewRecoverConfig 创建 recover 配置
func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:          true,
		ExposeDetailsInProduction: false,
		LogRequestDetails:         true,
		RecordInSpan:              true,
		IsProduction:              config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack string
	if cfg.EnableStackTrace {
		stack = getStackTrace()
	}

	logPanic(c, err, stack, cfg)

	if cfg.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(fmt.Errorf("panic: %v", err))
			span.SetStatus(codes.Error, "panic recovered")
		}
	}

	writeErrorResponse(ctx, c, err, stack, cfg)
	c.Abort()
}

func writeErrorResponse(ctx context.Context, c *app.RequestContext, err interface{}, stack string, cfg RecoverConfig) {
	if cfg.IsProduction && !cfg.ExposeDetailsInProduction {
		response.Error(ctx, c, errors.InternalServerError)
		return
	}

	details := map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if stack != "" {
		details["stack"] = stack
	}
	response.ErrorWithDetails(ctx, c, errors.InternalServerError, details)
}

// getStackTrace 当前 goroutine 的调用栈，跳过 runtime 帧
func getStackTrace() string {
	var b strings.Builder
	for i := 3; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "/runtime/") {
			continue
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s:%d\n    %s\n", file, line, fn.Name())
	}
	return b.String()
}

func logPanic(c *app.RequestContext, err interface{}, stack string, cfg RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("request_id", GetRequestID(c)),
		zap.String("user_agent", string(c.UserAgent())),
	}

	if cfg.LogRequestDetails {
		if body := c.Request.Body(); len(body) > 0 && len(body) < 1024 {
			fields = append(fields, zap.ByteString("body", body))
		}
	}

	if stack != "" {
		fields = append(fields, zap.String("stack", stack))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)
}
