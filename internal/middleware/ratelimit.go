package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"StreakKeeper/config"
	"StreakKeeper/pkg/errors"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/response"
	"StreakKeeper/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口
	Window time.Duration
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
}

// DefaultRateLimitConfig 按客户端 IP 每分钟 RATE_LIMIT_RPM 次
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:      time.Minute,
		MaxRequests: config.Cfg.RateLimitRPM,
		KeyPrefix:   "rate:limit",
	}
}

// RateLimiter 基于 Redis zset 的滑动窗口限流器
type RateLimiter struct {
	client *redislib.Client
	config RateLimitConfig
}

func NewRateLimiter(client *redislib.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// Allow 返回是否放行以及当前窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (bool, int, error) {
	key := redis.Key(rl.config.KeyPrefix, identifier)
	now := time.Now()
	windowStart := now.Add(-rl.config.Window)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

// RateLimitMiddleware 未启用 Redis 时直接放行；Redis 出错时放行并记录日志
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		client := redis.Client()
		if client == nil || cfg.MaxRequests <= 0 {
			c.Next(ctx)
			return
		}

		limiter := NewRateLimiter(client, cfg)
		allowed, count, err := limiter.Allow(ctx, "ip:"+c.ClientIP())
		if err != nil {
			logger.Logger.Warn("Rate limit check failed, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

// GeneralRateLimitMiddleware 通用限流中间件
func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig())
}
