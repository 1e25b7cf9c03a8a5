package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pkgerrors "StreakKeeper/pkg/errors"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/storage/redis"
)

// 串行化状态记录的读-改-写。持有者用随机 token 标识，释放时比对 token，避免误删他人的锁
const (
	lockPrefix = "lock"

	defaultLockTTL   = 10 * time.Second
	defaultLockWait  = 5 * time.Second
	lockPollInterval = 50 * time.Millisecond
)

// Locker 获取锁，返回的 release 可重复调用
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SetNX 的分布式锁，多实例部署时使用
type RedisLocker struct {
	client *goredis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *goredis.Client) *RedisLocker {
	return &RedisLocker{client: client, ttl: defaultLockTTL, wait: defaultLockWait}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := redis.Key(lockPrefix, key)
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, fullKey, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, pkgerrors.StateLockTimeout
			}
			return nil, fmt.Errorf("%w: acquire lock %s: %v", pkgerrors.StoreUnavailable, fullKey, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}

		select {
		case <-waitCtx.Done():
			return nil, pkgerrors.StateLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(fullKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求的 ctx 可能已经结束，释放使用独立的超时
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
				logger.Logger.Warn("Failed to release lock, it will expire by ttl",
					zap.String("key", fullKey),
					zap.Duration("ttl", l.ttl),
					zap.Error(err),
				)
			}
		})
	}
}

// LocalLocker 进程内锁，未启用 Redis 的单实例部署和测试使用
type LocalLocker struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sems: make(map[string]chan struct{})}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	sem := l.semaphore(key)

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, pkgerrors.StateLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-sem })
	}, nil
}

func (l *LocalLocker) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}
	return sem
}
