package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"StreakKeeper/storage/redis"
)

const (
	reminderPrefix = "checkpoint:reminder"

	// 覆盖整天再留出余量，跨时区偏移也不会提前过期
	reminderTTL = 36 * time.Hour
)

// ReminderMarker 保证同一天同一打卡点的提醒最多发送一次
type ReminderMarker interface {
	// TryMarkReminder 首次标记返回 true
	TryMarkReminder(ctx context.Context, date, checkpoint string) (bool, error)
	// UnmarkReminder 发送失败时撤销标记，允许下次重试
	UnmarkReminder(ctx context.Context, date, checkpoint string) error
}

type RedisReminderMarker struct {
	client *goredis.Client
}

func NewRedisReminderMarker(client *goredis.Client) *RedisReminderMarker {
	return &RedisReminderMarker{client: client}
}

func (m *RedisReminderMarker) TryMarkReminder(ctx context.Context, date, checkpoint string) (bool, error) {
	key := redis.Key(reminderPrefix, date, checkpoint)
	ok, err := m.client.SetNX(ctx, key, "1", reminderTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}
	return ok, nil
}

func (m *RedisReminderMarker) UnmarkReminder(ctx context.Context, date, checkpoint string) error {
	key := redis.Key(reminderPrefix, date, checkpoint)
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unmark reminder: %w", err)
	}
	return nil
}

// LocalReminderMarker 进程内实现，进程重启后标记丢失
type LocalReminderMarker struct {
	mu     sync.Mutex
	marked map[string]struct{}
}

func NewLocalReminderMarker() *LocalReminderMarker {
	return &LocalReminderMarker{marked: make(map[string]struct{})}
}

func (m *LocalReminderMarker) TryMarkReminder(ctx context.Context, date, checkpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := date + ":" + checkpoint
	if _, ok := m.marked[key]; ok {
		return false, nil
	}
	m.marked[key] = struct{}{}
	return true, nil
}

func (m *LocalReminderMarker) UnmarkReminder(ctx context.Context, date, checkpoint string) error {
	m.mu.Lock()
	delete(m.marked, date+":"+checkpoint)
	m.mu.Unlock()
	return nil
}
