package schedule

// 提醒调度器：每分钟检查一次，在截止时间前 lead 分钟内对未完成的打卡点发送一次提醒

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"StreakKeeper/internal/cache"
	"StreakKeeper/internal/checkpoint"
	"StreakKeeper/internal/queue"
	"StreakKeeper/pkg/clock"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/metrics"
)

// SummaryReader 只读状态来源，由 CheckInService 实现
type SummaryReader interface {
	Summary(ctx context.Context) (checkpoint.Summary, error)
}

type ReminderScheduler struct {
	state     SummaryReader
	clock     *clock.Adapter
	marker    cache.ReminderMarker
	publisher queue.Publisher
	logger    *zap.Logger
	policy    checkpoint.Policy
	lead      int

	runMu   sync.Mutex
	running bool
}

func NewReminderScheduler(
	state SummaryReader,
	policy checkpoint.Policy,
	clk *clock.Adapter,
	marker cache.ReminderMarker,
	publisher queue.Publisher,
	leadMinutes int,
) *ReminderScheduler {
	return &ReminderScheduler{
		state:     state,
		policy:    policy,
		clock:     clk,
		marker:    marker,
		publisher: publisher,
		lead:      leadMinutes,
		logger:    logger.Logger,
	}
}

// Due 返回此刻处于提醒窗口 [max(deadline-lead, 00:00), deadline) 内的打卡点
func (s *ReminderScheduler) Due(now clock.Civil) []checkpoint.Checkpoint {
	if s.lead <= 0 {
		return nil
	}

	minute := now.MinuteOfDay()
	due := make([]checkpoint.Checkpoint, 0, len(checkpoint.All))
	for _, cp := range checkpoint.All {
		deadline, err := s.policy.Deadline(cp)
		if err != nil {
			continue
		}
		end := deadline.MinuteOfDay()
		// 窗口在当天午夜截断，不回到前一天
		start := end - s.lead
		if start < 0 {
			start = 0
		}
		if minute >= start && minute < end {
			due = append(due, cp)
		}
	}
	return due
}

// pending 记录还停留在之前的日期时，今天的三个打卡点都未完成
func pending(summary checkpoint.Summary, cp checkpoint.Checkpoint) bool {
	if !summary.IsTodayActive {
		return true
	}
	for _, remaining := range summary.RemainingCheckpoints {
		if remaining == cp {
			return true
		}
	}
	return false
}

// RunOnce 执行一次检查，返回本次发送的提醒数
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		s.logger.Info("Reminder job already running, skipping")
		return 0, nil
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	now := s.clock.Now()

	due := s.Due(now)
	if len(due) == 0 {
		return 0, nil
	}

	summary, err := s.state.Summary(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read state summary: %w", err)
	}

	today := now.DateKey()
	sent := 0
	for _, cp := range due {
		if !pending(summary, cp) {
			continue
		}

		marked, err := s.marker.TryMarkReminder(ctx, today, cp.String())
		if err != nil {
			s.logger.Warn("Failed to mark reminder, skipping",
				zap.String("checkpoint", cp.String()),
				zap.Error(err),
			)
			continue
		}
		if !marked {
			continue
		}

		if err := s.send(ctx, now, cp); err != nil {
			metrics.RecordReminder(ctx, cp.String(), false)
			// 撤销标记，下一分钟仍在窗口内时重试
			if unmarkErr := s.marker.UnmarkReminder(ctx, today, cp.String()); unmarkErr != nil {
				s.logger.Warn("Failed to unmark reminder", zap.Error(unmarkErr))
			}
			continue
		}

		metrics.RecordReminder(ctx, cp.String(), true)
		sent++
	}

	return sent, nil
}

func (s *ReminderScheduler) send(ctx context.Context, now clock.Civil, cp checkpoint.Checkpoint) error {
	deadline, err := s.policy.Deadline(cp)
	if err != nil {
		return err
	}

	return s.publisher.PublishReminder(ctx, queue.CheckpointReminderMessage{
		Checkpoint:  cp.String(),
		Date:        now.DateKey(),
		Deadline:    deadline.String(),
		ScheduledAt: time.Now().UTC().Format(time.RFC3339),
		MinutesLeft: deadline.MinuteOfDay() - now.MinuteOfDay(),
	})
}

// Run 对齐到整分钟后每分钟执行一次，直到 ctx 结束
func (s *ReminderScheduler) Run(ctx context.Context) {
	wait := time.Until(time.Now().Truncate(time.Minute).Add(time.Minute))
	timer := time.NewTimer(wait)
	defer timer.Stop()

	s.logger.Info("Reminder scheduler started",
		zap.Int("lead_minutes", s.lead),
		zap.Duration("first_run_in", wait),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := s.RunOnce(runCtx); err != nil {
				s.logger.Error("Reminder scheduler run failed", zap.Error(err))
			}
			cancel()
			timer.Reset(time.Until(time.Now().Truncate(time.Minute).Add(time.Minute)))
		}
	}
}
