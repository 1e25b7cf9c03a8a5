package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"StreakKeeper/config"
	"StreakKeeper/internal/cache"
	"StreakKeeper/internal/checkpoint"
	"StreakKeeper/internal/model"
	"StreakKeeper/internal/model/dto"
	"StreakKeeper/internal/queue"
	"StreakKeeper/internal/repository"
	"StreakKeeper/pkg/clock"
	pkgerrors "StreakKeeper/pkg/errors"
	"StreakKeeper/pkg/logger"
	"StreakKeeper/pkg/metrics"
	"StreakKeeper/storage/database"
	"StreakKeeper/storage/redis"
)

const (
	stateLockKey = "checkpoint_state"

	// 条件写冲突后重新读取并重新计算的总次数
	defaultMaxAttempts = 3
)

var (
	checkInService *CheckInService
	checkInMu      sync.RWMutex
)

// CheckIn 获取全局打卡服务，需先调用 InitCheckIn 或 SetCheckIn
func CheckIn() *CheckInService {
	checkInMu.RLock()
	defer checkInMu.RUnlock()
	return checkInService
}

// SetCheckIn 替换全局打卡服务
func SetCheckIn(s *CheckInService) {
	checkInMu.Lock()
	checkInService = s
	checkInMu.Unlock()
}

// InitCheckIn 按配置和已初始化的存储组装打卡服务
func InitCheckIn() error {
	s, err := NewCheckInServiceFromConfig(&config.Cfg)
	if err != nil {
		return err
	}
	SetCheckIn(s)
	return nil
}

// NewCheckInServiceFromConfig 存储、锁、事件发布按配置选择实现
func NewCheckInServiceFromConfig(cfg *config.Config) (*CheckInService, error) {
	policy, err := checkpoint.NewPolicy(cfg.MorningDeadline, cfg.AfternoonDeadline, cfg.EveningDeadline, cfg.GraceMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to build checkpoint policy: %w", err)
	}

	clk, err := clock.NewAdapter(clock.Real(), cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var store repository.StateStore
	if cfg.StoreDriver == "postgres" {
		store = repository.NewGormStateStore(database.DB())
	} else {
		store = repository.NewMemoryStateStore(model.NewCheckpointState())
	}

	var locker cache.Locker = cache.NewLocalLocker()
	if client := redis.Client(); client != nil {
		locker = cache.NewRedisLocker(client)
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQEnabled {
		publisher = queue.NewMQPublisher()
	}

	return NewCheckInService(store, locker, clk, checkpoint.NewEngine(policy), publisher), nil
}

// CheckInService 串起 锁 -> 读 -> 时钟 -> 状态机 -> 条件写 -> 事件/指标
type CheckInService struct {
	store       repository.StateStore
	locker      cache.Locker
	clock       *clock.Adapter
	engine      *checkpoint.Engine
	publisher   queue.Publisher
	maxAttempts int
}

func NewCheckInService(
	store repository.StateStore,
	locker cache.Locker,
	clk *clock.Adapter,
	engine *checkpoint.Engine,
	publisher queue.Publisher,
) *CheckInService {
	return &CheckInService{
		store:       store,
		locker:      locker,
		clock:       clk,
		engine:      engine,
		publisher:   publisher,
		maxAttempts: defaultMaxAttempts,
	}
}

// Engine 返回使用中的状态机，scheduler 需要读取截止时间
func (s *CheckInService) Engine() *checkpoint.Engine {
	return s.engine
}

// Clock 返回时钟适配器
func (s *CheckInService) Clock() *clock.Adapter {
	return s.clock
}

// Process 处理一次打卡。检查点名称非法时不访问存储
func (s *CheckInService) Process(ctx context.Context, name string) (*dto.CheckInResponse, error) {
	cp, err := checkpoint.ParseCheckpoint(name)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, stateLockKey)
	if err != nil {
		logger.Logger.Warn("Failed to acquire state lock",
			zap.String("checkpoint", cp.String()),
			zap.Error(err),
		)
		return nil, err
	}
	defer release()

	var (
		rec *model.CheckpointState
		out checkpoint.Outcome
	)
	for attempt := 1; ; attempt++ {
		rec, out, err = s.apply(ctx, cp)
		if err == nil {
			break
		}
		if !errors.Is(err, pkgerrors.StateConflict) || attempt >= s.maxAttempts {
			return nil, err
		}

		metrics.RecordStoreConflict(ctx)
		logger.Logger.Warn("State record changed concurrently, recomputing",
			zap.String("checkpoint", cp.String()),
			zap.Int("attempt", attempt),
		)
	}

	logger.Logger.Info("Check-in processed",
		zap.String("checkpoint", cp.String()),
		zap.String("date", out.Date),
		zap.String("status", string(out.Status)),
		zap.Int("minutes_late", out.MinutesLate),
		zap.Bool("rollover", out.Rollover),
		zap.Int("current_streak", rec.CurrentStreak),
		zap.Bool("probation_active", rec.ProbationActive),
	)

	s.afterCommit(ctx, out, rec)
	return toCheckInResponse(out, rec), nil
}

// apply 一次完整的读-算-写，冲突时由调用方决定是否重来
func (s *CheckInService) apply(ctx context.Context, cp checkpoint.Checkpoint) (*model.CheckpointState, checkpoint.Outcome, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return nil, checkpoint.Outcome{}, err
	}

	nextState, out, err := s.engine.Process(current.State(), cp, s.clock.Now())
	if err != nil {
		return nil, checkpoint.Outcome{}, err
	}

	next := current.WithState(nextState)
	if err := s.store.Put(ctx, next, current.Version); err != nil {
		return nil, checkpoint.Outcome{}, err
	}
	return next, out, nil
}

// afterCommit 写入成功之后的副作用，失败只记录不影响结果
func (s *CheckInService) afterCommit(ctx context.Context, out checkpoint.Outcome, rec *model.CheckpointState) {
	metrics.RecordCheckIn(ctx, out.Checkpoint.String(), string(out.Status), rec.CurrentStreak)
	if out.RolloverViolation != checkpoint.ViolationNone {
		metrics.RecordViolation(ctx, "rollover", string(out.RolloverViolation))
	}
	if out.Violation != checkpoint.ViolationNone {
		metrics.RecordViolation(ctx, "lateness", string(out.Violation))
	}

	routingKeys := queue.RoutingKeysForOutcome(string(out.Status), string(out.Worst()))
	if len(routingKeys) == 0 {
		return
	}

	msg := queue.StreakEventMessage{
		Checkpoint:        out.Checkpoint.String(),
		Date:              out.Date,
		Status:            string(out.Status),
		Violation:         string(out.Violation),
		RolloverViolation: string(out.RolloverViolation),
		OccurredAt:        time.Now().UTC().Format(time.RFC3339),
		CurrentStreak:     rec.CurrentStreak,
		LongestStreak:     rec.LongestStreak,
		ToneLevel:         out.ToneLevel,
		ProbationActive:   rec.ProbationActive,
	}
	for _, routingKey := range routingKeys {
		if err := s.publisher.PublishStreakEvent(ctx, routingKey, msg); err != nil {
			metrics.RecordEventPublishFailed(ctx, routingKey)
			logger.Logger.Warn("Streak event not delivered",
				zap.String("routing_key", routingKey),
				zap.String("date", out.Date),
				zap.Error(err),
			)
		}
	}
}

// Summary 只读状态，不加锁也不调用状态机
func (s *CheckInService) Summary(ctx context.Context) (checkpoint.Summary, error) {
	rec, err := s.store.Get(ctx)
	if err != nil {
		return checkpoint.Summary{}, err
	}
	return checkpoint.Summarize(rec.State(), s.clock.Now()), nil
}

// Status 状态查询接口
func (s *CheckInService) Status(ctx context.Context) (*dto.StatusResponse, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return toStatusResponse(summary), nil
}

// Health 检查存储是否可用
func (s *CheckInService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func toCheckInResponse(out checkpoint.Outcome, rec *model.CheckpointState) *dto.CheckInResponse {
	return &dto.CheckInResponse{
		Checkpoint:        out.Checkpoint.String(),
		Date:              out.Date,
		Status:            string(out.Status),
		Violation:         string(out.Violation),
		RolloverViolation: string(out.RolloverViolation),
		StreakChange:      string(out.StreakChange),
		MinutesLate:       out.MinutesLate,
		ToneLevel:         out.ToneLevel,
		CurrentStreak:     rec.CurrentStreak,
		LongestStreak:     rec.LongestStreak,
		IsLate:            out.IsLate,
		WithinGrace:       out.WithinGrace,
		Rollover:          out.Rollover,
		DayComplete:       out.DayComplete,
		ProbationActive:   rec.ProbationActive,
	}
}

func toStatusResponse(s checkpoint.Summary) *dto.StatusResponse {
	remaining := make([]string, 0, len(s.RemainingCheckpoints))
	for _, cp := range s.RemainingCheckpoints {
		remaining = append(remaining, cp.String())
	}

	return &dto.StatusResponse{
		CurrentTimeCentral:   s.CurrentTime,
		ActiveDate:           s.ActiveDate,
		RemainingCheckpoints: remaining,
		CurrentStreak:        s.CurrentStreak,
		LongestStreak:        s.LongestStreak,
		IsTodayActive:        s.IsTodayActive,
		ProbationActive:      s.ProbationActive,
		MorningCompleted:     s.MorningCompleted,
		AfternoonCompleted:   s.AfternoonCompleted,
		EveningCompleted:     s.EveningCompleted,
	}
}
