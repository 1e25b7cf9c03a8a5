package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"StreakKeeper/internal/model"
	"StreakKeeper/internal/repository/query"
	pkgerrors "StreakKeeper/pkg/errors"
)

// StateStore 单例状态记录的读写接口。
// Put 为条件写：仅当库中版本号等于 expectedVersion 时才写入，否则返回 StateConflict，
// 调用方应重新读取并重新计算，而不是重发同一次写入。
type StateStore interface {
	Get(ctx context.Context) (*model.CheckpointState, error)
	Put(ctx context.Context, rec *model.CheckpointState, expectedVersion int64) error
	Ping(ctx context.Context) error
}

// GormStateStore 基于 PostgreSQL 的实现，读写走 gorm/gen 生成的类型安全查询
type GormStateStore struct {
	db *gorm.DB
	q  *query.Query
}

func NewGormStateStore(db *gorm.DB) *GormStateStore {
	return &GormStateStore{db: db, q: query.Use(db)}
}

func (s *GormStateStore) Get(ctx context.Context) (*model.CheckpointState, error) {
	cs := s.q.CheckpointState
	// 配置只读副本时也固定读主库，读-改-写之间不能读到旧版本
	rec, err := cs.WithContext(ctx).WriteDB().Where(cs.ID.Eq(model.StateRecordID)).First()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.StateNotFound
		}
		return nil, fmt.Errorf("%w: query state: %v", pkgerrors.StoreUnavailable, err)
	}
	return rec, nil
}

func (s *GormStateStore) Put(ctx context.Context, rec *model.CheckpointState, expectedVersion int64) error {
	cs := s.q.CheckpointState
	// 逐列赋值，保证 false / 0 也会被写入
	info, err := cs.WithContext(ctx).
		Where(cs.ID.Eq(model.StateRecordID), cs.Version.Eq(expectedVersion)).
		UpdateSimple(
			cs.ActiveDate.Value(rec.ActiveDate),
			cs.MorningCompleted.Value(rec.MorningCompleted),
			cs.AfternoonCompleted.Value(rec.AfternoonCompleted),
			cs.EveningCompleted.Value(rec.EveningCompleted),
			cs.ProbationActive.Value(rec.ProbationActive),
			cs.CurrentStreak.Value(rec.CurrentStreak),
			cs.LongestStreak.Value(rec.LongestStreak),
			cs.LastCompletedDate.Value(rec.LastCompletedDate),
			cs.Version.Value(expectedVersion+1),
			cs.UpdatedAt.Value(time.Now()),
		)
	if err != nil {
		return fmt.Errorf("%w: update state: %v", pkgerrors.StoreUnavailable, err)
	}
	if info.RowsAffected == 0 {
		return pkgerrors.StateConflict
	}

	rec.Version = expectedVersion + 1
	return nil
}

func (s *GormStateStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.StoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.StoreUnavailable, err)
	}
	return nil
}
