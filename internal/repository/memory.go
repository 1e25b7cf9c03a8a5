package repository

import (
	"context"
	"sync"

	"StreakKeeper/internal/model"
	pkgerrors "StreakKeeper/pkg/errors"
)

// MemoryStateStore 进程内实现，用于本地调试和测试，语义与 GormStateStore 一致
type MemoryStateStore struct {
	mu     sync.Mutex
	rec    *model.CheckpointState
	writes int
}

// NewMemoryStateStore initial 为 nil 时 Get 返回 StateNotFound
func NewMemoryStateStore(initial *model.CheckpointState) *MemoryStateStore {
	s := &MemoryStateStore{}
	if initial != nil {
		cp := *initial
		s.rec = &cp
	}
	return s
}

func (s *MemoryStateStore) Get(ctx context.Context) (*model.CheckpointState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return nil, pkgerrors.StateNotFound
	}
	cp := *s.rec
	return &cp, nil
}

func (s *MemoryStateStore) Put(ctx context.Context, rec *model.CheckpointState, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return pkgerrors.StateNotFound
	}
	if s.rec.Version != expectedVersion {
		return pkgerrors.StateConflict
	}

	cp := *rec
	cp.ID = model.StateRecordID
	cp.Version = expectedVersion + 1
	s.rec = &cp
	s.writes++

	rec.Version = cp.Version
	return nil
}

func (s *MemoryStateStore) Ping(ctx context.Context) error {
	return nil
}

// Writes 成功写入次数
func (s *MemoryStateStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
