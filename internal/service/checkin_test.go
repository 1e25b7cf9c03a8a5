package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StreakKeeper/internal/cache"
	"StreakKeeper/internal/checkpoint"
	"StreakKeeper/internal/model"
	"StreakKeeper/internal/queue"
	"StreakKeeper/internal/repository"
	"StreakKeeper/pkg/clock"
	pkgerrors "StreakKeeper/pkg/errors"
)

var central = mustLoad("America/Chicago")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishStreakEvent(ctx context.Context, routingKey string, msg queue.StreakEventMessage) error {
	args := m.Called(ctx, routingKey, msg)
	return args.Error(0)
}

func (m *mockPublisher) PublishReminder(ctx context.Context, msg queue.CheckpointReminderMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fixture struct {
	svc    *CheckInService
	store  *repository.MemoryStateStore
	clock  *clock.FakeClock
	locker *cache.LocalLocker
	pub    *mockPublisher
}

func newFixture(t *testing.T, initial *model.CheckpointState, now time.Time) *fixture {
	t.Helper()

	fc := clock.Fake(now)
	adapter, err := clock.NewAdapter(fc, "America/Chicago")
	require.NoError(t, err)

	f := &fixture{
		store:  repository.NewMemoryStateStore(initial),
		clock:  fc,
		locker: cache.NewLocalLocker(),
		pub:    &mockPublisher{},
	}
	f.svc = NewCheckInService(f.store, f.locker, adapter, checkpoint.NewEngine(checkpoint.DefaultPolicy()), f.pub)
	return f
}

func record(mutate func(r *model.CheckpointState)) *model.CheckpointState {
	r := model.NewCheckpointState()
	mutate(r)
	return r
}

func TestProcessFirstCheckIn(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Date(2024, 1, 2, 8, 30, 0, 0, central))

	resp, err := f.svc.Process(context.Background(), "morning")
	require.NoError(t, err)

	assert.Equal(t, "morning", resp.Checkpoint)
	assert.Equal(t, "2024-01-02", resp.Date)
	assert.Equal(t, "on_time", resp.Status)
	assert.Equal(t, 1, resp.ToneLevel)
	assert.False(t, resp.Rollover)

	rec, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", rec.ActiveDate)
	assert.True(t, rec.MorningCompleted)
	assert.Equal(t, int64(1), rec.Version)

	f.pub.AssertNotCalled(t, "PublishStreakEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessUnknownCheckpointNeverWrites(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Date(2024, 1, 2, 8, 30, 0, 0, central))

	_, err := f.svc.Process(context.Background(), "noon")
	assert.True(t, stderrors.Is(err, pkgerrors.CheckpointInvalid))
	assert.Equal(t, 0, f.store.Writes())
}

func TestProcessPerfectDayPublishesEvent(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-02"
		r.MorningCompleted = true
		r.AfternoonCompleted = true
		r.CurrentStreak = 3
		r.LongestStreak = 3
		r.LastCompletedDate = "2024-01-01"
	})
	f := newFixture(t, initial, time.Date(2024, 1, 2, 20, 0, 0, 0, central))

	f.pub.On("PublishStreakEvent", mock.Anything, queue.RoutingKeyStreakPerfectDay,
		mock.MatchedBy(func(msg queue.StreakEventMessage) bool {
			return msg.CurrentStreak == 4 && msg.Status == "perfect_day" && msg.Checkpoint == "evening"
		}),
	).Return(nil).Once()

	resp, err := f.svc.Process(context.Background(), "evening")
	require.NoError(t, err)

	assert.Equal(t, "perfect_day", resp.Status)
	assert.Equal(t, "incremented", resp.StreakChange)
	assert.Equal(t, 4, resp.CurrentStreak)
	assert.Equal(t, 4, resp.LongestStreak)
	assert.True(t, resp.DayComplete)
	f.pub.AssertExpectations(t)

	rec, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", rec.LastCompletedDate)
}

func TestProcessLateWarningOnCreditedDayPublishesBothEvents(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-02"
		r.MorningCompleted = true
		r.AfternoonCompleted = true
		r.CurrentStreak = 1
		r.LongestStreak = 8
		r.LastCompletedDate = "2024-01-01"
	})
	// 21:40 超出宽限：记一次警告，但当天三个检查点都已完成
	f := newFixture(t, initial, time.Date(2024, 1, 2, 21, 40, 0, 0, central))

	var published []string
	f.pub.On("PublishStreakEvent", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { published = append(published, args.String(1)) }).
		Return(nil).Twice()

	resp, err := f.svc.Process(context.Background(), "evening")
	require.NoError(t, err)

	assert.Equal(t, "perfect_day", resp.Status)
	assert.Equal(t, "warning", resp.Violation)
	assert.True(t, resp.ProbationActive)
	assert.Equal(t, []string{queue.RoutingKeyStreakWarning, queue.RoutingKeyStreakPerfectDay}, published)
	f.pub.AssertExpectations(t)
}

func TestProcessRolloverOnIncompleteDay(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-01"
		r.MorningCompleted = true
		r.CurrentStreak = 5
		r.LongestStreak = 5
		r.LastCompletedDate = "2023-12-31"
	})
	f := newFixture(t, initial, time.Date(2024, 1, 2, 8, 0, 0, 0, central))
	f.pub.On("PublishStreakEvent", mock.Anything, queue.RoutingKeyStreakWarning, mock.Anything).Return(nil).Once()

	resp, err := f.svc.Process(context.Background(), "morning")
	require.NoError(t, err)

	assert.True(t, resp.Rollover)
	assert.Equal(t, "warning", resp.RolloverViolation)
	assert.Equal(t, "warning", resp.Status)
	assert.Equal(t, 2, resp.ToneLevel)
	assert.Equal(t, 5, resp.CurrentStreak)
	assert.True(t, resp.ProbationActive)

	rec, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", rec.ActiveDate)
	assert.True(t, rec.MorningCompleted)
	assert.False(t, rec.AfternoonCompleted)
	assert.False(t, rec.EveningCompleted)
	f.pub.AssertExpectations(t)
}

func TestProcessPublishFailureStillSucceeds(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-02"
		r.ProbationActive = true
		r.CurrentStreak = 7
		r.LongestStreak = 9
	})
	// 9:16 超出宽限，观察期内第二次违规
	f := newFixture(t, initial, time.Date(2024, 1, 2, 9, 16, 0, 0, central))
	f.pub.On("PublishStreakEvent", mock.Anything, queue.RoutingKeyStreakReset, mock.Anything).
		Return(stderrors.New("broker down")).Once()

	resp, err := f.svc.Process(context.Background(), "morning")
	require.NoError(t, err)

	assert.Equal(t, "reset", resp.Status)
	assert.Equal(t, 0, resp.CurrentStreak)
	assert.Equal(t, 9, resp.LongestStreak)
	assert.False(t, resp.ProbationActive)
	assert.Equal(t, 1, f.store.Writes())
	f.pub.AssertExpectations(t)
}

// conflictingStore 第一次写入前模拟另一个进程抢先写入
type conflictingStore struct {
	*repository.MemoryStateStore
	once sync.Once
}

func (s *conflictingStore) Put(ctx context.Context, rec *model.CheckpointState, expectedVersion int64) error {
	s.once.Do(func() {
		other, err := s.MemoryStateStore.Get(ctx)
		if err != nil {
			return
		}
		other.AfternoonCompleted = true
		_ = s.MemoryStateStore.Put(ctx, other, other.Version)
	})
	return s.MemoryStateStore.Put(ctx, rec, expectedVersion)
}

func TestProcessRetriesOnConflict(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-02"
	})
	f := newFixture(t, initial, time.Date(2024, 1, 2, 8, 0, 0, 0, central))
	store := &conflictingStore{MemoryStateStore: f.store}
	f.svc.store = store

	resp, err := f.svc.Process(context.Background(), "morning")
	require.NoError(t, err)
	assert.Equal(t, "on_time", resp.Status)

	rec, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.MorningCompleted)
	assert.True(t, rec.AfternoonCompleted, "retry must recompute from the re-read record")
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, 2, f.store.Writes())
}

// alwaysConflictStore 每次写入都冲突
type alwaysConflictStore struct {
	*repository.MemoryStateStore
	puts int
}

func (s *alwaysConflictStore) Put(ctx context.Context, rec *model.CheckpointState, expectedVersion int64) error {
	s.puts++
	return pkgerrors.StateConflict
}

func TestProcessGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Date(2024, 1, 2, 8, 0, 0, 0, central))
	store := &alwaysConflictStore{MemoryStateStore: f.store}
	f.svc.store = store

	_, err := f.svc.Process(context.Background(), "morning")
	assert.True(t, stderrors.Is(err, pkgerrors.StateConflict))
	assert.Equal(t, defaultMaxAttempts, store.puts)
}

func TestProcessLockTimeout(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Date(2024, 1, 2, 8, 0, 0, 0, central))

	release, err := f.locker.Lock(context.Background(), stateLockKey)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = f.svc.Process(ctx, "morning")
	assert.True(t, stderrors.Is(err, pkgerrors.StateLockTimeout))
	assert.Equal(t, 0, f.store.Writes())
}

func TestProcessStateNotFound(t *testing.T) {
	f := newFixture(t, nil, time.Date(2024, 1, 2, 8, 0, 0, 0, central))

	_, err := f.svc.Process(context.Background(), "morning")
	assert.True(t, stderrors.Is(err, pkgerrors.StateNotFound))
}

func TestProcessConcurrentCheckInsSerialize(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Date(2024, 1, 2, 8, 0, 0, 0, central))
	f.pub.On("PublishStreakEvent", mock.Anything, queue.RoutingKeyStreakPerfectDay, mock.Anything).Return(nil).Once()

	var wg sync.WaitGroup
	for _, name := range []string{"morning", "afternoon", "evening"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := f.svc.Process(context.Background(), name)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()
	f.pub.AssertExpectations(t)

	rec, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.MorningCompleted)
	assert.True(t, rec.AfternoonCompleted)
	assert.True(t, rec.EveningCompleted)
	assert.Equal(t, 1, rec.CurrentStreak)
	assert.Equal(t, int64(3), rec.Version)
}

func TestStatusDoesNotMutate(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-01"
		r.MorningCompleted = true
		r.CurrentStreak = 2
		r.LongestStreak = 6
	})
	f := newFixture(t, initial, time.Date(2024, 1, 2, 9, 5, 0, 0, central))

	status, err := f.svc.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "9:05", status.CurrentTimeCentral)
	assert.Equal(t, "2024-01-01", status.ActiveDate)
	assert.False(t, status.IsTodayActive)
	assert.Empty(t, status.RemainingCheckpoints)
	assert.NotNil(t, status.RemainingCheckpoints)
	assert.Equal(t, 2, status.CurrentStreak)
	assert.Equal(t, 6, status.LongestStreak)
	assert.Equal(t, 0, f.store.Writes())
}

func TestStatusListsRemainingForToday(t *testing.T) {
	initial := record(func(r *model.CheckpointState) {
		r.ActiveDate = "2024-01-02"
		r.AfternoonCompleted = true
	})
	f := newFixture(t, initial, time.Date(2024, 1, 2, 15, 0, 0, 0, central))

	status, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsTodayActive)
	assert.Equal(t, []string{"morning", "evening"}, status.RemainingCheckpoints)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, model.NewCheckpointState(), time.Now())
	assert.NoError(t, f.svc.Health(context.Background()))
}
