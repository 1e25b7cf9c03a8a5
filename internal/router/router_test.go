package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StreakKeeper/internal/cache"
	"StreakKeeper/internal/checkpoint"
	"StreakKeeper/internal/model"
	"StreakKeeper/internal/model/dto"
	"StreakKeeper/internal/queue"
	"StreakKeeper/internal/repository"
	"StreakKeeper/internal/service"
	"StreakKeeper/pkg/clock"
	"StreakKeeper/pkg/response"
)

type envelope[T any] struct {
	Data  T                    `json:"data"`
	Error response.ErrorDetail `json:"error"`
}

func setup(t *testing.T, initial *model.CheckpointState, now time.Time) (*server.Hertz, *repository.MemoryStateStore) {
	t.Helper()

	adapter, err := clock.NewAdapter(clock.Fake(now), "America/Chicago")
	require.NoError(t, err)

	store := repository.NewMemoryStateStore(initial)
	service.SetCheckIn(service.NewCheckInService(
		store,
		cache.NewLocalLocker(),
		adapter,
		checkpoint.NewEngine(checkpoint.DefaultPolicy()),
		queue.NopPublisher{},
	))

	h := server.New()
	Register(h)
	return h, store
}

func chicago(t *testing.T, day, hour, minute int) time.Time {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return time.Date(2024, 1, day, hour, minute, 0, 0, loc)
}

func post(h *server.Hertz, path, body string) *ut.ResponseRecorder {
	return ut.PerformRequest(h.Engine, http.MethodPost, path,
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

func TestCheckInRoute(t *testing.T) {
	h, store := setup(t, model.NewCheckpointState(), chicago(t, 2, 9, 10))

	w := post(h, "/v1/check-ins", `{"checkpoint":"morning"}`)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var body envelope[dto.CheckInResponse]
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "morning", body.Data.Checkpoint)
	assert.Equal(t, "within_grace", body.Data.Status)
	assert.Equal(t, 10, body.Data.MinutesLate)
	assert.True(t, body.Data.IsLate)
	assert.True(t, body.Data.WithinGrace)
	assert.Equal(t, 1, store.Writes())
	assert.NotEmpty(t, string(resp.Header.Peek("X-Request-Id")))
}

func TestLegacyCheckInRoute(t *testing.T) {
	h, store := setup(t, model.NewCheckpointState(), chicago(t, 2, 13, 0))

	w := post(h, "/api/checkin", `{"checkpoint":"afternoon"}`)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())
	assert.Equal(t, 1, store.Writes())
}

func TestCheckInUnknownCheckpoint(t *testing.T) {
	h, store := setup(t, model.NewCheckpointState(), chicago(t, 2, 9, 0))

	w := post(h, "/v1/check-ins", `{"checkpoint":"noon"}`)
	resp := w.Result()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode())

	var body envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "CHECKPOINT_INVALID", body.Error.Code)
	assert.Equal(t, 0, store.Writes())
}

func TestCheckInStateMissing(t *testing.T) {
	h, _ := setup(t, nil, chicago(t, 2, 9, 0))

	w := post(h, "/v1/check-ins", `{"checkpoint":"morning"}`)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode())
}

func TestStatusRoute(t *testing.T) {
	initial := model.NewCheckpointState()
	initial.ActiveDate = "2024-01-02"
	initial.MorningCompleted = true
	initial.CurrentStreak = 3
	initial.LongestStreak = 5

	h, store := setup(t, initial, chicago(t, 2, 14, 7))

	for _, path := range []string{"/v1/status", "/api/status"} {
		w := ut.PerformRequest(h.Engine, http.MethodGet, path, nil)
		resp := w.Result()
		require.Equal(t, http.StatusOK, resp.StatusCode(), path)

		var body envelope[dto.StatusResponse]
		require.NoError(t, json.Unmarshal(resp.Body(), &body))
		assert.Equal(t, "14:07", body.Data.CurrentTimeCentral)
		assert.True(t, body.Data.IsTodayActive)
		assert.Equal(t, []string{"afternoon", "evening"}, body.Data.RemainingCheckpoints)
		assert.Equal(t, 3, body.Data.CurrentStreak)
		assert.Equal(t, 5, body.Data.LongestStreak)
	}
	assert.Equal(t, 0, store.Writes())
}

func TestStaleStatusListsNothing(t *testing.T) {
	initial := model.NewCheckpointState()
	initial.ActiveDate = "2024-01-01"

	h, _ := setup(t, initial, chicago(t, 2, 8, 0))

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/v1/status", nil)
	var body envelope[dto.StatusResponse]
	require.NoError(t, json.Unmarshal(w.Result().Body(), &body))
	assert.False(t, body.Data.IsTodayActive)
	assert.NotNil(t, body.Data.RemainingCheckpoints)
	assert.Empty(t, body.Data.RemainingCheckpoints)
}

func TestPreflight(t *testing.T) {
	h, _ := setup(t, model.NewCheckpointState(), chicago(t, 2, 8, 0))

	w := ut.PerformRequest(h.Engine, http.MethodOptions, "/v1/check-ins", nil,
		ut.Header{Key: "Origin", Value: "https://streak.example"},
	)
	resp := w.Result()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "https://streak.example", string(resp.Header.Peek("Access-Control-Allow-Origin")))
}

func TestHealthz(t *testing.T) {
	h, _ := setup(t, model.NewCheckpointState(), chicago(t, 2, 8, 0))

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}
