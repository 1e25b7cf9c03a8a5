package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StreakKeeper/internal/checkpoint"
)

func TestCheckpointStateRoundTrip(t *testing.T) {
	rec := &CheckpointState{
		BaseModel:         BaseModel{ID: StateRecordID},
		ActiveDate:        "2024-01-02",
		MorningCompleted:  true,
		ProbationActive:   true,
		CurrentStreak:     5,
		LongestStreak:     9,
		LastCompletedDate: "2024-01-01",
		Version:           7,
	}

	s := rec.State()
	assert.Equal(t, "2024-01-02", s.Day.ActiveDate)
	assert.True(t, s.Day.MorningCompleted)
	assert.True(t, s.Probation.Active)
	assert.Equal(t, 5, s.Streak.Current)

	s.Day = checkpoint.DayState{ActiveDate: "2024-01-03", EveningCompleted: true}
	s.Streak.Current = 0
	next := rec.WithState(s)

	assert.Equal(t, int64(7), next.Version)
	assert.Equal(t, StateRecordID, next.ID)
	assert.Equal(t, "2024-01-03", next.ActiveDate)
	assert.False(t, next.MorningCompleted)
	assert.True(t, next.EveningCompleted)
	assert.Equal(t, 0, next.CurrentStreak)
	assert.Equal(t, 9, next.LongestStreak)

	// 原记录不被修改
	assert.Equal(t, "2024-01-02", rec.ActiveDate)
	assert.Equal(t, 5, rec.CurrentStreak)
}
