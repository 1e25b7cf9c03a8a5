package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeTodayActive(t *testing.T) {
	state := State{
		Day:       DayState{ActiveDate: "2024-01-02", MorningCompleted: true},
		Probation: ProbationState{Active: true},
		Streak:    StreakState{Current: 3, Longest: 10},
	}

	s := Summarize(state, at(2024, 1, 2, 9, 5))

	assert.Equal(t, "9:05", s.CurrentTime)
	assert.True(t, s.IsTodayActive)
	assert.True(t, s.ProbationActive)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 10, s.LongestStreak)
	assert.Equal(t, []Checkpoint{Afternoon, Evening}, s.RemainingCheckpoints)
}

func TestSummarizeStaleDayDoesNotRollOver(t *testing.T) {
	state := State{
		Day:    DayState{ActiveDate: "2024-01-01", MorningCompleted: true},
		Streak: StreakState{Current: 5, Longest: 5},
	}

	s := Summarize(state, at(2024, 1, 2, 13, 0))

	assert.False(t, s.IsTodayActive)
	assert.Empty(t, s.RemainingCheckpoints)
	assert.NotNil(t, s.RemainingCheckpoints)
	assert.Equal(t, "2024-01-01", s.ActiveDate)
	assert.True(t, s.MorningCompleted)
	assert.False(t, s.ProbationActive)
}
