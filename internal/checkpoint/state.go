package checkpoint

import (
	"fmt"

	"StreakKeeper/pkg/clock"
	"StreakKeeper/pkg/errors"
)

// State 单例状态记录的显式表示：日状态、观察期状态、连续天数状态
type State struct {
	Day       DayState
	Probation ProbationState
	Streak    StreakState
}

// DayState ActiveDate 为空表示从未使用过
type DayState struct {
	ActiveDate         string
	MorningCompleted   bool
	AfternoonCompleted bool
	EveningCompleted   bool
}

type ProbationState struct {
	Active bool
}

type StreakState struct {
	Current           int
	Longest           int
	LastCompletedDate string
}

func (d DayState) Completed(cp Checkpoint) bool {
	switch cp {
	case Morning:
		return d.MorningCompleted
	case Afternoon:
		return d.AfternoonCompleted
	case Evening:
		return d.EveningCompleted
	}
	return false
}

// Complete 三个打卡点全部完成
func (d DayState) Complete() bool {
	return d.MorningCompleted && d.AfternoonCompleted && d.EveningCompleted
}

// Remaining 按时间顺序返回未完成的打卡点
func (d DayState) Remaining() []Checkpoint {
	remaining := make([]Checkpoint, 0, len(All))
	for _, cp := range All {
		if !d.Completed(cp) {
			remaining = append(remaining, cp)
		}
	}
	return remaining
}

func (d *DayState) mark(cp Checkpoint) {
	switch cp {
	case Morning:
		d.MorningCompleted = true
	case Afternoon:
		d.AfternoonCompleted = true
	case Evening:
		d.EveningCompleted = true
	}
}

// Validate 检查从存储读出的记录是否可用于状态转移
func (s State) Validate() error {
	if s.Day.ActiveDate != "" && !clock.ValidDateKey(s.Day.ActiveDate) {
		return malformed("active_date %q is not YYYY-MM-DD", s.Day.ActiveDate)
	}
	if s.Streak.LastCompletedDate != "" && !clock.ValidDateKey(s.Streak.LastCompletedDate) {
		return malformed("last_completed_date %q is not YYYY-MM-DD", s.Streak.LastCompletedDate)
	}
	if s.Streak.Current < 0 {
		return malformed("current_streak %d is negative", s.Streak.Current)
	}
	if s.Streak.Longest < 0 {
		return malformed("longest_streak %d is negative", s.Streak.Longest)
	}
	return nil
}

func malformed(format string, args ...interface{}) error {
	return errors.StateMalformed.WithMessage(fmt.Sprintf(format, args...))
}
