package checkpoint

import (
	"StreakKeeper/pkg/clock"
)

// Summary 只读状态查询结果，不触发跨日结算
type Summary struct {
	CurrentTime          string
	ActiveDate           string
	IsTodayActive        bool
	CurrentStreak        int
	LongestStreak        int
	ProbationActive      bool
	MorningCompleted     bool
	AfternoonCompleted   bool
	EveningCompleted     bool
	RemainingCheckpoints []Checkpoint
}

// Summarize 仅当记录跟踪的就是今天时才列出剩余打卡点；
// 跨日后的结算要等下一次打卡时由 Engine 完成
func Summarize(state State, now clock.Civil) Summary {
	s := Summary{
		CurrentTime:          now.ClockLabel(),
		ActiveDate:           state.Day.ActiveDate,
		IsTodayActive:        state.Day.ActiveDate == now.DateKey(),
		CurrentStreak:        state.Streak.Current,
		LongestStreak:        state.Streak.Longest,
		ProbationActive:      state.Probation.Active,
		MorningCompleted:     state.Day.MorningCompleted,
		AfternoonCompleted:   state.Day.AfternoonCompleted,
		EveningCompleted:     state.Day.EveningCompleted,
		RemainingCheckpoints: []Checkpoint{},
	}
	if s.IsTodayActive {
		s.RemainingCheckpoints = state.Day.Remaining()
	}
	return s
}
