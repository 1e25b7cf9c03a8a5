package checkpoint

import (
	"StreakKeeper/pkg/clock"
)

// Engine 打卡状态机，纯函数：相同输入总是得到相同输出，不持有任何可变状态
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Process 依次执行：跨日结算 -> 迟到判定 -> 标记完成 -> 连续天数结算。
// 出错时原样返回输入状态，调用方不得写回。
func (e *Engine) Process(state State, cp Checkpoint, now clock.Civil) (State, Outcome, error) {
	deadline, err := e.policy.Deadline(cp)
	if err != nil {
		return state, Outcome{}, err
	}
	if err := state.Validate(); err != nil {
		return state, Outcome{}, err
	}

	today := now.DateKey()
	next := state
	out := Outcome{
		Checkpoint:        cp,
		Date:              today,
		Violation:         ViolationNone,
		RolloverViolation: ViolationNone,
		StreakChange:      StreakUnchanged,
	}

	// 跨日结算必须先于本次打卡的判定
	switch {
	case next.Day.ActiveDate == "":
		next.Day = DayState{ActiveDate: today}
	case next.Day.ActiveDate != today:
		out.Rollover = true
		if !next.Day.Complete() {
			out.RolloverViolation = strike(&next)
		}
		next.Day = DayState{ActiveDate: today}
	}

	out.MinutesLate = now.MinuteOfDay() - deadline.MinuteOfDay()
	out.IsLate = out.MinutesLate > 0
	effectiveLate := out.MinutesLate > e.policy.GraceMinutes
	out.WithinGrace = out.IsLate && !effectiveLate
	if effectiveLate {
		out.Violation = strike(&next)
	}

	next.Day.mark(cp)
	out.DayComplete = next.Day.Complete()

	reset := out.Violation == ViolationReset || out.RolloverViolation == ViolationReset
	if reset {
		out.StreakChange = StreakReset
	}

	if out.DayComplete && !reset && next.Streak.LastCompletedDate != today {
		next.Streak.Current++
		next.Streak.LastCompletedDate = today
		out.StreakChange = StreakIncremented
	}

	if next.Streak.Longest < next.Streak.Current {
		next.Streak.Longest = next.Streak.Current
	}

	out.deriveStatus()
	return next, out, nil
}

// strike 记一次违规：不在观察期则进入观察期，已在观察期则清零连续天数并退出观察期
func strike(s *State) Violation {
	if !s.Probation.Active {
		s.Probation.Active = true
		return ViolationWarning
	}
	s.Streak.Current = 0
	s.Probation.Active = false
	return ViolationReset
}
