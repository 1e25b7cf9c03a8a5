package checkpoint

// Violation 一次违规的严重程度
type Violation string

const (
	ViolationNone    Violation = "none"
	ViolationWarning Violation = "warning" // 第一次违规，进入观察期
	ViolationReset   Violation = "reset"   // 观察期内再次违规，连续天数清零
)

func (v Violation) severity() int {
	switch v {
	case ViolationWarning:
		return 1
	case ViolationReset:
		return 2
	}
	return 0
}

type StreakChange string

const (
	StreakUnchanged   StreakChange = "unchanged"
	StreakIncremented StreakChange = "incremented"
	StreakReset       StreakChange = "reset"
)

// Status 面向用户展示的结果标签
type Status string

const (
	StatusOnTime      Status = "on_time"
	StatusWithinGrace Status = "within_grace"
	StatusWarning     Status = "warning"
	StatusReset       Status = "reset"
	StatusPerfectDay  Status = "perfect_day"
)

const (
	ToneNormal  = 1
	ToneWarning = 2
	ToneReset   = 3
)

// Outcome 单次打卡的派生结果，不落库
type Outcome struct {
	Checkpoint        Checkpoint
	Date              string
	IsLate            bool
	WithinGrace       bool
	MinutesLate       int
	Violation         Violation // 本次打卡迟到引起的违规
	Rollover          bool
	RolloverViolation Violation // 跨日时前一天未完成引起的违规
	DayComplete       bool
	StreakChange      StreakChange
	Status            Status
	ToneLevel         int
}

// Worst 本次调用中最严重的违规
func (o Outcome) Worst() Violation {
	if o.RolloverViolation.severity() > o.Violation.severity() {
		return o.RolloverViolation
	}
	return o.Violation
}

func (o *Outcome) deriveStatus() {
	o.Status = StatusOnTime
	if o.WithinGrace {
		o.Status = StatusWithinGrace
	}

	worst := o.Worst()
	switch worst {
	case ViolationWarning:
		o.Status = StatusWarning
	case ViolationReset:
		o.Status = StatusReset
	}

	if o.StreakChange == StreakIncremented {
		o.Status = StatusPerfectDay
	}

	o.ToneLevel = ToneNormal + worst.severity()
}
