package dto

// ========== CheckIn 相关 DTO ==========

// CheckInRequest 打卡请求
type CheckInRequest struct {
	Checkpoint string `json:"checkpoint" query:"checkpoint"`
}

// CheckInResponse 打卡结果以及写入后的连续天数/观察期状态
type CheckInResponse struct {
	Checkpoint        string `json:"checkpoint"`
	Date              string `json:"date"`
	Status            string `json:"status"`
	Violation         string `json:"violation"`
	RolloverViolation string `json:"rollover_violation"`
	StreakChange      string `json:"streak_change"`
	MinutesLate       int    `json:"minutes_late"`
	ToneLevel         int    `json:"tone_level"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	IsLate            bool   `json:"is_late"`
	WithinGrace       bool   `json:"within_grace"`
	Rollover          bool   `json:"rollover"`
	DayComplete       bool   `json:"day_complete"`
	ProbationActive   bool   `json:"probation_active"`
}

// StatusResponse 只读状态查询
type StatusResponse struct {
	CurrentTimeCentral   string   `json:"current_time_central"`
	ActiveDate           string   `json:"active_date"`
	RemainingCheckpoints []string `json:"remaining_checkpoints"`
	CurrentStreak        int      `json:"current_streak"`
	LongestStreak        int      `json:"longest_streak"`
	IsTodayActive        bool     `json:"is_today_active"`
	ProbationActive      bool     `json:"probation_active"`
	MorningCompleted     bool     `json:"morning_completed"`
	AfternoonCompleted   bool     `json:"afternoon_completed"`
	EveningCompleted     bool     `json:"evening_completed"`
}
