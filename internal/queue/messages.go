package queue

// 事件交换机上的 routing key
const (
	RoutingKeyStreakWarning    = "streak.warning"
	RoutingKeyStreakReset      = "streak.reset"
	RoutingKeyStreakPerfectDay = "streak.perfect_day"
	RoutingKeyReminder         = "checkpoint.reminder"
)

// StreakEventMessage 打卡落库后产生的连续天数事件
type StreakEventMessage struct {
	MessageID         string `json:"message_id"`
	Checkpoint        string `json:"checkpoint"`
	Date              string `json:"date"`
	Status            string `json:"status"`
	Violation         string `json:"violation"`
	RolloverViolation string `json:"rollover_violation"`
	OccurredAt        string `json:"occurred_at"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	ToneLevel         int    `json:"tone_level"`
	ProbationActive   bool   `json:"probation_active"`
}

// CheckpointReminderMessage 截止前的打卡提醒
type CheckpointReminderMessage struct {
	MessageID   string `json:"message_id"`
	Checkpoint  string `json:"checkpoint"`
	Date        string `json:"date"`
	Deadline    string `json:"deadline"`
	ScheduledAt string `json:"scheduled_at"`
	MinutesLeft int    `json:"minutes_left"`
}

// RoutingKeysForOutcome 一次打卡需要发出的事件：先按最严重的违规发 warning / reset，
// 当天计入连续天数时再发 perfect_day。迟到警告和满勤可能出现在同一次打卡里，两条都要发。
func RoutingKeysForOutcome(status, worstViolation string) []string {
	var keys []string
	switch worstViolation {
	case "warning":
		keys = append(keys, RoutingKeyStreakWarning)
	case "reset":
		keys = append(keys, RoutingKeyStreakReset)
	}
	if status == "perfect_day" {
		keys = append(keys, RoutingKeyStreakPerfectDay)
	}
	return keys
}
