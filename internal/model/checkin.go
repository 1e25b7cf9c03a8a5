package model

import (
	"StreakKeeper/internal/checkpoint"
)

// StateRecordID 全局唯一的状态记录主键
const StateRecordID int64 = 1

// CheckpointState 打卡状态记录（单例），每次打卡整体读-改-写
type CheckpointState struct {
	BaseModel
	ActiveDate         string `gorm:"type:varchar(10);not null;default:''" json:"active_date"`
	MorningCompleted   bool   `gorm:"not null;default:false" json:"morning_completed"`
	AfternoonCompleted bool   `gorm:"not null;default:false" json:"afternoon_completed"`
	EveningCompleted   bool   `gorm:"not null;default:false" json:"evening_completed"`
	ProbationActive    bool   `gorm:"not null;default:false" json:"probation_active"`
	CurrentStreak      int    `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak      int    `gorm:"not null;default:0" json:"longest_streak"`
	LastCompletedDate  string `gorm:"type:varchar(10);not null;default:''" json:"last_completed_date"`
	// Version 乐观锁版本号，每次成功写入加一
	Version int64 `gorm:"not null;default:0" json:"version"`
}

// TableName 指定表名
func (CheckpointState) TableName() string {
	return "checkpoint_state"
}

// NewCheckpointState 首次使用时的空记录
func NewCheckpointState() *CheckpointState {
	return &CheckpointState{BaseModel: BaseModel{ID: StateRecordID}}
}

// State 转换为状态机使用的显式结构
func (r *CheckpointState) State() checkpoint.State {
	return checkpoint.State{
		Day: checkpoint.DayState{
			ActiveDate:         r.ActiveDate,
			MorningCompleted:   r.MorningCompleted,
			AfternoonCompleted: r.AfternoonCompleted,
			EveningCompleted:   r.EveningCompleted,
		},
		Probation: checkpoint.ProbationState{Active: r.ProbationActive},
		Streak: checkpoint.StreakState{
			Current:           r.CurrentStreak,
			Longest:           r.LongestStreak,
			LastCompletedDate: r.LastCompletedDate,
		},
	}
}

// WithState 返回写入新状态后的副本，主键与版本号保持不变
func (r *CheckpointState) WithState(s checkpoint.State) *CheckpointState {
	next := *r
	next.ActiveDate = s.Day.ActiveDate
	next.MorningCompleted = s.Day.MorningCompleted
	next.AfternoonCompleted = s.Day.AfternoonCompleted
	next.EveningCompleted = s.Day.EveningCompleted
	next.ProbationActive = s.Probation.Active
	next.CurrentStreak = s.Streak.Current
	next.LongestStreak = s.Streak.Longest
	next.LastCompletedDate = s.Streak.LastCompletedDate
	return &next
}
