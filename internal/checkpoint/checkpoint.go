package checkpoint

import (
	"fmt"
	"time"

	"StreakKeeper/pkg/errors"
)

// Checkpoint 每日三个打卡点
type Checkpoint string

const (
	Morning   Checkpoint = "morning"
	Afternoon Checkpoint = "afternoon"
	Evening   Checkpoint = "evening"
)

// All 按一天中的先后顺序排列
var All = []Checkpoint{Morning, Afternoon, Evening}

// DefaultGraceMinutes 超过截止时间但不计违规的宽限分钟数
const DefaultGraceMinutes = 15

// ParseCheckpoint 校验打卡点名称，只接受三个小写名称原文，其余一律返回 CheckpointInvalid
func ParseCheckpoint(name string) (Checkpoint, error) {
	switch cp := Checkpoint(name); cp {
	case Morning, Afternoon, Evening:
		return cp, nil
	}
	return "", errors.CheckpointInvalid.WithMessage(
		fmt.Sprintf("unknown checkpoint %q, expected morning, afternoon or evening", name),
	)
}

func (c Checkpoint) String() string { return string(c) }

// Deadline 所在时区的截止时刻
type Deadline struct {
	Hour   int
	Minute int
}

// ParseDeadline 解析 HH:MM
func ParseDeadline(s string) (Deadline, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Deadline{}, fmt.Errorf("parse deadline %q: %w", s, err)
	}
	return Deadline{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (d Deadline) MinuteOfDay() int {
	return d.Hour*60 + d.Minute
}

func (d Deadline) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Policy 截止时间表和宽限期，均来自配置
type Policy struct {
	Deadlines    map[Checkpoint]Deadline
	GraceMinutes int
}

// DefaultPolicy 早 09:00、午 14:00、晚 21:00，宽限 15 分钟
func DefaultPolicy() Policy {
	return Policy{
		Deadlines: map[Checkpoint]Deadline{
			Morning:   {Hour: 9},
			Afternoon: {Hour: 14},
			Evening:   {Hour: 21},
		},
		GraceMinutes: DefaultGraceMinutes,
	}
}

// NewPolicy 由 HH:MM 字符串构建规则
func NewPolicy(morning, afternoon, evening string, graceMinutes int) (Policy, error) {
	p := Policy{Deadlines: make(map[Checkpoint]Deadline, len(All)), GraceMinutes: graceMinutes}
	for cp, raw := range map[Checkpoint]string{Morning: morning, Afternoon: afternoon, Evening: evening} {
		d, err := ParseDeadline(raw)
		if err != nil {
			return Policy{}, fmt.Errorf("%s: %w", cp, err)
		}
		p.Deadlines[cp] = d
	}
	if graceMinutes < 0 {
		return Policy{}, fmt.Errorf("grace minutes must be >= 0, got %d", graceMinutes)
	}
	return p, nil
}

// Deadline 查询截止时间，不在表中的打卡点视为非法
func (p Policy) Deadline(cp Checkpoint) (Deadline, error) {
	d, ok := p.Deadlines[cp]
	if !ok {
		return Deadline{}, errors.CheckpointInvalid.WithMessage(
			fmt.Sprintf("no deadline configured for checkpoint %q", cp),
		)
	}
	return d, nil
}
