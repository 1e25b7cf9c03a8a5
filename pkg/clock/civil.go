package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // 容器镜像里不一定带 zoneinfo

	"StreakKeeper/pkg/errors"
)

// DateLayout 日期键格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// Civil 指定时区下的日历/钟表字段，调用方无需再做任何时区或夏令时换算
type Civil struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// DateKey 格式化为 YYYY-MM-DD
func (c Civil) DateKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
}

// MinuteOfDay 当天已过去的分钟数
func (c Civil) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// ClockLabel 形如 9:05 的时刻展示
func (c Civil) ClockLabel() string {
	return fmt.Sprintf("%d:%02d", c.Hour, c.Minute)
}

// FromTime 把瞬时时间换算到 loc 所在时区的日历字段
func FromTime(t time.Time, loc *time.Location) Civil {
	local := t.In(loc)
	return Civil{
		Year:   local.Year(),
		Month:  int(local.Month()),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// Adapter 把 Clock 的瞬时时间转换为固定时区的日历时间
type Adapter struct {
	clock    Clock
	location *time.Location
}

// NewAdapter 时区加载失败视为时钟不可用，属于启动期致命错误
func NewAdapter(c Clock, timezone string) (*Adapter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: load location %q: %v", errors.ClockUnavailable, timezone, err)
	}
	if c == nil {
		c = Real()
	}
	return &Adapter{clock: c, location: loc}, nil
}

func (a *Adapter) Now() Civil {
	return FromTime(a.clock.Now(), a.location)
}

func (a *Adapter) TodayKey() string {
	return a.Now().DateKey()
}

func (a *Adapter) Location() *time.Location {
	return a.location
}

// ValidDateKey 判断字符串是否为合法的 YYYY-MM-DD
func ValidDateKey(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
