package calendar

import (
	"fmt"
	"time"
)

// Schedule 原始日程记录（来自数据库）
type Schedule struct {
	ID          string
	Title       string
	Description string
	Category    string
	UserID      string
	UserName    string
	Start       time.Time
	End         time.Time
}

// Event 日历可显示事件
type Event struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Category          string    `json:"category"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name,omitempty"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	ColorCode         string    `json:"color_code"`
	IsAllDay          bool      `json:"is_all_day"`
	IsOffDay          bool      `json:"is_off_day"`
	IsUserVisible     bool      `json:"is_user_visible"`
	IsCalendarVisible bool      `json:"is_calendar_visible"`
}

// Range 当前渲染的日期范围（月视图通常包含前后月份的补位天）
type Range struct {
	Start time.Time
	End   time.Time
}

// Period 当前聚焦的年月
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf 取 t 所在年月
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod 解析 YYYY-MM
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("无效的年月 %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// IsZero 是否未设置
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// VisibilityKind SetEventVisible 的目标维度
type VisibilityKind string

const (
	KindUser     VisibilityKind = "user"
	KindCalendar VisibilityKind = "calendar"
)

// Builder 事件推导器
// Location 决定“月份”按哪个时区判断，Now 在未指定聚焦月份时提供回退值
type Builder struct {
	Location *time.Location
	Now      func() time.Time
}

// NewBuilder 创建推导器，loc 为 nil 时使用 UTC
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{Location: loc, Now: time.Now}
}

// BuildEvents 将原始日程转换为显示事件
// 可见性标记默认全部为 true，需调用方再用 ApplyVisibility 推导
func (b *Builder) BuildEvents(schedules []Schedule, rng Range, focus Period) []Event {
	if focus.IsZero() {
		focus = PeriodOf(b.Now().In(b.Location))
	}
	rangeStart := PeriodOf(rng.Start.In(b.Location))
	rangeEnd := PeriodOf(rng.End.In(b.Location))

	events := make([]Event, 0, len(schedules))
	for _, s := range schedules {
		start := PeriodOf(s.Start.In(b.Location))
		end := PeriodOf(s.End.In(b.Location))

		// 头部补位（属于上月）与尾部补位（属于下月）的事件需要弱化显示
		head := end != focus && start == rangeStart
		tail := start != focus && end == rangeEnd

		events = append(events, Event{
			ID:                s.ID,
			Title:             s.Title,
			Description:       s.Description,
			Category:          s.Category,
			UserID:            s.UserID,
			UserName:          s.UserName,
			Start:             s.Start,
			End:               s.End,
			ColorCode:         ColorOf(s.Category),
			IsAllDay:          IsAllDay(s.Category),
			IsOffDay:          head || tail,
			IsUserVisible:     true,
			IsCalendarVisible: true,
		})
	}
	return events
}

// ApplyVisibility 按显示状态重新推导每个事件的两个可见性标记
func ApplyVisibility(events []Event, v Visibility) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.IsUserVisible = v.UserVisible(e.UserID)
		e.IsCalendarVisible = v.CalendarVisible(e.Category)
		out[i] = e
	}
	return out
}

// SetEventVisible 对匹配 id 的所有事件设置对应维度的可见性
func SetEventVisible(events []Event, id string, visible bool, kind VisibilityKind) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		switch kind {
		case KindUser:
			if e.UserID == id {
				e.IsUserVisible = visible
			}
		case KindCalendar:
			if e.Category == id {
				e.IsCalendarVisible = visible
			}
		}
		out[i] = e
	}
	return out
}

// Visible 过滤出两个维度都可见的事件
func Visible(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.IsUserVisible && e.IsCalendarVisible {
			out = append(out, e)
		}
	}
	return out
}
