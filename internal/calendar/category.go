// Package calendar 日历显示层的纯逻辑：日程类别表、显示状态与事件标记推导。
package calendar

import "github.com/shopspring/decimal"

// Category 日程类别定义
type Category struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	IsAllDay bool            `json:"is_all_day"`
	Hours    decimal.Decimal `json:"hours"` // 计入休假扣减的小时数
}

// 类别代码
const (
	DayOff          = "DAYOFF"
	MorningOff      = "MORNINGOFF"
	AfternoonOff    = "AFTERNOONOFF"
	OneTimeOff      = "ONETIMEOFF"
	TwoTimeOff      = "TWOTIMEOFF"
	ThreeTimeOff    = "THREETIMEOFF"
	FourTimeOff     = "FOURTIMEOFF"
	FiveTimeOff     = "FIVETIMEOFF"
	SixTimeOff      = "SIXTIMEOFF"
	SevenTimeOff    = "SEVENTIMEOFF"
	Education       = "EDUCATION"
	Birthday        = "BIRTHDAY"
	BusinessTrip    = "BUSINESSTRIP"
	BirthParty      = "BIRTHPARTY"
	HealthCheck     = "HEALTHCHECK"
	HealthCheckHalf = "HEALTHCHECKHALF"
	Defense         = "DEFENSE"
	DefenseHalf     = "DEFENSEHALF"
	Etc             = "ETC"
)

func hours(h int64) decimal.Decimal { return decimal.NewFromInt(h) }

// registry 所有消费者共享的唯一类别表，顺序即展示顺序
var registry = []Category{
	{Code: DayOff, Name: "年假", Color: "#9e5fff", IsAllDay: true, Hours: hours(8)},
	{Code: MorningOff, Name: "上午半休", Color: "#00a9ff", Hours: hours(4)},
	{Code: AfternoonOff, Name: "下午半休", Color: "#03bd9e", Hours: hours(4)},
	{Code: OneTimeOff, Name: "1小时休", Color: "#ffbb3b", Hours: hours(1)},
	{Code: TwoTimeOff, Name: "2小时休", Color: "#ff9f3b", Hours: hours(2)},
	{Code: ThreeTimeOff, Name: "3小时休", Color: "#ff833b", Hours: hours(3)},
	{Code: FourTimeOff, Name: "4小时休", Color: "#ff5583", Hours: hours(4)},
	{Code: FiveTimeOff, Name: "5小时休", Color: "#ff3b6f", Hours: hours(5)},
	{Code: SixTimeOff, Name: "6小时休", Color: "#e53b3b", Hours: hours(6)},
	{Code: SevenTimeOff, Name: "7小时休", Color: "#bb3bff", Hours: hours(7)},
	{Code: Education, Name: "培训", Color: "#2c7a7b", IsAllDay: true, Hours: decimal.Zero},
	{Code: Birthday, Name: "生日", Color: "#ff6ec7", IsAllDay: true, Hours: decimal.Zero},
	{Code: BusinessTrip, Name: "出差", Color: "#6b7280", IsAllDay: true, Hours: decimal.Zero},
	{Code: BirthParty, Name: "生日会", Color: "#f472b6", IsAllDay: true, Hours: decimal.Zero},
	{Code: HealthCheck, Name: "体检", Color: "#10b981", IsAllDay: true, Hours: decimal.Zero},
	{Code: HealthCheckHalf, Name: "体检（半天）", Color: "#34d399", Hours: decimal.Zero},
	{Code: Defense, Name: "民防训练", Color: "#4b5563", IsAllDay: true, Hours: decimal.Zero},
	{Code: DefenseHalf, Name: "民防训练（半天）", Color: "#9ca3af", Hours: decimal.Zero},
	{Code: Etc, Name: "其他", Color: "#64748b", Hours: decimal.Zero},
}

var byCode = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for _, c := range registry {
		m[c.Code] = c
	}
	return m
}()

// Lookup 按代码查找类别
func Lookup(code string) (Category, bool) {
	c, ok := byCode[code]
	return c, ok
}

// Valid 代码是否已登记
func Valid(code string) bool {
	_, ok := byCode[code]
	return ok
}

// ColorOf 类别颜色，未知类别返回空串（前端使用默认色）
func ColorOf(code string) string {
	return byCode[code].Color
}

// IsAllDay 是否全天类别，未知类别为 false
func IsAllDay(code string) bool {
	return byCode[code].IsAllDay
}

// HoursOf 类别扣减小时数，未知类别为 0
func HoursOf(code string) decimal.Decimal {
	c, ok := byCode[code]
	if !ok {
		return decimal.Zero
	}
	return c.Hours
}

// All 按展示顺序返回全部类别的副本
func All() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// Codes 全部类别代码
func Codes() []string {
	out := make([]string, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.Code)
	}
	return out
}
