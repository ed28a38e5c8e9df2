// Package gantt 甘特图时间轴的几何计算：列偏移、条宽、鼠标位置反查与子行分配。
package gantt

import (
	"fmt"
	"time"
)

// Range 时间轴粒度
type Range string

const (
	Daily     Range = "daily"
	Monthly   Range = "monthly"
	Quarterly Range = "quarterly"
	Timely    Range = "timely"
)

// ParseRange 解析粒度字符串，空串默认 monthly
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case "":
		return Monthly, nil
	case Daily, Monthly, Quarterly, Timely:
		return Range(s), nil
	}
	return "", fmt.Errorf("无效的时间轴粒度 %q", s)
}

// BaseColumnWidth zoom=100 时的列宽（像素）
func BaseColumnWidth(r Range) float64 {
	switch r {
	case Daily:
		return 50
	case Quarterly:
		return 100
	case Timely:
		return 60
	default:
		return 150
	}
}

const (
	DefaultZoom = 100
	MinZoom     = 25
	MaxZoom     = 400
)

// ClampZoom 非正值视为默认值，其余夹在 [MinZoom, MaxZoom]
func ClampZoom(z int) int {
	switch {
	case z <= 0:
		return DefaultZoom
	case z < MinZoom:
		return MinZoom
	case z > MaxZoom:
		return MaxZoom
	}
	return z
}

// Month 月份桶
type Month struct {
	Month time.Month `json:"month"`
	Days  int        `json:"days"`
}

// Quarter 季度桶
type Quarter struct {
	Months []Month `json:"months"`
}

// Year 年份桶
type Year struct {
	Year     int       `json:"year"`
	Quarters []Quarter `json:"quarters"`
}

// Days 该年的天数
func (y Year) Days() int {
	n := 0
	for _, q := range y.Quarters {
		for _, m := range q.Months {
			n += m.Days
		}
	}
	return n
}

func newYear(year int) Year {
	y := Year{Year: year, Quarters: make([]Quarter, 4)}
	for q := 0; q < 4; q++ {
		months := make([]Month, 3)
		for i := 0; i < 3; i++ {
			m := time.Month(q*3 + i + 1)
			months[i] = Month{Month: m, Days: daysIn(year, m)}
		}
		y.Quarters[q] = Quarter{Months: months}
	}
	return y
}

// Context 一次时间轴渲染的全部状态
// 切换粒度时应通过 NewContext 重新创建，旧的年份桶不再保留
type Context struct {
	Range Range
	Zoom  int
	Years []Year
	// Day 仅 timely 模式使用：单日 24 小时桶
	Day      time.Time
	Location *time.Location
}

// NewContext 以 today 为中心创建时间轴（前后各一年；timely 为当天）
func NewContext(r Range, zoom int, today time.Time, loc *time.Location) *Context {
	if loc == nil {
		loc = time.UTC
	}
	today = today.In(loc)
	c := &Context{Range: r, Zoom: ClampZoom(zoom), Location: loc}
	if r == Timely {
		c.Day = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
		return c
	}
	for y := today.Year() - 1; y <= today.Year()+1; y++ {
		c.Years = append(c.Years, newYear(y))
	}
	return c
}

// ColumnWidth 当前缩放下的列宽
func (c *Context) ColumnWidth() float64 {
	return BaseColumnWidth(c.Range) * float64(c.Zoom) / 100
}

// Origin 时间轴原点：首年 1 月 1 日；timely 为当天 0 点
func (c *Context) Origin() time.Time {
	if c.Range == Timely || len(c.Years) == 0 {
		return c.Day
	}
	return time.Date(c.Years[0].Year, time.January, 1, 0, 0, 0, 0, c.Location)
}

// End 时间轴终点（不含）
func (c *Context) End() time.Time {
	if c.Range == Timely || len(c.Years) == 0 {
		return c.Day.AddDate(0, 0, 1)
	}
	return time.Date(c.Years[len(c.Years)-1].Year+1, time.January, 1, 0, 0, 0, 0, c.Location)
}

// YearWidth 单个年份桶占用的像素宽度
func (c *Context) YearWidth(y Year) float64 {
	if c.Range == Daily {
		return float64(y.Days()) * c.ColumnWidth()
	}
	return 12 * c.ColumnWidth()
}

// TotalWidth 时间轴总宽度
func (c *Context) TotalWidth() float64 {
	if c.Range == Timely {
		return 24 * c.ColumnWidth()
	}
	total := 0.0
	for _, y := range c.Years {
		total += c.YearWidth(y)
	}
	return total
}

// PrependYear 在头部插入前一年，返回新增宽度
func (c *Context) PrependYear() float64 {
	if c.Range == Timely || len(c.Years) == 0 {
		return 0
	}
	y := newYear(c.Years[0].Year - 1)
	c.Years = append([]Year{y}, c.Years...)
	return c.YearWidth(y)
}

// AppendYear 在尾部追加后一年，返回新增宽度
func (c *Context) AppendYear() float64 {
	if c.Range == Timely || len(c.Years) == 0 {
		return 0
	}
	y := newYear(c.Years[len(c.Years)-1].Year + 1)
	c.Years = append(c.Years, y)
	return c.YearWidth(y)
}

// ScrollState 滚动容器状态
type ScrollState struct {
	Left        float64 `json:"scroll_left"`
	Width       float64 `json:"scroll_width"`
	ClientWidth float64 `json:"client_width"`
}

// Scroll 无限滚动：滚到最左侧时插入前一年，并把 Left 后移新增宽度以保持视觉位置；
// 滚到最右侧时追加后一年，Left 不变。返回调整后的状态以及时间轴是否增长。
func (c *Context) Scroll(s ScrollState) (ScrollState, bool) {
	if c.Range == Timely || len(c.Years) == 0 {
		return s, false
	}
	if s.Width <= 0 {
		s.Width = c.TotalWidth()
	}
	if s.Left <= 0 {
		added := c.PrependYear()
		s.Left = added
		s.Width += added
		return s, true
	}
	if s.Left+s.ClientWidth >= s.Width {
		s.Width += c.AppendYear()
		return s, true
	}
	return s, false
}

// ScrollCapped 同 Scroll，但年份数已达 maxYears 时不再增长，原样返回滚动状态
func (c *Context) ScrollCapped(s ScrollState, maxYears int) (ScrollState, bool) {
	if maxYears > 0 && len(c.Years) >= maxYears {
		if s.Width <= 0 {
			s.Width = c.TotalWidth()
		}
		return s, false
	}
	return c.Scroll(s)
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// civilDays 自公元纪年起的日序号，忽略时区与夏令时
func civilDays(t time.Time) int {
	return int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
