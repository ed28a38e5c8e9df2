package gantt

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// 浮点误差容忍，避免 d*ppd/ppd 落在整数下方
const epsilon = 1e-6

// Offset 日期在时间轴上距原点的像素偏移
//
//   - timely：(hour + minute/60) × 列宽
//   - daily：整天数 × 列宽
//   - monthly / quarterly：整月数 × 列宽 + 日 × (列宽 / 当月天数)
func (c *Context) Offset(date time.Time) float64 {
	date = date.In(c.Location)
	cw := c.ColumnWidth()

	switch c.Range {
	case Timely:
		return (float64(date.Hour()) + float64(date.Minute())/60) * cw
	case Daily:
		return float64(civilDays(date)-civilDays(c.Origin())) * cw
	default:
		fullColumns := monthIndex(date) - monthIndex(c.Origin())
		pixelsPerDay := cw / float64(daysIn(date.Year(), date.Month()))
		return float64(fullColumns)*cw + float64(date.Day())*pixelsPerDay
	}
}

// Width 跨越 start~end 的条宽；end 为 nil（未结束）时取默认宽度：两列，timely 为一小时
func (c *Context) Width(start time.Time, end *time.Time) float64 {
	cw := c.ColumnWidth()
	if end == nil {
		if c.Range == Timely {
			return cw
		}
		return 2 * cw
	}

	s := start.In(c.Location)
	e := end.In(c.Location)
	if e.Before(s) {
		e = s
	}

	switch c.Range {
	case Timely:
		h := e.Sub(s).Hours()
		if h <= 0 {
			h = 1
		}
		return h * cw
	case Daily:
		delta := civilDays(e) - civilDays(s)
		if delta == 0 {
			delta = 1
		}
		return float64(delta) * cw
	}

	daysInStart := daysIn(s.Year(), s.Month())
	ppdStart := cw / float64(daysInStart)

	if civilDays(s) == civilDays(e) {
		return ppdStart
	}
	if monthIndex(s) == monthIndex(e) {
		return float64(civilDays(e)-civilDays(s)) * ppdStart
	}

	ppdEnd := cw / float64(daysIn(e.Year(), e.Month()))
	fullMonths := monthIndex(e) - monthIndex(s)
	return float64(fullMonths-1)*cw +
		float64(daysInStart-s.Day())*ppdStart +
		float64(e.Day())*ppdEnd
}

// DateAt 鼠标 x 坐标反查日期，是 Offset 的左逆：DateAt(Offset(d)) 返回 d 截断到当前粒度
// （daily / monthly / quarterly 截断到天，timely 截断到小时）
func (c *Context) DateAt(mouseX float64) time.Time {
	if mouseX < 0 {
		mouseX = 0
	}
	cw := c.ColumnWidth()
	origin := c.Origin()

	switch c.Range {
	case Timely:
		hour := int(math.Floor(mouseX/cw + epsilon))
		if hour > 23 {
			hour = 23
		}
		// 按墙上时间取小时，夏令时切换日也与 Offset 对应
		return time.Date(origin.Year(), origin.Month(), origin.Day(), hour, 0, 0, 0, c.Location)
	case Daily:
		return origin.AddDate(0, 0, int(math.Floor(mouseX/cw+epsilon)))
	}

	col := int(math.Floor(mouseX/cw + epsilon))
	month := origin.AddDate(0, col, 0)
	dim := daysIn(month.Year(), month.Month())
	pixelsPerDay := cw / float64(dim)

	day := int(math.Floor((mouseX-float64(col)*cw)/pixelsPerDay + epsilon))
	if day <= 0 {
		// 列起点对应上一列最后一天的结束位置
		if col == 0 {
			return month
		}
		return month.AddDate(0, 0, -1)
	}
	if day > dim {
		day = dim
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, c.Location)
}

// TodayOffset 当前时刻的标记位置；不在时间轴内时返回 -1
func (c *Context) TodayOffset(now time.Time) float64 {
	if now.Before(c.Origin()) || !now.Before(c.End()) {
		return -1
	}
	return c.Offset(now)
}

// Column 表头单列
type Column struct {
	Label  string  `json:"label"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// HeaderGroup 表头分组（年 / 季度 / 月 / 日）
type HeaderGroup struct {
	Label   string   `json:"label"`
	Columns []Column `json:"columns"`
}

// Headers 生成表头
//
//   - monthly：按年分组，每列一个月
//   - quarterly：按季度分组，每列一个月
//   - daily：按月分组，每列一天
//   - timely：单组，每列一小时
func (c *Context) Headers() []HeaderGroup {
	cw := c.ColumnWidth()

	if c.Range == Timely {
		g := HeaderGroup{Label: c.Day.Format("2006-01-02")}
		for h := 0; h < 24; h++ {
			g.Columns = append(g.Columns, Column{Label: formatHour(h), Offset: float64(h) * cw, Width: cw})
		}
		return []HeaderGroup{g}
	}

	var groups []HeaderGroup
	offset := 0.0
	for _, y := range c.Years {
		yearGroup := HeaderGroup{Label: strconv.Itoa(y.Year)}
		for qi, q := range y.Quarters {
			quarterGroup := HeaderGroup{Label: "Q" + strconv.Itoa(qi+1) + " " + strconv.Itoa(y.Year)}
			for _, m := range q.Months {
				if c.Range == Daily {
					dayGroup := HeaderGroup{Label: time.Date(y.Year, m.Month, 1, 0, 0, 0, 0, c.Location).Format("2006-01")}
					for d := 1; d <= m.Days; d++ {
						dayGroup.Columns = append(dayGroup.Columns, Column{Label: strconv.Itoa(d), Offset: offset, Width: cw})
						offset += cw
					}
					groups = append(groups, dayGroup)
					continue
				}
				col := Column{Label: m.Month.String()[:3], Offset: offset, Width: cw}
				offset += cw
				yearGroup.Columns = append(yearGroup.Columns, col)
				quarterGroup.Columns = append(quarterGroup.Columns, col)
			}
			if c.Range == Quarterly {
				groups = append(groups, quarterGroup)
			}
		}
		if c.Range == Monthly {
			groups = append(groups, yearGroup)
		}
	}
	return groups
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
