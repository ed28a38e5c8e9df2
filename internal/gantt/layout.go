package gantt

import (
	"sort"
	"time"
)

// Lane 同一泳道（通常是一个用户）下的日程条
type Lane struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Features []Feature `json:"features"`
}

// Bar 已定位的日程条
type Bar struct {
	Feature
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// LaneLayout 泳道布局结果
type LaneLayout struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SubRows int    `json:"sub_rows"`
	Bars    []Bar  `json:"bars"`
}

// Layout 整个甘特图的布局
type Layout struct {
	Range       Range         `json:"range"`
	Zoom        int           `json:"zoom"`
	ColumnWidth float64       `json:"column_width"`
	TotalWidth  float64       `json:"total_width"`
	Origin      time.Time     `json:"origin"`
	End         time.Time     `json:"end"`
	TodayOffset float64       `json:"today_offset"`
	Headers     []HeaderGroup `json:"headers"`
	Lanes       []LaneLayout  `json:"lanes"`
}

// Build 计算表头、每条泳道的子行分配以及每个日程条的偏移和宽度
func (c *Context) Build(lanes []Lane, now time.Time) Layout {
	out := Layout{
		Range:       c.Range,
		Zoom:        c.Zoom,
		ColumnWidth: c.ColumnWidth(),
		TotalWidth:  c.TotalWidth(),
		Origin:      c.Origin(),
		End:         c.End(),
		TodayOffset: c.TodayOffset(now),
		Headers:     c.Headers(),
		Lanes:       make([]LaneLayout, 0, len(lanes)),
	}

	for _, lane := range lanes {
		out.Lanes = append(out.Lanes, c.layoutLane(lane))
	}
	return out
}

// layoutLane 按条在屏幕上的实际跨度分配子行：未结束的条占默认宽度，同日短条至少占一个刻度，
// 同一子行内的条在像素上互不重叠
func (c *Context) layoutLane(lane Lane) LaneLayout {
	sorted := sortedByStart(lane.Features)
	bars := make([]Bar, len(sorted))
	for i, f := range sorted {
		bars[i] = Bar{Feature: f, Offset: c.Offset(f.Start), Width: c.Width(f.Start, f.End)}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Offset < bars[j].Offset })

	starts := make([]float64, len(bars))
	ends := make([]float64, len(bars))
	for i := range bars {
		starts[i] = bars[i].Offset
		// 首尾相接的条因浮点误差可能略有重叠
		ends[i] = bars[i].Offset + bars[i].Width - epsilon
	}

	rows, n := packSpans(starts, ends)
	for i := range bars {
		bars[i].SubRow = rows[i]
	}
	return LaneLayout{ID: lane.ID, Name: lane.Name, SubRows: n, Bars: bars}
}
