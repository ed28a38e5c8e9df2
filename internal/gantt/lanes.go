package gantt

import (
	"cmp"
	"sort"
	"time"
)

// Feature 甘特图上的一条日程条
type Feature struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category,omitempty"`
	Color    string     `json:"color,omitempty"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	SubRow   int        `json:"sub_row"`
}

// endOrStart 未结束的条按起点处的零长度区间处理
func (f Feature) endOrStart() time.Time {
	if f.End == nil || f.End.Before(f.Start) {
		return f.Start
	}
	return *f.End
}

// Pack 贪心分配子行：按开始时间稳定排序，每条放入第一个结束时间 <= 其开始时间的子行，
// 都放不下时新开一行。返回带 SubRow 的新切片（按开始时间排序）与子行数。
func Pack(features []Feature) ([]Feature, int) {
	out := sortedByStart(features)
	starts := make([]int64, len(out))
	ends := make([]int64, len(out))
	for i, f := range out {
		starts[i] = f.Start.UnixNano()
		ends[i] = f.endOrStart().UnixNano()
	}
	rows, n := packSpans(starts, ends)
	for i := range out {
		out[i].SubRow = rows[i]
	}
	return out, n
}

func sortedByStart(features []Feature) []Feature {
	out := append([]Feature(nil), features...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// packSpans 对已按起点排序的 [start, end) 区间做首次适配，返回每个区间的子行号与子行数
func packSpans[T cmp.Ordered](starts, ends []T) ([]int, int) {
	rows := make([]int, len(starts))
	var rowEnds []T
	for i := range starts {
		row := -1
		for r, rowEnd := range rowEnds {
			if rowEnd <= starts[i] {
				row = r
				break
			}
		}
		if row < 0 {
			rowEnds = append(rowEnds, ends[i])
			row = len(rowEnds) - 1
		} else {
			rowEnds[row] = ends[i]
		}
		rows[i] = row
	}
	return rows, len(rowEnds)
}
