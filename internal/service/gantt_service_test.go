package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/gantt"
)

// ── 测试辅助 ──

func setupTestGanttService() (GanttService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewGanttService(repo, testLoc, zap.NewNop())
	svc.(*ganttService).now = func() time.Time { return kst(2025, 6, 15, 10) }
	return svc, m
}

// ── Layout 测试 ──

func TestGanttService_Layout_DefaultsAndScheduleLanes(t *testing.T) {
	svc, m := setupTestGanttService()
	addSchedule(m, "a1", "user-001", calendar.DayOff, kst(2025, 6, 2, 0), kst(2025, 6, 4, 23))
	addSchedule(m, "a2", "user-001", calendar.Education, kst(2025, 6, 3, 0), kst(2025, 6, 3, 23))
	addSchedule(m, "a3", "user-001", calendar.Etc, kst(2025, 6, 10, 9), kst(2025, 6, 10, 10))
	addSchedule(m, "b1", "admin-001", calendar.BusinessTrip, kst(2025, 6, 3, 0), kst(2025, 6, 5, 23))
	// 时间轴之外
	addSchedule(m, "old", "admin-001", calendar.Etc, kst(2020, 1, 1, 9), kst(2020, 1, 1, 10))

	resp, err := svc.Layout(context.Background(), &dto.GanttLayoutRequest{})
	if err != nil {
		t.Fatalf("Layout 应成功: %v", err)
	}
	if resp.Range != gantt.Monthly || resp.Zoom != gantt.DefaultZoom {
		t.Errorf("期望默认 monthly/100，实际 %s/%d", resp.Range, resp.Zoom)
	}
	if resp.StartYear != 2024 || resp.EndYear != 2026 {
		t.Errorf("期望年份范围 2024-2026，实际 %d-%d", resp.StartYear, resp.EndYear)
	}
	if resp.TodayOffset < 0 {
		t.Error("今天在时间轴内，TodayOffset 不应为 -1")
	}
	if resp.Grew || resp.Scroll != nil {
		t.Error("未传滚动状态时不应增长")
	}

	if len(resp.Lanes) != 2 {
		t.Fatalf("期望2条泳道，实际=%d", len(resp.Lanes))
	}
	if resp.Lanes[0].Name != "张三" || resp.Lanes[1].Name != "管理员" {
		t.Errorf("泳道应按用户名排序，实际 %s, %s", resp.Lanes[0].Name, resp.Lanes[1].Name)
	}
	if resp.Lanes[0].SubRows != 2 || len(resp.Lanes[0].Bars) != 3 {
		t.Errorf("张三泳道期望2个子行3个条，实际 %d/%d", resp.Lanes[0].SubRows, len(resp.Lanes[0].Bars))
	}
	for _, b := range resp.Lanes[0].Bars {
		if b.Color != calendar.ColorOf(b.Category) {
			t.Errorf("%s 颜色应取自类别表", b.ID)
		}
		if b.ID == "a3" && b.SubRow != 0 {
			t.Errorf("a3 不与其他条重叠，应复用第0行，实际=%d", b.SubRow)
		}
	}
}

func TestGanttService_Layout_RequestLanes(t *testing.T) {
	svc, _ := setupTestGanttService()
	end := "2025-03-10T00:00:00+09:00"

	resp, err := svc.Layout(context.Background(), &dto.GanttLayoutRequest{
		Range: "daily",
		Zoom:  1000,
		Today: "2025-03-01",
		Lanes: []dto.GanttLaneRequest{{
			ID:   "lane-1",
			Name: "项目",
			Features: []dto.GanttFeatureRequest{
				{ID: "f1", Name: "设计", Start: "2025-03-01T00:00:00+09:00", End: &end},
				{ID: "f2", Name: "进行中", Start: "2025-03-05T00:00:00+09:00"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Layout 应成功: %v", err)
	}
	if resp.Zoom != gantt.MaxZoom {
		t.Errorf("缩放应被夹到 %d，实际=%d", gantt.MaxZoom, resp.Zoom)
	}
	lane := resp.Lanes[0]
	if lane.SubRows != 2 {
		t.Errorf("未结束的条落在已有条内部应新开一行，实际子行数=%d", lane.SubRows)
	}
	for _, b := range lane.Bars {
		if b.ID == "f2" && b.End != nil {
			t.Error("未结束的条 End 应为空")
		}
	}
}

func TestGanttService_Layout_ExtendsToClientYears(t *testing.T) {
	svc, _ := setupTestGanttService()

	resp, err := svc.Layout(context.Background(), &dto.GanttLayoutRequest{StartYear: 2021, EndYear: 2027})
	if err != nil {
		t.Fatalf("Layout 应成功: %v", err)
	}
	if resp.StartYear != 2021 || resp.EndYear != 2027 {
		t.Errorf("期望年份范围 2021-2027，实际 %d-%d", resp.StartYear, resp.EndYear)
	}
	if !resp.Origin.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, testLoc)) {
		t.Errorf("原点应为 2021-01-01，实际=%s", resp.Origin)
	}
}

func TestGanttService_Layout_ScrollLeftPrependsYear(t *testing.T) {
	svc, _ := setupTestGanttService()

	resp, err := svc.Layout(context.Background(), &dto.GanttLayoutRequest{
		Scroll: &gantt.ScrollState{Left: 0, ClientWidth: 1000},
	})
	if err != nil {
		t.Fatalf("Layout 应成功: %v", err)
	}
	if !resp.Grew || resp.StartYear != 2023 {
		t.Fatalf("滚到最左应插入 2023，实际 grew=%v start=%d", resp.Grew, resp.StartYear)
	}
	yearWidth := 12 * gantt.BaseColumnWidth(gantt.Monthly)
	if resp.Scroll.Left != yearWidth {
		t.Errorf("Left 应后移一年的宽度 %.0f，实际=%.0f", yearWidth, resp.Scroll.Left)
	}
	if resp.Scroll.Width != resp.TotalWidth {
		t.Errorf("Width 应等于新总宽度，实际 %.0f / %.0f", resp.Scroll.Width, resp.TotalWidth)
	}
}

func TestGanttService_Layout_ScrollAtYearCapKeepsLayout(t *testing.T) {
	svc, m := setupTestGanttService()
	addSchedule(m, "a1", "user-001", calendar.DayOff, kst(2025, 6, 2, 0), kst(2025, 6, 4, 23))

	// 2024-2026 向前扩到 1997，恰好 30 年
	resp, err := svc.Layout(context.Background(), &dto.GanttLayoutRequest{
		StartYear: 1997,
		Scroll:    &gantt.ScrollState{Left: 0, ClientWidth: 1000},
	})
	if err != nil {
		t.Fatalf("达到年份上限时滚动不应报错: %v", err)
	}
	if resp.Grew || resp.StartYear != 1997 || resp.EndYear != 2026 {
		t.Errorf("达到上限后不应再增长，实际 grew=%v %d-%d", resp.Grew, resp.StartYear, resp.EndYear)
	}
	if resp.Scroll == nil || resp.Scroll.Left != 0 || resp.Scroll.Width != resp.TotalWidth {
		t.Errorf("滚动状态应原样返回，实际=%+v", resp.Scroll)
	}
	if len(resp.Lanes) != 1 || len(resp.Lanes[0].Bars) != 1 {
		t.Errorf("仍应返回日程条，实际泳道=%d", len(resp.Lanes))
	}
}

func TestGanttService_Layout_Errors(t *testing.T) {
	svc, _ := setupTestGanttService()
	ctx := context.Background()

	if _, err := svc.Layout(ctx, &dto.GanttLayoutRequest{Range: "weekly"}); !errors.Is(err, ErrGanttRangeInvalid) {
		t.Errorf("期望 ErrGanttRangeInvalid，实际: %v", err)
	}
	if _, err := svc.Layout(ctx, &dto.GanttLayoutRequest{StartYear: 1950}); !errors.Is(err, ErrGanttSpanTooLarge) {
		t.Errorf("期望 ErrGanttSpanTooLarge，实际: %v", err)
	}
	if _, err := svc.Layout(ctx, &dto.GanttLayoutRequest{StartYear: 2026, EndYear: 2022}); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
}

// ── DateAt 测试 ──

func TestGanttService_DateAt(t *testing.T) {
	svc, _ := setupTestGanttService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.GanttDateAtRequest
		want string
	}{
		{"monthly 原点", dto.GanttDateAtRequest{X: 0}, "2024-01-01"},
		{"扩展后的原点", dto.GanttDateAtRequest{StartYear: 2023, X: 0}, "2023-01-01"},
		{"daily 第32列", dto.GanttDateAtRequest{Range: "daily", X: 31 * 50}, "2024-02-01"},
		{"timely 小时", dto.GanttDateAtRequest{Range: "timely", X: 13.5 * 60}, "2025-06-15T13:00"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := c.req
			resp, err := svc.DateAt(ctx, &req)
			if err != nil {
				t.Fatalf("DateAt 应成功: %v", err)
			}
			if resp.Date != c.want {
				t.Errorf("期望 %s，实际 %s", c.want, resp.Date)
			}
		})
	}
}
