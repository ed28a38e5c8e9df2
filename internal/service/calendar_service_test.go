package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"porest/backend/config"
	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestCalendarService() (CalendarService, VisibilityStore, *mockRepos) {
	repo, m := newMockRepos()
	logger := zap.NewNop()
	holidays := NewHolidayService(repo, config.HolidayConfig{}, nil, testLoc, logger)
	store := NewMemoryVisibilityStore()
	return NewCalendarService(repo, holidays, store, testLoc, logger), store, m
}

func mayView() *dto.CalendarEventsRequest {
	// 5 月月视图：含 4 月末与 6 月初的补位天
	return &dto.CalendarEventsRequest{
		DateRangeRequest: dto.DateRangeRequest{Start: "2025-04-27", End: "2025-06-07"},
		Focus:            "2025-05",
	}
}

func eventByID(events []calendar.Event, id string) *calendar.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

// ── Events 测试 ──

func TestCalendarService_Events_OffDayFlags(t *testing.T) {
	svc, _, m := setupTestCalendarService()
	addSchedule(m, "head", "user-001", calendar.DayOff, kst(2025, 4, 28, 0), kst(2025, 4, 28, 23))
	addSchedule(m, "mid", "user-001", calendar.MorningOff, kst(2025, 5, 12, 9), kst(2025, 5, 12, 13))
	addSchedule(m, "tail", "admin-001", calendar.BusinessTrip, kst(2025, 6, 3, 0), kst(2025, 6, 4, 23))
	addSchedule(m, "span", "user-001", calendar.Education, kst(2025, 4, 30, 0), kst(2025, 5, 2, 23))
	m.holiday.holidays["h1"] = &model.Holiday{HolidayID: "h1", Name: "儿童节", Date: kstDate(2020, 5, 5), RecurringYearly: true}

	resp, err := svc.Events(context.Background(), "user-001", mayView())
	if err != nil {
		t.Fatalf("Events 应成功: %v", err)
	}
	if resp.Focus != "2025-05" {
		t.Errorf("期望Focus=2025-05，实际=%s", resp.Focus)
	}
	if len(resp.Events) != 4 {
		t.Fatalf("期望4个事件，实际=%d", len(resp.Events))
	}

	cases := map[string]bool{"head": true, "mid": false, "tail": true, "span": false}
	for id, want := range cases {
		e := eventByID(resp.Events, id)
		if e == nil {
			t.Fatalf("缺少事件 %s", id)
		}
		if e.IsOffDay != want {
			t.Errorf("%s 期望IsOffDay=%v，实际=%v", id, want, e.IsOffDay)
		}
		if !e.IsUserVisible || !e.IsCalendarVisible {
			t.Errorf("%s 默认应全部可见", id)
		}
	}
	if e := eventByID(resp.Events, "tail"); e.UserName != "管理员" || e.ColorCode != calendar.ColorOf(calendar.BusinessTrip) {
		t.Errorf("事件派生字段错误: %+v", e)
	}

	if len(resp.Holidays) != 1 || resp.Holidays[0].Date != "2025-05-05" {
		t.Errorf("期望展开出 2025-05-05 节假日，实际=%+v", resp.Holidays)
	}
	if !resp.Visibility.All || len(resp.Visibility.Users) != 2 {
		t.Errorf("默认显示状态应包含全部用户且全部可见，实际=%+v", resp.Visibility)
	}
}

func TestCalendarService_Events_InvalidFocus(t *testing.T) {
	svc, _, _ := setupTestCalendarService()
	req := mayView()
	req.Focus = "2025-13"

	if _, err := svc.Events(context.Background(), "user-001", req); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

// ── Visibility 测试 ──

func TestCalendarService_Toggle_User(t *testing.T) {
	svc, store, m := setupTestCalendarService()
	addSchedule(m, "mine", "user-001", calendar.DayOff, kst(2025, 5, 12, 0), kst(2025, 5, 12, 23))
	addSchedule(m, "theirs", "admin-001", calendar.DayOff, kst(2025, 5, 13, 0), kst(2025, 5, 13, 23))
	ctx := context.Background()

	v, err := svc.Toggle(ctx, "user-001", ToggleUser, "admin-001")
	if err != nil {
		t.Fatalf("Toggle 应成功: %v", err)
	}
	if v.UserVisible("admin-001") || v.AllUsers || v.All {
		t.Errorf("隐藏一个用户后汇总标记应为 false: %+v", v)
	}
	if !v.Consistent() {
		t.Error("显示状态应保持一致")
	}

	if _, ok, _ := store.Load(ctx, "user-001"); !ok {
		t.Error("切换后应持久化显示状态")
	}
	if _, ok, _ := store.Load(ctx, "admin-001"); ok {
		t.Error("其他用户的显示状态不应受影响")
	}

	resp, err := svc.Events(ctx, "user-001", mayView())
	if err != nil {
		t.Fatalf("Events 应成功: %v", err)
	}
	if eventByID(resp.Events, "theirs").IsUserVisible {
		t.Error("被隐藏用户的事件 IsUserVisible 应为 false")
	}
	if !eventByID(resp.Events, "mine").IsUserVisible {
		t.Error("未隐藏用户的事件应可见")
	}
}

func TestCalendarService_Toggle_AllTwiceRestores(t *testing.T) {
	svc, _, _ := setupTestCalendarService()
	ctx := context.Background()

	v, err := svc.Toggle(ctx, "user-001", ToggleAll, "")
	if err != nil {
		t.Fatalf("Toggle 应成功: %v", err)
	}
	if v.All || v.AllUsers || v.AllCalendars {
		t.Errorf("全部隐藏后汇总标记应为 false: %+v", v)
	}
	v, err = svc.Toggle(ctx, "user-001", ToggleAll, "")
	if err != nil {
		t.Fatalf("Toggle 应成功: %v", err)
	}
	if !v.All {
		t.Error("再次切换应恢复全部可见")
	}
}

func TestCalendarService_Toggle_Invalid(t *testing.T) {
	svc, _, _ := setupTestCalendarService()
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "user-001", "team", "x"); !errors.Is(err, ErrVisibilityKindInvalid) {
		t.Errorf("期望 ErrVisibilityKindInvalid，实际: %v", err)
	}
	if _, err := svc.Toggle(ctx, "user-001", ToggleCalendar, "PARTY"); !errors.Is(err, ErrScheduleCategoryInvalid) {
		t.Errorf("期望 ErrScheduleCategoryInvalid，实际: %v", err)
	}
}

func TestCalendarService_Reset(t *testing.T) {
	svc, _, _ := setupTestCalendarService()
	ctx := context.Background()

	v, err := svc.Reset(ctx, "user-001", &dto.ResetVisibilityRequest{
		UserIDs:     []string{"user-001"},
		CalendarIDs: []string{calendar.DayOff, calendar.Etc},
	})
	if err != nil {
		t.Fatalf("Reset 应成功: %v", err)
	}
	if len(v.Users) != 1 || len(v.Calendars) != 2 || !v.All {
		t.Errorf("重置结果错误: %+v", v)
	}

	v, err = svc.Reset(ctx, "user-001", &dto.ResetVisibilityRequest{})
	if err != nil {
		t.Fatalf("Reset 应成功: %v", err)
	}
	if len(v.Users) != 2 || len(v.Calendars) != len(calendar.Codes()) {
		t.Errorf("空列表应重置为全部用户与类别: users=%d calendars=%d", len(v.Users), len(v.Calendars))
	}

	if _, err := svc.Reset(ctx, "user-001", &dto.ResetVisibilityRequest{CalendarIDs: []string{"NOPE"}}); !errors.Is(err, ErrScheduleCategoryInvalid) {
		t.Errorf("期望 ErrScheduleCategoryInvalid，实际: %v", err)
	}
}

func TestCalendarService_Categories(t *testing.T) {
	svc, _, _ := setupTestCalendarService()

	cats := svc.Categories()
	if len(cats) != len(calendar.Codes()) || cats[0].Code != calendar.DayOff {
		t.Errorf("类别列表应与注册表一致，实际首项=%s", cats[0].Code)
	}
}
