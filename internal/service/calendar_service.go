package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/repository"
)

// ErrVisibilityKindInvalid 切换目标无效
var ErrVisibilityKindInvalid = errors.New("显示状态切换目标无效")

// 显示状态切换目标
const (
	ToggleUser         = "user"
	ToggleCalendar     = "calendar"
	ToggleAllUsers     = "all_users"
	ToggleAllCalendars = "all_calendars"
	ToggleAll          = "all"
)

// CalendarService 日历业务接口
type CalendarService interface {
	// Events 范围内的日历事件（含补位与可见性标记）以及节假日
	Events(ctx context.Context, ownerID string, req *dto.CalendarEventsRequest) (*dto.CalendarEventsResponse, error)
	Categories() []calendar.Category
	Visibility(ctx context.Context, ownerID string) (calendar.Visibility, error)
	// Toggle 切换显示状态；kind 为 user / calendar 时 id 必填
	Toggle(ctx context.Context, ownerID, kind, id string) (calendar.Visibility, error)
	// Reset 以给定列表重置为全部可见，列表为空时取全部用户与全部类别
	Reset(ctx context.Context, ownerID string, req *dto.ResetVisibilityRequest) (calendar.Visibility, error)
}

type calendarService struct {
	repo     *repository.Repository
	holidays HolidayService
	store    VisibilityStore
	builder  *calendar.Builder
	loc      *time.Location
	logger   *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, holidays HolidayService, store VisibilityStore, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	if store == nil {
		store = NewMemoryVisibilityStore()
	}
	return &calendarService{
		repo:     repo,
		holidays: holidays,
		store:    store,
		builder:  calendar.NewBuilder(loc),
		loc:      loc,
		logger:   logger,
	}
}

// ────────────────────── Events ──────────────────────

func (s *calendarService) Events(ctx context.Context, ownerID string, req *dto.CalendarEventsRequest) (*dto.CalendarEventsResponse, error) {
	start, end, err := dayRange(req.Start, req.End, s.loc)
	if err != nil {
		return nil, err
	}

	focus := calendar.PeriodOf(s.builder.Now().In(s.loc))
	if req.Focus != "" {
		if focus, err = calendar.ParsePeriod(req.Focus); err != nil {
			return nil, ErrInvalidDate
		}
	}

	list, err := s.repo.Schedule.List(ctx, repository.ScheduleFilter{Start: start, End: end})
	if err != nil {
		s.logger.Error("查询日程失败", zap.Error(err))
		return nil, err
	}

	v, err := s.Visibility(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	events := s.builder.BuildEvents(toCalendarSchedules(list), calendar.Range{Start: start, End: end}, focus)
	events = calendar.ApplyVisibility(events, v)

	holidays, err := s.holidays.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &dto.CalendarEventsResponse{
		Focus:      focus.String(),
		Events:     events,
		Holidays:   holidays,
		Visibility: v,
	}, nil
}

// ────────────────────── Categories ──────────────────────

func (s *calendarService) Categories() []calendar.Category {
	return calendar.All()
}

// ────────────────────── Visibility ──────────────────────

func (s *calendarService) Visibility(ctx context.Context, ownerID string) (calendar.Visibility, error) {
	v, ok, err := s.store.Load(ctx, ownerID)
	if err != nil {
		s.logger.Warn("读取显示状态失败，使用默认值", zap.String("user_id", ownerID), zap.Error(err))
	}
	if ok {
		return v, nil
	}
	return s.defaults(ctx)
}

func (s *calendarService) Toggle(ctx context.Context, ownerID, kind, id string) (calendar.Visibility, error) {
	v, err := s.Visibility(ctx, ownerID)
	if err != nil {
		return calendar.Visibility{}, err
	}

	switch kind {
	case ToggleUser:
		if id == "" {
			return calendar.Visibility{}, ErrVisibilityKindInvalid
		}
		v = v.ToggleUser(id)
	case ToggleCalendar:
		if !calendar.Valid(id) {
			return calendar.Visibility{}, ErrScheduleCategoryInvalid
		}
		v = v.ToggleCalendar(id)
	case ToggleAllUsers:
		v = v.ToggleAllUsers()
	case ToggleAllCalendars:
		v = v.ToggleAllCalendars()
	case ToggleAll:
		v = v.ToggleAll()
	default:
		return calendar.Visibility{}, ErrVisibilityKindInvalid
	}

	if err := s.save(ctx, ownerID, v); err != nil {
		return calendar.Visibility{}, err
	}
	return v, nil
}

func (s *calendarService) Reset(ctx context.Context, ownerID string, req *dto.ResetVisibilityRequest) (calendar.Visibility, error) {
	userIDs := req.UserIDs
	if len(userIDs) == 0 {
		ids, err := s.allUserIDs(ctx)
		if err != nil {
			return calendar.Visibility{}, err
		}
		userIDs = ids
	}
	calendarIDs := req.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = calendar.Codes()
	}
	for _, id := range calendarIDs {
		if !calendar.Valid(id) {
			return calendar.Visibility{}, ErrScheduleCategoryInvalid
		}
	}

	v := calendar.NewVisibility(userIDs, calendarIDs)
	if err := s.save(ctx, ownerID, v); err != nil {
		return calendar.Visibility{}, err
	}
	return v, nil
}

// ── 内部辅助方法 ──

func (s *calendarService) defaults(ctx context.Context) (calendar.Visibility, error) {
	ids, err := s.allUserIDs(ctx)
	if err != nil {
		return calendar.Visibility{}, err
	}
	return calendar.NewVisibility(ids, calendar.Codes()), nil
}

func (s *calendarService) allUserIDs(ctx context.Context) ([]string, error) {
	users, err := s.repo.User.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	return ids, nil
}

func (s *calendarService) save(ctx context.Context, ownerID string, v calendar.Visibility) error {
	if err := s.store.Save(ctx, ownerID, v); err != nil {
		s.logger.Error("保存显示状态失败", zap.String("user_id", ownerID), zap.Error(err))
		return err
	}
	return nil
}
