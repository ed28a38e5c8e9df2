package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 日程模块业务错误 ──

var (
	ErrScheduleNotFound        = errors.New("日程不存在")
	ErrScheduleCategoryInvalid = errors.New("日程类别未登记")
)

const icsProductID = "-//porest//schedules//KO"

// ScheduleService 日程业务接口
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID, callerRole string) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID, callerRole string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string, callerID, callerRole string) error
	// ExportICS 导出范围内日程为 iCalendar 文本
	ExportICS(ctx context.Context, req *dto.ScheduleListRequest) ([]byte, string, error)
}

type scheduleService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID, callerRole string) (*dto.ScheduleResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = callerID
	}
	if !canManageFor(callerID, callerRole, userID) {
		return nil, ErrNoPermission
	}
	if !calendar.Valid(req.Category) {
		return nil, ErrScheduleCategoryInvalid
	}

	start, end, err := parseSpan(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sched := &model.Schedule{
		UserID:      userID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		StartAt:     start,
		EndAt:       end,
	}
	sched.CreatedBy = &callerID
	sched.UpdatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, sched); err != nil {
		s.logger.Error("创建日程失败", zap.Error(err))
		return nil, err
	}
	return toScheduleResponse(sched), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScheduleResponse(sched), nil
}

// ────────────────────── List ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	list, err := s.list(ctx, req)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ScheduleResponse, 0, len(list))
	for i := range list {
		result = append(result, *toScheduleResponse(&list[i]))
	}
	return result, nil
}

func (s *scheduleService) list(ctx context.Context, req *dto.ScheduleListRequest) ([]model.Schedule, error) {
	start, end, err := dayRange(req.Start, req.End, s.loc)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Schedule.List(ctx, repository.ScheduleFilter{Start: start, End: end, UserID: req.UserID})
	if err != nil {
		s.logger.Error("查询日程失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID, callerRole string) (*dto.ScheduleResponse, error) {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageFor(callerID, callerRole, sched.UserID) {
		return nil, ErrNoPermission
	}

	if req.Category != nil {
		if !calendar.Valid(*req.Category) {
			return nil, ErrScheduleCategoryInvalid
		}
		sched.Category = *req.Category
	}
	if req.Title != nil {
		sched.Title = *req.Title
	}
	if req.Description != nil {
		sched.Description = *req.Description
	}
	if req.StartAt != nil {
		if sched.StartAt, err = parseDateTime(*req.StartAt); err != nil {
			return nil, err
		}
	}
	if req.EndAt != nil {
		if sched.EndAt, err = parseDateTime(*req.EndAt); err != nil {
			return nil, err
		}
	}
	if sched.EndAt.Before(sched.StartAt) {
		return nil, ErrInvalidDateRange
	}
	sched.UpdatedBy = &callerID

	if err := s.repo.Schedule.Update(ctx, sched); err != nil {
		s.logger.Error("更新日程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toScheduleResponse(sched), nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id string, callerID, callerRole string) error {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return err
	}
	if !canManageFor(callerID, callerRole, sched.UserID) {
		return ErrNoPermission
	}
	if err := s.repo.Schedule.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除日程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *scheduleService) ExportICS(ctx context.Context, req *dto.ScheduleListRequest) ([]byte, string, error) {
	list, err := s.list(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("porest")
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now().UTC()
	for _, sch := range list {
		evt := cal.AddEvent(sch.ScheduleID + "@porest")
		evt.SetDtStampTime(stamp)
		if calendar.IsAllDay(sch.Category) {
			start := sch.StartAt.In(s.loc)
			end := sch.EndAt.In(s.loc)
			// 全天事件 DTEND 不含当天
			evt.SetAllDayStartAt(start)
			evt.SetAllDayEndAt(time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1))
		} else {
			evt.SetStartAt(sch.StartAt)
			evt.SetEndAt(sch.EndAt)
		}

		summary := sch.Title
		if sch.User != nil {
			summary = fmt.Sprintf("[%s] %s", sch.User.Name, sch.Title)
		}
		evt.SetSummary(summary)
		if sch.Description != "" {
			evt.SetDescription(sch.Description)
		}
		evt.SetProperty(ics.ComponentPropertyCategories, sch.Category)
		if color := calendar.ColorOf(sch.Category); color != "" {
			evt.SetColor(color)
		}
	}

	filename := fmt.Sprintf("schedules_%s_%s.ics", req.Start, req.End)
	return []byte(cal.Serialize()), filename, nil
}

// ── 内部辅助方法 ──

func (s *scheduleService) getSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	sched, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询日程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sched, nil
}

// canManageFor 管理员与经理可管理任何人的日程，普通用户仅限本人
func canManageFor(callerID, callerRole, ownerID string) bool {
	if callerRole == model.RoleAdmin || callerRole == model.RoleManager {
		return true
	}
	return callerID == ownerID
}

func parseSpan(startAt, endAt string) (time.Time, time.Time, error) {
	start, err := parseDateTime(startAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateTime(endAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

func toScheduleResponse(sch *model.Schedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:          sch.ScheduleID,
		UserID:      sch.UserID,
		Category:    sch.Category,
		Title:       sch.Title,
		Description: sch.Description,
		StartAt:     formatDateTime(sch.StartAt),
		EndAt:       formatDateTime(sch.EndAt),
		ColorCode:   calendar.ColorOf(sch.Category),
		IsAllDay:    calendar.IsAllDay(sch.Category),
	}
	if sch.User != nil {
		resp.UserName = sch.User.Name
	}
	return resp
}

// toCalendarSchedules 转为日历推导层的输入
func toCalendarSchedules(list []model.Schedule) []calendar.Schedule {
	out := make([]calendar.Schedule, 0, len(list))
	for _, sch := range list {
		cs := calendar.Schedule{
			ID:          sch.ScheduleID,
			Title:       sch.Title,
			Description: sch.Description,
			Category:    sch.Category,
			UserID:      sch.UserID,
			Start:       sch.StartAt,
			End:         sch.EndAt,
		}
		if sch.User != nil {
			cs.UserName = sch.User.Name
		}
		out = append(out, cs)
	}
	return out
}
