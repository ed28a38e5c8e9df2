package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 休假模块业务错误 ──

var (
	ErrVacationGrantNotFound = errors.New("年假发放记录不存在")
	ErrVacationHoursInvalid  = errors.New("发放小时数必须大于 0")
)

// VacationService 休假业务接口
type VacationService interface {
	CreateGrant(ctx context.Context, req *dto.CreateVacationGrantRequest, callerID string) (*dto.VacationGrantResponse, error)
	ListGrants(ctx context.Context, req *dto.VacationGrantListRequest) ([]dto.VacationGrantResponse, error)
	DeleteGrant(ctx context.Context, id string, callerID string) error
	// Summary 某用户某年的发放、使用与剩余；使用量为当年日程按类别扣减小时数之和
	Summary(ctx context.Context, userID string, year int) (*dto.VacationSummaryResponse, error)
}

type vacationService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewVacationService 创建 VacationService 实例
func NewVacationService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) VacationService {
	if loc == nil {
		loc = time.UTC
	}
	return &vacationService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── CreateGrant ──────────────────────

func (s *vacationService) CreateGrant(ctx context.Context, req *dto.CreateVacationGrantRequest, callerID string) (*dto.VacationGrantResponse, error) {
	if !req.Hours.IsPositive() {
		return nil, ErrVacationHoursInvalid
	}
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	grant := &model.VacationGrant{
		UserID: req.UserID,
		Year:   req.Year,
		Hours:  req.Hours,
		Reason: req.Reason,
	}
	grant.CreatedBy = &callerID
	grant.UpdatedBy = &callerID

	if err := s.repo.VacationGrant.Create(ctx, grant); err != nil {
		s.logger.Error("发放年假失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return toGrantResponse(grant), nil
}

// ────────────────────── ListGrants ──────────────────────

func (s *vacationService) ListGrants(ctx context.Context, req *dto.VacationGrantListRequest) ([]dto.VacationGrantResponse, error) {
	grants, err := s.repo.VacationGrant.List(ctx, req.UserID, req.Year)
	if err != nil {
		s.logger.Error("查询年假发放失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.VacationGrantResponse, 0, len(grants))
	for i := range grants {
		result = append(result, *toGrantResponse(&grants[i]))
	}
	return result, nil
}

// ────────────────────── DeleteGrant ──────────────────────

func (s *vacationService) DeleteGrant(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.VacationGrant.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVacationGrantNotFound
		}
		return err
	}
	if err := s.repo.VacationGrant.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除年假发放失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Summary ──────────────────────

func (s *vacationService) Summary(ctx context.Context, userID string, year int) (*dto.VacationSummaryResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	grants, err := s.repo.VacationGrant.List(ctx, userID, year)
	if err != nil {
		s.logger.Error("查询年假发放失败", zap.Error(err))
		return nil, err
	}
	granted := decimal.Zero
	for _, g := range grants {
		granted = granted.Add(g.Hours)
	}

	start, end := yearRange(year, s.loc)
	schedules, err := s.repo.Schedule.List(ctx, repository.ScheduleFilter{Start: start, End: end, UserID: userID})
	if err != nil {
		s.logger.Error("查询日程失败", zap.Error(err))
		return nil, err
	}

	// 只统计开始日期落在当年的日程，跨年日程归入开始年份
	usage := make(map[string]*dto.VacationUsage)
	used := decimal.Zero
	for _, sch := range schedules {
		if sch.StartAt.In(s.loc).Year() != year {
			continue
		}
		hours := calendar.HoursOf(sch.Category)
		if !hours.IsPositive() {
			continue
		}
		u, ok := usage[sch.Category]
		if !ok {
			u = &dto.VacationUsage{Category: sch.Category, Hours: decimal.Zero}
			usage[sch.Category] = u
		}
		u.Count++
		u.Hours = u.Hours.Add(hours)
		used = used.Add(hours)
	}

	// 按类别表顺序输出
	usages := make([]dto.VacationUsage, 0, len(usage))
	for _, code := range calendar.Codes() {
		if u, ok := usage[code]; ok {
			usages = append(usages, *u)
		}
	}

	return &dto.VacationSummaryResponse{
		UserID:    userID,
		Year:      year,
		Granted:   granted,
		Used:      used,
		Remaining: granted.Sub(used),
		Usages:    usages,
	}, nil
}

func toGrantResponse(g *model.VacationGrant) *dto.VacationGrantResponse {
	return &dto.VacationGrantResponse{
		ID:        g.GrantID,
		UserID:    g.UserID,
		Year:      g.Year,
		Hours:     g.Hours,
		Reason:    g.Reason,
		CreatedAt: formatDateTime(g.CreatedAt),
	}
}
