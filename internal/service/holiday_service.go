package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/config"
	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
	"porest/backend/pkg/metrics"
)

// ── 节假日模块业务错误 ──

var (
	ErrHolidayNotFound      = errors.New("节假日不存在")
	ErrHolidayExists        = errors.New("同一天已存在同名节假日")
	ErrHolidayTypeInvalid   = errors.New("节假日类型无效")
	ErrHolidaySyncNoSource  = errors.New("未配置公休日订阅地址")
	ErrHolidaySyncICSFailed = errors.New("公休日订阅源获取或解析失败")
)

// HolidayService 节假日业务接口
type HolidayService interface {
	Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	GetByID(ctx context.Context, id string) (*dto.HolidayResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// List 返回 [start, end] 内的节假日，按年重复的节假日展开为具体日期
	List(ctx context.Context, req *dto.DateRangeRequest) ([]dto.HolidayResponse, error)
	ListRange(ctx context.Context, start, end time.Time) ([]dto.HolidayResponse, error)
	// Sync 从订阅源导入公休日，按 (date, name) 合并
	Sync(ctx context.Context) (*dto.HolidaySyncResponse, error)
}

type holidayService struct {
	repo   *repository.Repository
	cfg    config.HolidayConfig
	fetch  ICSFetcher
	loc    *time.Location
	logger *zap.Logger
}

// NewHolidayService 创建 HolidayService 实例，fetch 为 nil 时使用 HTTP 获取
func NewHolidayService(repo *repository.Repository, cfg config.HolidayConfig, fetch ICSFetcher, loc *time.Location, logger *zap.Logger) HolidayService {
	if fetch == nil {
		fetch = FetchICSContent
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "KR"
	}
	return &holidayService{repo: repo, cfg: cfg, fetch: fetch, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	date, err := parseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}
	typ := req.Type
	if typ == "" {
		typ = model.HolidayPublic
	}
	if !model.ValidHolidayType(typ) {
		return nil, ErrHolidayTypeInvalid
	}

	if _, err := s.repo.Holiday.GetByDateName(ctx, date, req.Name); err == nil {
		return nil, ErrHolidayExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	holiday := &model.Holiday{
		Name:            req.Name,
		Date:            date,
		Type:            typ,
		RecurringYearly: req.RecurringYearly,
		CountryCode:     strings.ToUpper(defaultString(req.CountryCode, s.cfg.CountryCode)),
		Source:          model.HolidaySourceManual,
	}
	holiday.CreatedBy = &callerID
	holiday.UpdatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, holiday); err != nil {
		s.logger.Error("创建节假日失败", zap.Error(err))
		return nil, err
	}
	return toHolidayResponse(holiday, holiday.Date), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *holidayService) GetByID(ctx context.Context, id string) (*dto.HolidayResponse, error) {
	holiday, err := s.getHoliday(ctx, id)
	if err != nil {
		return nil, err
	}
	return toHolidayResponse(holiday, holiday.Date), nil
}

// ────────────────────── Update ──────────────────────

func (s *holidayService) Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	holiday, err := s.getHoliday(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		holiday.Name = *req.Name
	}
	if req.Date != nil {
		if holiday.Date, err = parseDate(*req.Date, s.loc); err != nil {
			return nil, err
		}
	}
	if req.Name != nil || req.Date != nil {
		existing, err := s.repo.Holiday.GetByDateName(ctx, holiday.Date, holiday.Name)
		if err == nil && existing.HolidayID != id {
			return nil, ErrHolidayExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if req.Type != nil {
		if !model.ValidHolidayType(*req.Type) {
			return nil, ErrHolidayTypeInvalid
		}
		holiday.Type = *req.Type
	}
	if req.RecurringYearly != nil {
		holiday.RecurringYearly = *req.RecurringYearly
	}
	if req.CountryCode != nil {
		holiday.CountryCode = strings.ToUpper(*req.CountryCode)
	}
	// 手工修改过的记录不再被订阅源覆盖来源
	holiday.Source = model.HolidaySourceManual
	holiday.UpdatedBy = &callerID

	if err := s.repo.Holiday.Update(ctx, holiday); err != nil {
		s.logger.Error("更新节假日失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toHolidayResponse(holiday, holiday.Date), nil
}

// ────────────────────── Delete ──────────────────────

func (s *holidayService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getHoliday(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Holiday.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除节假日失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *holidayService) List(ctx context.Context, req *dto.DateRangeRequest) ([]dto.HolidayResponse, error) {
	start, end, err := dayRange(req.Start, req.End, s.loc)
	if err != nil {
		return nil, err
	}
	return s.ListRange(ctx, start, end)
}

func (s *holidayService) ListRange(ctx context.Context, start, end time.Time) ([]dto.HolidayResponse, error) {
	candidates, err := s.repo.Holiday.ListCandidates(ctx, start, end)
	if err != nil {
		s.logger.Error("查询节假日失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.HolidayResponse, 0, len(candidates))
	for i := range candidates {
		for _, d := range ExpandHoliday(candidates[i], start, end) {
			result = append(result, *toHolidayResponse(&candidates[i], d))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ExpandHoliday 返回节假日在 [start, end] 内的所有日历日
// 一次性节假日至多一个；按年重复的以 FREQ=YEARLY 展开，2 月 29 日只落在闰年
func ExpandHoliday(h model.Holiday, start, end time.Time) []time.Time {
	from := civilDate(start)
	to := civilDate(end)
	base := civilDate(h.Date)

	if !h.RecurringYearly {
		if base.Before(from) || base.After(to) {
			return nil
		}
		return []time.Time{base}
	}
	if base.After(to) {
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: base,
		Until:   to,
	})
	if err != nil {
		return nil
	}
	return r.Between(from, to, true)
}

// civilDate 取 t 的年月日，落到 UTC 0 点
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ────────────────────── Sync ──────────────────────

func (s *holidayService) Sync(ctx context.Context) (resp *dto.HolidaySyncResponse, err error) {
	defer func() {
		imported := 0
		if resp != nil {
			imported = resp.Created + resp.Updated
		}
		metrics.RecordHolidaySync(imported, err)
	}()

	if s.cfg.ICSURL == "" {
		return nil, ErrHolidaySyncNoSource
	}

	body, err := s.fetch(ctx, s.cfg.ICSURL)
	if err != nil {
		s.logger.Error("获取公休日订阅源失败", zap.Error(err))
		return nil, ErrHolidaySyncICSFailed
	}
	defer body.Close()

	holidays, err := ParseHolidayICS(body, strings.ToUpper(s.cfg.CountryCode), s.loc)
	if err != nil {
		s.logger.Error("解析公休日订阅源失败", zap.Error(err))
		return nil, ErrHolidaySyncICSFailed
	}

	resp = &dto.HolidaySyncResponse{Fetched: len(holidays)}
	for i := range holidays {
		h := holidays[i]
		created, err := s.repo.Holiday.Upsert(ctx, &h)
		if err != nil {
			s.logger.Warn("合并公休日失败",
				zap.String("name", h.Name), zap.String("date", formatDate(h.Date)), zap.Error(err))
			resp.Skipped++
			continue
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}
	}

	s.logger.Info("公休日同步完成",
		zap.Int("fetched", resp.Fetched),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *holidayService) getHoliday(ctx context.Context, id string) (*model.Holiday, error) {
	holiday, err := s.repo.Holiday.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHolidayNotFound
		}
		s.logger.Error("查询节假日失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return holiday, nil
}

func toHolidayResponse(h *model.Holiday, on time.Time) *dto.HolidayResponse {
	return &dto.HolidayResponse{
		ID:              h.HolidayID,
		Name:            h.Name,
		Date:            formatDate(on),
		Type:            h.Type,
		RecurringYearly: h.RecurringYearly,
		CountryCode:     h.CountryCode,
		Source:          h.Source,
	}
}
