package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/gantt"
	"porest/backend/internal/repository"
)

// ── 甘特图模块业务错误 ──

var (
	ErrGanttRangeInvalid = errors.New("无效的时间轴粒度")
	ErrGanttSpanTooLarge = errors.New("时间轴跨度过大")
)

// 时间轴最多保留的年份数
const ganttMaxYears = 30

// GanttService 甘特图布局业务接口
type GanttService interface {
	Layout(ctx context.Context, req *dto.GanttLayoutRequest) (*dto.GanttLayoutResponse, error)
	DateAt(ctx context.Context, req *dto.GanttDateAtRequest) (*dto.GanttDateAtResponse, error)
}

type ganttService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewGanttService 创建 GanttService 实例
func NewGanttService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) GanttService {
	if loc == nil {
		loc = time.UTC
	}
	return &ganttService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── Layout ──────────────────────

func (s *ganttService) Layout(ctx context.Context, req *dto.GanttLayoutRequest) (*dto.GanttLayoutResponse, error) {
	c, err := s.context(req.Range, req.Zoom, req.Today, req.StartYear, req.EndYear)
	if err != nil {
		return nil, err
	}

	resp := &dto.GanttLayoutResponse{}
	if req.Scroll != nil {
		st, grew := c.ScrollCapped(*req.Scroll, ganttMaxYears)
		resp.Scroll = &st
		resp.Grew = grew
	}

	var lanes []gantt.Lane
	if len(req.Lanes) > 0 {
		if lanes, err = s.requestLanes(req.Lanes); err != nil {
			return nil, err
		}
	} else {
		if lanes, err = s.scheduleLanes(ctx, c.Origin(), c.End()); err != nil {
			return nil, err
		}
	}

	resp.Layout = c.Build(lanes, s.now().In(s.loc))
	if len(c.Years) > 0 {
		resp.StartYear = c.Years[0].Year
		resp.EndYear = c.Years[len(c.Years)-1].Year
	}
	return resp, nil
}

// ────────────────────── DateAt ──────────────────────

func (s *ganttService) DateAt(_ context.Context, req *dto.GanttDateAtRequest) (*dto.GanttDateAtResponse, error) {
	c, err := s.context(req.Range, req.Zoom, req.Today, req.StartYear, 0)
	if err != nil {
		return nil, err
	}

	d := c.DateAt(req.X)
	if c.Range == gantt.Timely {
		return &dto.GanttDateAtResponse{Date: d.Format("2006-01-02T15:04")}, nil
	}
	return &dto.GanttDateAtResponse{Date: formatDate(d)}, nil
}

// ── 内部辅助方法 ──

// context 创建时间轴并扩展到客户端此前滚动到的年份边界
func (s *ganttService) context(rangeStr string, zoom int, todayStr string, startYear, endYear int) (*gantt.Context, error) {
	r, err := gantt.ParseRange(rangeStr)
	if err != nil {
		return nil, ErrGanttRangeInvalid
	}

	today := s.now().In(s.loc)
	if todayStr != "" {
		if today, err = parseDate(todayStr, s.loc); err != nil {
			return nil, err
		}
	}

	c := gantt.NewContext(r, zoom, today, s.loc)
	if r == gantt.Timely {
		return c, nil
	}
	if startYear > 0 && endYear > 0 && endYear < startYear {
		return nil, ErrInvalidDateRange
	}
	if first := c.Years[0].Year; startYear > 0 && first-startYear+len(c.Years) > ganttMaxYears {
		return nil, ErrGanttSpanTooLarge
	}
	if last := c.Years[len(c.Years)-1].Year; endYear > 0 && endYear-last+len(c.Years) > ganttMaxYears {
		return nil, ErrGanttSpanTooLarge
	}

	for startYear > 0 && c.Years[0].Year > startYear {
		c.PrependYear()
	}
	for endYear > 0 && c.Years[len(c.Years)-1].Year < endYear {
		c.AppendYear()
	}
	if len(c.Years) > ganttMaxYears {
		return nil, ErrGanttSpanTooLarge
	}
	return c, nil
}

func (s *ganttService) requestLanes(in []dto.GanttLaneRequest) ([]gantt.Lane, error) {
	lanes := make([]gantt.Lane, 0, len(in))
	for _, l := range in {
		lane := gantt.Lane{ID: l.ID, Name: l.Name, Features: make([]gantt.Feature, 0, len(l.Features))}
		for _, f := range l.Features {
			start, err := parseDateTime(f.Start)
			if err != nil {
				return nil, err
			}
			feature := gantt.Feature{
				ID:       f.ID,
				Name:     f.Name,
				Category: f.Category,
				Color:    calendar.ColorOf(f.Category),
				Start:    start,
			}
			if f.End != nil {
				end, err := parseDateTime(*f.End)
				if err != nil {
					return nil, err
				}
				feature.End = &end
			}
			lane.Features = append(lane.Features, feature)
		}
		lanes = append(lanes, lane)
	}
	return lanes, nil
}

// scheduleLanes 时间轴范围内的日程按用户分组，泳道按用户名排序
func (s *ganttService) scheduleLanes(ctx context.Context, origin, end time.Time) ([]gantt.Lane, error) {
	list, err := s.repo.Schedule.List(ctx, repository.ScheduleFilter{Start: origin, End: end.Add(-time.Nanosecond)})
	if err != nil {
		s.logger.Error("查询日程失败", zap.Error(err))
		return nil, err
	}

	byUser := make(map[string]*gantt.Lane)
	for _, sch := range list {
		lane, ok := byUser[sch.UserID]
		if !ok {
			lane = &gantt.Lane{ID: sch.UserID, Features: []gantt.Feature{}}
			if sch.User != nil {
				lane.Name = sch.User.Name
			}
			byUser[sch.UserID] = lane
		}
		endAt := sch.EndAt
		lane.Features = append(lane.Features, gantt.Feature{
			ID:       sch.ScheduleID,
			Name:     sch.Title,
			Category: sch.Category,
			Color:    calendar.ColorOf(sch.Category),
			Start:    sch.StartAt,
			End:      &endAt,
		})
	}

	lanes := make([]gantt.Lane, 0, len(byUser))
	for _, l := range byUser {
		lanes = append(lanes, *l)
	}
	sort.Slice(lanes, func(i, j int) bool {
		if lanes[i].Name != lanes[j].Name {
			return lanes[i].Name < lanes[j].Name
		}
		return lanes[i].ID < lanes[j].ID
	})
	return lanes, nil
}
