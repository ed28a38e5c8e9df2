package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"porest/backend/internal/model"
)

// ScheduleFilter 日程查询条件：[Start, End] 与日程区间有交集即命中
type ScheduleFilter struct {
	Start  time.Time
	End    time.Time
	UserID string
}

// ScheduleRepository 日程数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).
		Model(schedule).
		Updates(map[string]interface{}{
			"category":    schedule.Category,
			"title":       schedule.Title,
			"description": schedule.Description,
			"start_at":    schedule.StartAt,
			"end_at":      schedule.EndAt,
			"updated_by":  schedule.UpdatedBy,
		}).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("schedule_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error) {
	var schedules []model.Schedule
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("start_at <= ? AND end_at >= ?", filter.End, filter.Start)
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	err := db.Order("start_at ASC").Find(&schedules).Error
	return schedules, err
}
