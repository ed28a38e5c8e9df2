package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"porest/backend/internal/model"
)

// HolidayRepository 节假日数据访问接口
type HolidayRepository interface {
	Create(ctx context.Context, holiday *model.Holiday) error
	GetByID(ctx context.Context, id string) (*model.Holiday, error)
	GetByDateName(ctx context.Context, date time.Time, name string) (*model.Holiday, error)
	Update(ctx context.Context, holiday *model.Holiday) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// ListCandidates 返回 [start, end] 内的一次性节假日，以及全部按年重复的节假日（由调用方展开）
	ListCandidates(ctx context.Context, start, end time.Time) ([]model.Holiday, error)
	// Upsert 按 (date, name) 合并，返回是否新建
	Upsert(ctx context.Context, holiday *model.Holiday) (bool, error)
}

type holidayRepo struct {
	db *gorm.DB
}

func NewHolidayRepo(db *gorm.DB) HolidayRepository {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) Create(ctx context.Context, holiday *model.Holiday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

func (r *holidayRepo) GetByID(ctx context.Context, id string) (*model.Holiday, error) {
	var holiday model.Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		First(&holiday).Error
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *holidayRepo) GetByDateName(ctx context.Context, date time.Time, name string) (*model.Holiday, error) {
	var holiday model.Holiday
	err := r.db.WithContext(ctx).
		Where("date = ? AND name = ?", date.Format("2006-01-02"), name).
		First(&holiday).Error
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *holidayRepo) Update(ctx context.Context, holiday *model.Holiday) error {
	return r.db.WithContext(ctx).
		Model(holiday).
		Updates(map[string]interface{}{
			"name":             holiday.Name,
			"date":             holiday.Date,
			"type":             holiday.Type,
			"recurring_yearly": holiday.RecurringYearly,
			"country_code":     holiday.CountryCode,
			"source":           holiday.Source,
			"updated_by":       holiday.UpdatedBy,
		}).Error
}

func (r *holidayRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Holiday{}).
		Where("holiday_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *holidayRepo) ListCandidates(ctx context.Context, start, end time.Time) ([]model.Holiday, error) {
	var holidays []model.Holiday
	err := r.db.WithContext(ctx).
		Where("(recurring_yearly = ? AND date <= ?) OR (date BETWEEN ? AND ?)",
			true, end.Format("2006-01-02"), start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *holidayRepo) Upsert(ctx context.Context, holiday *model.Holiday) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Holiday
		err := tx.Where("date = ? AND name = ?", holiday.Date.Format("2006-01-02"), holiday.Name).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(holiday).Error
		}
		if err != nil {
			return err
		}
		holiday.HolidayID = existing.HolidayID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"type":             holiday.Type,
			"country_code":     holiday.CountryCode,
			"source":           holiday.Source,
			"recurring_yearly": holiday.RecurringYearly,
		}).Error
	})
	return created, err
}
