package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"porest/backend/internal/model"
)

// DuesRepository 会费流水数据访问接口
type DuesRepository interface {
	Create(ctx context.Context, dues *model.Dues) error
	GetByID(ctx context.Context, id string) (*model.Dues, error)
	Update(ctx context.Context, dues *model.Dues) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// ListByYear 按日期、创建时间排序，保证余额累计顺序稳定
	ListByYear(ctx context.Context, year int) ([]model.Dues, error)
	// BalanceBefore 指定年份之前所有年份的结余（存入 - 支出）
	BalanceBefore(ctx context.Context, year int) (decimal.Decimal, error)
}

type duesRepo struct {
	db *gorm.DB
}

func NewDuesRepo(db *gorm.DB) DuesRepository {
	return &duesRepo{db: db}
}

func (r *duesRepo) Create(ctx context.Context, dues *model.Dues) error {
	return r.db.WithContext(ctx).Create(dues).Error
}

func (r *duesRepo) GetByID(ctx context.Context, id string) (*model.Dues, error) {
	var dues model.Dues
	err := r.db.WithContext(ctx).
		Where("dues_id = ?", id).
		First(&dues).Error
	if err != nil {
		return nil, err
	}
	return &dues, nil
}

func (r *duesRepo) Update(ctx context.Context, dues *model.Dues) error {
	return r.db.WithContext(ctx).
		Model(dues).
		Updates(map[string]interface{}{
			"year":       dues.Year,
			"user_name":  dues.UserName,
			"amount":     dues.Amount,
			"type":       dues.Type,
			"direction":  dues.Direction,
			"date":       dues.Date,
			"detail":     dues.Detail,
			"updated_by": dues.UpdatedBy,
		}).Error
}

func (r *duesRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Dues{}).
		Where("dues_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *duesRepo) ListByYear(ctx context.Context, year int) ([]model.Dues, error) {
	var list []model.Dues
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *duesRepo) BalanceBefore(ctx context.Context, year int) (decimal.Decimal, error) {
	var balance decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.Dues{}).
		Select("SUM(CASE WHEN direction = ? THEN -amount ELSE amount END)", model.DuesWithdraw).
		Where("year < ?", year).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}
