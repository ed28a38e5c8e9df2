package repository

import (
	"context"

	"gorm.io/gorm"

	"porest/backend/internal/model"
)

// VacationGrantRepository 年假发放数据访问接口
type VacationGrantRepository interface {
	Create(ctx context.Context, grant *model.VacationGrant) error
	GetByID(ctx context.Context, id string) (*model.VacationGrant, error)
	List(ctx context.Context, userID string, year int) ([]model.VacationGrant, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type vacationGrantRepo struct {
	db *gorm.DB
}

func NewVacationGrantRepo(db *gorm.DB) VacationGrantRepository {
	return &vacationGrantRepo{db: db}
}

func (r *vacationGrantRepo) Create(ctx context.Context, grant *model.VacationGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *vacationGrantRepo) GetByID(ctx context.Context, id string) (*model.VacationGrant, error) {
	var grant model.VacationGrant
	err := r.db.WithContext(ctx).
		Where("grant_id = ?", id).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// List userID 为空时返回该年全部发放记录
func (r *vacationGrantRepo) List(ctx context.Context, userID string, year int) ([]model.VacationGrant, error) {
	var grants []model.VacationGrant
	db := r.db.WithContext(ctx).Where("year = ?", year)
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	err := db.Order("created_at ASC").Find(&grants).Error
	return grants, err
}

func (r *vacationGrantRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.VacationGrant{}).
		Where("grant_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
