package repository

import (
	"context"

	"gorm.io/gorm"

	"porest/backend/internal/model"
)

// RoleAuthorityRepository 角色页面权限数据访问接口
type RoleAuthorityRepository interface {
	ListAll(ctx context.Context) ([]model.RoleAuthority, error)
	ListByRole(ctx context.Context, role string) ([]model.RoleAuthority, error)
	// ReplaceRole 在一个事务内删除 role 的全部权限并写入新集合
	ReplaceRole(ctx context.Context, role string, items []model.RoleAuthority) error
}

type roleAuthorityRepo struct {
	db *gorm.DB
}

func NewRoleAuthorityRepo(db *gorm.DB) RoleAuthorityRepository {
	return &roleAuthorityRepo{db: db}
}

func (r *roleAuthorityRepo) ListAll(ctx context.Context) ([]model.RoleAuthority, error) {
	var items []model.RoleAuthority
	err := r.db.WithContext(ctx).
		Order("role ASC, page ASC, action ASC").
		Find(&items).Error
	return items, err
}

func (r *roleAuthorityRepo) ListByRole(ctx context.Context, role string) ([]model.RoleAuthority, error) {
	var items []model.RoleAuthority
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("page ASC, action ASC").
		Find(&items).Error
	return items, err
}

func (r *roleAuthorityRepo) ReplaceRole(ctx context.Context, role string, items []model.RoleAuthority) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&model.RoleAuthority{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
