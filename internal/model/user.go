package model

import "time"

// User 用户表，对应 users
type User struct {
	UserID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name           string     `gorm:"type:varchar(50);not null"                      json:"name"`
	Email          string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role           string     `gorm:"type:varchar(20);not null;default:'USER'"       json:"role"` // ADMIN | MANAGER | USER
	DepartmentID   *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	EmploymentType string     `gorm:"type:varchar(20);not null;default:'FULLTIME'"   json:"employment_type"`
	WorkTime       string     `gorm:"type:varchar(20);not null;default:'9 ~ 18'"     json:"work_time"`
	JoinDate       time.Time  `gorm:"type:date;not null"                             json:"join_date"`
	BirthDate      *time.Time `gorm:"type:date"                                      json:"birth_date,omitempty"`
	LunarBirth     bool       `gorm:"not null;default:false"                         json:"lunar_birth"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
