package model

import "time"

// RoleAuthority 角色页面权限，对应 role_authorities，(role, page, action) 为联合主键
type RoleAuthority struct {
	Role      string    `gorm:"type:varchar(20);primaryKey"        json:"role"`
	Page      string    `gorm:"type:varchar(50);primaryKey"        json:"page"`
	Action    string    `gorm:"type:varchar(10);primaryKey"        json:"action"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
}

func (RoleAuthority) TableName() string { return "role_authorities" }
