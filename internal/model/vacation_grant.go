package model

import "github.com/shopspring/decimal"

// VacationGrant 年假发放记录，对应 vacation_grants，单位为小时
type VacationGrant struct {
	GrantID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grant_id"`
	UserID  string          `gorm:"type:uuid;not null"                             json:"user_id"`
	Year    int             `gorm:"type:smallint;not null"                         json:"year"`
	Hours   decimal.Decimal `gorm:"type:numeric(6,2);not null"                     json:"hours"`
	Reason  string          `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	SoftDeleteModel
}

func (VacationGrant) TableName() string { return "vacation_grants" }
