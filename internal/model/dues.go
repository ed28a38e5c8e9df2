package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 会费类型
const (
	DuesOperating = "OPERATING"
	DuesBirthday  = "BIRTHDAY"
)

// 收支方向
const (
	DuesDeposit  = "DEPOSIT"
	DuesWithdraw = "WITHDRAW"
)

// Dues 会费流水，对应 dues，金额恒为正，方向由 direction 决定
type Dues struct {
	DuesID    string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"dues_id"`
	Year      int             `gorm:"type:smallint;not null"                         json:"year"`
	UserName  string          `gorm:"type:varchar(50);not null"                      json:"user_name"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	Type      string          `gorm:"type:varchar(20);not null"                      json:"type"`
	Direction string          `gorm:"type:varchar(10);not null"                      json:"direction"`
	Date      time.Time       `gorm:"type:date;not null"                             json:"date"`
	Detail    string          `gorm:"type:varchar(200)"                              json:"detail,omitempty"`
	SoftDeleteModel
}

func (Dues) TableName() string { return "dues" }

// Signed 带符号金额：存入为正，支出为负
func (d Dues) Signed() decimal.Decimal {
	if d.Direction == DuesWithdraw {
		return d.Amount.Neg()
	}
	return d.Amount
}
