package dto

import "github.com/shopspring/decimal"

// ── 会费模块 DTO ──

// CreateDuesRequest 创建会费流水请求
type CreateDuesRequest struct {
	UserName  string          `json:"user_name" binding:"required,min=1,max=50"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"      binding:"required,oneof=OPERATING BIRTHDAY"`
	Direction string          `json:"direction" binding:"required,oneof=DEPOSIT WITHDRAW"`
	Date      string          `json:"date"      binding:"required,datetime=2006-01-02"`
	Detail    string          `json:"detail"    binding:"omitempty,max=200"`
}

// UpdateDuesRequest 更新会费流水请求
type UpdateDuesRequest struct {
	UserName  *string          `json:"user_name" binding:"omitempty,min=1,max=50"`
	Amount    *decimal.Decimal `json:"amount"`
	Type      *string          `json:"type"      binding:"omitempty,oneof=OPERATING BIRTHDAY"`
	Direction *string          `json:"direction" binding:"omitempty,oneof=DEPOSIT WITHDRAW"`
	Date      *string          `json:"date"      binding:"omitempty,datetime=2006-01-02"`
	Detail    *string          `json:"detail"    binding:"omitempty,max=200"`
}

// DuesYearRequest 按年份查询参数
type DuesYearRequest struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

// DuesResponse 会费流水响应，balance 为截至该条的累计余额
type DuesResponse struct {
	ID        string          `json:"id"`
	Year      int             `json:"year"`
	UserName  string          `json:"user_name"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
	Date      string          `json:"date"`
	Detail    string          `json:"detail,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

// DuesTypeTotal 单个类型的合计
type DuesTypeTotal struct {
	Type     string          `json:"type"`
	Deposit  decimal.Decimal `json:"deposit"`
	Withdraw decimal.Decimal `json:"withdraw"`
	Net      decimal.Decimal `json:"net"`
}

// DuesSummaryResponse 年度会费汇总
type DuesSummaryResponse struct {
	Year           int             `json:"year"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Totals         []DuesTypeTotal `json:"totals"`
}
