package dto

import "github.com/shopspring/decimal"

// ── 休假模块 DTO ──

// CreateVacationGrantRequest 发放年假请求
type CreateVacationGrantRequest struct {
	UserID string          `json:"user_id" binding:"required,uuid"`
	Year   int             `json:"year"    binding:"required,min=2000,max=2100"`
	Hours  decimal.Decimal `json:"hours"`
	Reason string          `json:"reason"  binding:"omitempty,max=200"`
}

// VacationGrantListRequest 发放记录查询参数
type VacationGrantListRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Year   int    `form:"year"    binding:"required,min=2000,max=2100"`
}

// VacationGrantResponse 发放记录响应
type VacationGrantResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Year      int             `json:"year"`
	Hours     decimal.Decimal `json:"hours"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// VacationSummaryRequest 年假汇总查询参数
type VacationSummaryRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Year   int    `form:"year"    binding:"required,min=2000,max=2100"`
}

// VacationUsage 单个类别的使用情况
type VacationUsage struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Hours    decimal.Decimal `json:"hours"`
}

// VacationSummaryResponse 年假汇总（单位：小时）
type VacationSummaryResponse struct {
	UserID    string          `json:"user_id"`
	Year      int             `json:"year"`
	Granted   decimal.Decimal `json:"granted"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	Usages    []VacationUsage `json:"usages"`
}
