package dto

import "porest/backend/internal/calendar"

// ── 日程模块 DTO ──

// CreateScheduleRequest 创建日程请求；user_id 为空时为调用者本人
type CreateScheduleRequest struct {
	UserID      string `json:"user_id"     binding:"omitempty,uuid"`
	Category    string `json:"category"    binding:"required"`
	Title       string `json:"title"       binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	StartAt     string `json:"start_at"    binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt       string `json:"end_at"      binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// UpdateScheduleRequest 更新日程请求
type UpdateScheduleRequest struct {
	Category    *string `json:"category"`
	Title       *string `json:"title"       binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	StartAt     *string `json:"start_at"    binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt       *string `json:"end_at"      binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ScheduleListRequest 日程列表查询参数
type ScheduleListRequest struct {
	DateRangeRequest
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// ScheduleResponse 日程响应
type ScheduleResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	ColorCode   string `json:"color_code"`
	IsAllDay    bool   `json:"is_all_day"`
}

// ── 日历模块 DTO ──

// CalendarEventsRequest 日历事件查询参数；focus 为当前聚焦月份 YYYY-MM
type CalendarEventsRequest struct {
	DateRangeRequest
	Focus string `form:"focus" binding:"omitempty,datetime=2006-01"`
}

// CalendarEventsResponse 日历事件与范围内的节假日
type CalendarEventsResponse struct {
	Focus      string              `json:"focus"`
	Events     []calendar.Event    `json:"events"`
	Holidays   []HolidayResponse   `json:"holidays"`
	Visibility calendar.Visibility `json:"visibility"`
}

// ResetVisibilityRequest 重置显示状态请求
type ResetVisibilityRequest struct {
	UserIDs     []string `json:"user_ids"`
	CalendarIDs []string `json:"calendar_ids"`
}
