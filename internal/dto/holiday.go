package dto

// ── 节假日模块 DTO ──

// CreateHolidayRequest 创建节假日请求
type CreateHolidayRequest struct {
	Name            string `json:"name"             binding:"required,min=1,max=100"`
	Date            string `json:"date"             binding:"required,datetime=2006-01-02"`
	Type            string `json:"type"             binding:"omitempty,oneof=PUBLIC SUBSTITUTE ETC"`
	RecurringYearly bool   `json:"recurring_yearly"`
	CountryCode     string `json:"country_code"     binding:"omitempty,len=2"`
}

// UpdateHolidayRequest 更新节假日请求
type UpdateHolidayRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Date            *string `json:"date"             binding:"omitempty,datetime=2006-01-02"`
	Type            *string `json:"type"             binding:"omitempty,oneof=PUBLIC SUBSTITUTE ETC"`
	RecurringYearly *bool   `json:"recurring_yearly"`
	CountryCode     *string `json:"country_code"     binding:"omitempty,len=2"`
}

// HolidayResponse 节假日响应；重复节假日展开后 date 为具体日期，id 仍指向原记录
type HolidayResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	Type            string `json:"type"`
	RecurringYearly bool   `json:"recurring_yearly"`
	CountryCode     string `json:"country_code"`
	Source          string `json:"source"`
}

// HolidaySyncResponse ICS 同步结果
type HolidaySyncResponse struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
