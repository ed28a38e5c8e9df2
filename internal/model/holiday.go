package model

import "time"

// 节假日类型
const (
	HolidayPublic     = "PUBLIC"
	HolidaySubstitute = "SUBSTITUTE"
	HolidayEtc        = "ETC"
)

// 节假日来源
const (
	HolidaySourceManual = "manual"
	HolidaySourceICS    = "ics"
)

// Holiday 节假日表，对应 holidays
type Holiday struct {
	HolidayID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"holiday_id"`
	Name            string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Date            time.Time `gorm:"type:date;not null"                             json:"date"`
	Type            string    `gorm:"type:varchar(20);not null;default:'PUBLIC'"     json:"type"`
	RecurringYearly bool      `gorm:"not null;default:false"                         json:"recurring_yearly"`
	CountryCode     string    `gorm:"type:varchar(5);not null;default:'KR'"          json:"country_code"`
	Source          string    `gorm:"type:varchar(10);not null;default:'manual'"     json:"source"`
	SoftDeleteModel
}

func (Holiday) TableName() string { return "holidays" }

// ValidHolidayType 类型是否合法
func ValidHolidayType(t string) bool {
	switch t {
	case HolidayPublic, HolidaySubstitute, HolidayEtc:
		return true
	}
	return false
}
