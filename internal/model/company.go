package model

// Company 公司表，对应 companies，组织架构的根
type Company struct {
	CompanyID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }
