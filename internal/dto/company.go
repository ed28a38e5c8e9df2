package dto

// ── 公司模块 DTO ──

// CreateCompanyRequest 创建公司请求
type CreateCompanyRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateCompanyRequest 更新公司请求
type UpdateCompanyRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CompanyResponse 公司信息响应
type CompanyResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DepartmentCount int64  `json:"department_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	CompanyID   string  `json:"company_id"   binding:"required,uuid"`
	ParentID    *string `json:"parent_id"    binding:"omitempty,uuid"`
	Name        string  `json:"name"         binding:"required,min=1,max=100"`
	NameKR      string  `json:"name_kr"      binding:"omitempty,max=100"`
	HeadUserID  *string `json:"head_user_id" binding:"omitempty,uuid"`
	Description string  `json:"description"  binding:"omitempty,max=500"`
	SortOrder   int     `json:"sort_order"`
}

// UpdateDepartmentRequest 更新部门请求；parent_id 传空串表示移动到根
type UpdateDepartmentRequest struct {
	ParentID    *string `json:"parent_id"    binding:"omitempty"`
	Name        *string `json:"name"         binding:"omitempty,min=1,max=100"`
	NameKR      *string `json:"name_kr"      binding:"omitempty,max=100"`
	HeadUserID  *string `json:"head_user_id" binding:"omitempty"`
	Description *string `json:"description"  binding:"omitempty,max=500"`
	SortOrder   *int    `json:"sort_order"`
	Version     int     `json:"version"      binding:"required,min=1"`
}

// DepartmentListRequest 部门列表查询参数
type DepartmentListRequest struct {
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
}

// DepartmentDetailResponse 部门详细信息响应
type DepartmentDetailResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	ParentID    *string `json:"parent_id,omitempty"`
	Name        string  `json:"name"`
	NameKR      string  `json:"name_kr,omitempty"`
	Level       int     `json:"level"`
	HeadUserID  *string `json:"head_user_id,omitempty"`
	Description string  `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
	MemberCount int64   `json:"member_count"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// DepartmentMember 组织树中的成员
type DepartmentMember struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	IsHead bool   `json:"is_head"`
}

// DepartmentNode 组织树节点
type DepartmentNode struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	NameKR   string             `json:"name_kr,omitempty"`
	Level    int                `json:"level"`
	Members  []DepartmentMember `json:"members"`
	Children []*DepartmentNode  `json:"children"`
}

// CompanyTreeResponse 公司组织树
type CompanyTreeResponse struct {
	Company CompanyResponse   `json:"company"`
	Roots   []*DepartmentNode `json:"departments"`
}
