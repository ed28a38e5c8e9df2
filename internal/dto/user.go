package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Name           string  `json:"name"            binding:"required,min=1,max=50"`
	Email          string  `json:"email"           binding:"required,email"`
	Role           string  `json:"role"            binding:"omitempty,oneof=ADMIN MANAGER USER"`
	DepartmentID   *string `json:"department_id"   binding:"omitempty,uuid"`
	EmploymentType string  `json:"employment_type" binding:"omitempty,max=20"`
	WorkTime       string  `json:"work_time"       binding:"omitempty,max=20"`
	JoinDate       string  `json:"join_date"       binding:"required,datetime=2006-01-02"`
	BirthDate      string  `json:"birth_date"      binding:"omitempty,datetime=2006-01-02"`
	LunarBirth     bool    `json:"lunar_birth"`
}

// CreateUserResponse 创建用户响应（含初始密码，仅返回一次）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=ADMIN MANAGER USER"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=1,max=50"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	DepartmentID   *string `json:"department_id"   binding:"omitempty,uuid"`
	EmploymentType *string `json:"employment_type" binding:"omitempty,max=20"`
	WorkTime       *string `json:"work_time"       binding:"omitempty,max=20"`
	JoinDate       *string `json:"join_date"       binding:"omitempty,datetime=2006-01-02"`
	BirthDate      *string `json:"birth_date"      binding:"omitempty,datetime=2006-01-02"`
	LunarBirth     *bool   `json:"lunar_birth"`
	Version        int     `json:"version"         binding:"required,min=1"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MANAGER USER"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
