package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DuesHandler 会费模块 HTTP 处理器
type DuesHandler struct {
	duesSvc service.DuesService
}

// NewDuesHandler 创建 DuesHandler
func NewDuesHandler(duesSvc service.DuesService) *DuesHandler {
	return &DuesHandler{duesSvc: duesSvc}
}

// ListDues 年度流水，按日期排序并附累计余额
// GET /api/v1/dues?year=
func (h *DuesHandler) ListDues(c *gin.Context) {
	var req dto.DuesYearRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.duesSvc.List(c.Request.Context(), req.Year)
	if err != nil {
		handleDuesError(c, err)
		return
	}
	response.OKList(c, list, int64(len(list)))
}

// Summary 年度汇总
// GET /api/v1/dues/summary?year=
func (h *DuesHandler) Summary(c *gin.Context) {
	var req dto.DuesYearRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	summary, err := h.duesSvc.Summary(c.Request.Context(), req.Year)
	if err != nil {
		handleDuesError(c, err)
		return
	}
	response.OK(c, summary)
}

// Export 导出年度流水 Excel
// GET /api/v1/dues/export?year=
func (h *DuesHandler) Export(c *gin.Context) {
	var req dto.DuesYearRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.duesSvc.Export(c.Request.Context(), req.Year)
	if err != nil {
		handleDuesError(c, err)
		return
	}

	sendAttachment(c, xlsxContentType, filename, buf.Bytes())
}

// CreateDues POST /api/v1/dues
func (h *DuesHandler) CreateDues(c *gin.Context) {
	var req dto.CreateDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.duesSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDuesError(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateDues PUT /api/v1/dues/:id
func (h *DuesHandler) UpdateDues(c *gin.Context) {
	var req dto.UpdateDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.duesSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleDuesError(c, err)
		return
	}
	response.OK(c, entry)
}

// DeleteDues DELETE /api/v1/dues/:id
func (h *DuesHandler) DeleteDues(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.duesSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleDuesError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleDuesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuesNotFound):
		response.NotFound(c, 16001, "会费记录不存在")
	case errors.Is(err, service.ErrDuesAmountInvalid):
		response.BadRequest(c, 16002, "金额必须大于 0")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
