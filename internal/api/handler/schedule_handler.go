package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// ScheduleHandler 日程模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListSchedules 按日期范围查询日程
// GET /api/v1/schedules?start=&end=&user_id=
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKList(c, list, int64(len(list)))
}

// GetSchedule 获取日程详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// CreateSchedule 创建日程
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// UpdateSchedule 更新日程（本人或管理员）
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// DeleteSchedule 删除日程
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExportICS 导出日程为 iCalendar
// GET /api/v1/schedules/export.ics?start=&end=&user_id=
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.scheduleSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	sendAttachment(c, "text/calendar; charset=utf-8", filename, data)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 14001, "日程不存在")
	case errors.Is(err, service.ErrScheduleCategoryInvalid):
		response.BadRequest(c, 14002, "日程类别未登记")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13001, "用户不存在")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}

// ────────────────────── 年假 ──────────────────────

// VacationHandler 年假模块 HTTP 处理器
type VacationHandler struct {
	vacationSvc service.VacationService
}

// NewVacationHandler 创建 VacationHandler
func NewVacationHandler(vacationSvc service.VacationService) *VacationHandler {
	return &VacationHandler{vacationSvc: vacationSvc}
}

// CreateGrant 发放年假
// POST /api/v1/vacation/grants
func (h *VacationHandler) CreateGrant(c *gin.Context) {
	var req dto.CreateVacationGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grant, err := h.vacationSvc.CreateGrant(c.Request.Context(), &req, callerID)
	if err != nil {
		handleVacationError(c, err)
		return
	}
	response.Created(c, grant)
}

// ListGrants 查询发放记录
// GET /api/v1/vacation/grants?year=&user_id=
func (h *VacationHandler) ListGrants(c *gin.Context) {
	var req dto.VacationGrantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.vacationSvc.ListGrants(c.Request.Context(), &req)
	if err != nil {
		handleVacationError(c, err)
		return
	}
	response.OKList(c, list, int64(len(list)))
}

// DeleteGrant 删除发放记录
// DELETE /api/v1/vacation/grants/:id
func (h *VacationHandler) DeleteGrant(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.vacationSvc.DeleteGrant(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleVacationError(c, err)
		return
	}
	response.OK(c, nil)
}

// Summary 年假汇总；未指定 user_id 时为本人
// GET /api/v1/vacation/summary?user_id=&year=
func (h *VacationHandler) Summary(c *gin.Context) {
	var req dto.VacationSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.UserID == "" {
		callerID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		req.UserID = callerID
	}

	summary, err := h.vacationSvc.Summary(c.Request.Context(), req.UserID, req.Year)
	if err != nil {
		handleVacationError(c, err)
		return
	}
	response.OK(c, summary)
}

func handleVacationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVacationGrantNotFound):
		response.NotFound(c, 14101, "年假发放记录不存在")
	case errors.Is(err, service.ErrVacationHoursInvalid):
		response.BadRequest(c, 14102, "发放小时数必须大于 0")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13001, "用户不存在")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
