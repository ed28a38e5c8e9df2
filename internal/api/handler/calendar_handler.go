package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// CalendarHandler 日历视图 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Events 范围内的日历事件（已附显示标记）与节假日
// GET /api/v1/calendar/events?start=&end=&focus=YYYY-MM
func (h *CalendarHandler) Events(c *gin.Context) {
	var req dto.CalendarEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.calendarSvc.Events(c.Request.Context(), ownerID, &req)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	response.OK(c, result)
}

// Categories 日程类别注册表
// GET /api/v1/calendar/categories
func (h *CalendarHandler) Categories(c *gin.Context) {
	list := h.calendarSvc.Categories()
	response.OKList(c, list, int64(len(list)))
}

// Visibility 当前用户的显示状态
// GET /api/v1/calendar/visibility
func (h *CalendarHandler) Visibility(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	v, err := h.calendarSvc.Visibility(c.Request.Context(), ownerID)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	response.OK(c, v)
}

// ResetVisibility 以给定的用户与类别重建显示状态（全部可见）
// POST /api/v1/calendar/visibility/reset
func (h *CalendarHandler) ResetVisibility(c *gin.Context) {
	var req dto.ResetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	v, err := h.calendarSvc.Reset(c.Request.Context(), ownerID, &req)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	response.OK(c, v)
}

// ToggleUser PUT /api/v1/calendar/visibility/users/:id
func (h *CalendarHandler) ToggleUser(c *gin.Context) {
	h.toggle(c, service.ToggleUser, c.Param("id"))
}

// ToggleCalendar PUT /api/v1/calendar/visibility/calendars/:code
func (h *CalendarHandler) ToggleCalendar(c *gin.Context) {
	h.toggle(c, service.ToggleCalendar, c.Param("code"))
}

// ToggleAllUsers PUT /api/v1/calendar/visibility/users
func (h *CalendarHandler) ToggleAllUsers(c *gin.Context) {
	h.toggle(c, service.ToggleAllUsers, "")
}

// ToggleAllCalendars PUT /api/v1/calendar/visibility/calendars
func (h *CalendarHandler) ToggleAllCalendars(c *gin.Context) {
	h.toggle(c, service.ToggleAllCalendars, "")
}

// ToggleAll PUT /api/v1/calendar/visibility
func (h *CalendarHandler) ToggleAll(c *gin.Context) {
	h.toggle(c, service.ToggleAll, "")
}

func (h *CalendarHandler) toggle(c *gin.Context, kind, id string) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	v, err := h.calendarSvc.Toggle(c.Request.Context(), ownerID, kind, id)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	response.OK(c, v)
}

func handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVisibilityKindInvalid):
		response.BadRequest(c, 18001, "无效的显示切换类型")
	case errors.Is(err, service.ErrScheduleCategoryInvalid):
		response.BadRequest(c, 14002, "日程类别未登记")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
