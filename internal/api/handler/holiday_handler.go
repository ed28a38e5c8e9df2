package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// HolidayHandler 节假日模块 HTTP 处理器
type HolidayHandler struct {
	holidaySvc service.HolidayService
}

// NewHolidayHandler 创建 HolidayHandler
func NewHolidayHandler(holidaySvc service.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidaySvc: holidaySvc}
}

// ListHolidays 范围内的节假日，每年重复的节假日按年展开
// GET /api/v1/holidays?start=&end=
func (h *HolidayHandler) ListHolidays(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.holidaySvc.List(c.Request.Context(), &req)
	if err != nil {
		handleHolidayError(c, err)
		return
	}
	response.OKList(c, list, int64(len(list)))
}

// GetHoliday GET /api/v1/holidays/:id
func (h *HolidayHandler) GetHoliday(c *gin.Context) {
	holiday, err := h.holidaySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleHolidayError(c, err)
		return
	}
	response.OK(c, holiday)
}

// CreateHoliday POST /api/v1/holidays
func (h *HolidayHandler) CreateHoliday(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	holiday, err := h.holidaySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleHolidayError(c, err)
		return
	}
	response.Created(c, holiday)
}

// UpdateHoliday PUT /api/v1/holidays/:id
func (h *HolidayHandler) UpdateHoliday(c *gin.Context) {
	var req dto.UpdateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	holiday, err := h.holidaySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleHolidayError(c, err)
		return
	}
	response.OK(c, holiday)
}

// DeleteHoliday DELETE /api/v1/holidays/:id
func (h *HolidayHandler) DeleteHoliday(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.holidaySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleHolidayError(c, err)
		return
	}
	response.OK(c, nil)
}

// SyncHolidays 立即从订阅源同步公休日
// POST /api/v1/holidays/sync
func (h *HolidayHandler) SyncHolidays(c *gin.Context) {
	result, err := h.holidaySvc.Sync(c.Request.Context())
	if err != nil {
		handleHolidayError(c, err)
		return
	}
	response.OK(c, result)
}

func handleHolidayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHolidayNotFound):
		response.NotFound(c, 15001, "节假日不存在")
	case errors.Is(err, service.ErrHolidayExists):
		response.Conflict(c, 15002, "同一天已存在同名节假日")
	case errors.Is(err, service.ErrHolidayTypeInvalid):
		response.BadRequest(c, 15003, "节假日类型无效")
	case errors.Is(err, service.ErrHolidaySyncNoSource):
		response.BadRequest(c, 15004, "未配置公休日订阅地址")
	case errors.Is(err, service.ErrHolidaySyncICSFailed):
		response.ErrorWithDetails(c, http.StatusBadGateway, 15005, "公休日订阅源获取或解析失败", err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
