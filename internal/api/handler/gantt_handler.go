package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// GanttHandler 甘特图布局 HTTP 处理器
type GanttHandler struct {
	ganttSvc service.GanttService
}

// NewGanttHandler 创建 GanttHandler
func NewGanttHandler(ganttSvc service.GanttService) *GanttHandler {
	return &GanttHandler{ganttSvc: ganttSvc}
}

// Layout 计算时间轴、表头与日程条位置；可携带滚动状态触发无限滚动
// POST /api/v1/gantt/layout
func (h *GanttHandler) Layout(c *gin.Context) {
	var req dto.GanttLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ganttSvc.Layout(c.Request.Context(), &req)
	if err != nil {
		handleGanttError(c, err)
		return
	}
	response.OK(c, result)
}

// DateAt 鼠标 x 坐标反查日期
// GET /api/v1/gantt/date-at?range=&zoom=&today=&x=
func (h *GanttHandler) DateAt(c *gin.Context) {
	var req dto.GanttDateAtRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ganttSvc.DateAt(c.Request.Context(), &req)
	if err != nil {
		handleGanttError(c, err)
		return
	}
	response.OK(c, result)
}

func handleGanttError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGanttRangeInvalid):
		response.BadRequest(c, 18101, "无效的时间轴粒度")
	case errors.Is(err, service.ErrGanttSpanTooLarge):
		response.BadRequest(c, 18102, "时间轴跨度过大")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
