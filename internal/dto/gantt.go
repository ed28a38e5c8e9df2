package dto

import "porest/backend/internal/gantt"

// ── 甘特图模块 DTO ──

// GanttFeatureRequest 客户端指定的日程条
type GanttFeatureRequest struct {
	ID       string  `json:"id"       binding:"required"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Start    string  `json:"start"    binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End      *string `json:"end"      binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// GanttLaneRequest 客户端指定的泳道
type GanttLaneRequest struct {
	ID       string                `json:"id"       binding:"required"`
	Name     string                `json:"name"`
	Features []GanttFeatureRequest `json:"features" binding:"dive"`
}

// GanttLayoutRequest 甘特图布局请求；lanes 省略时按用户从日程生成
type GanttLayoutRequest struct {
	Range string `json:"range"      binding:"omitempty,oneof=daily monthly quarterly timely"`
	Zoom  int    `json:"zoom"       binding:"omitempty,min=1,max=1000"`
	Today string `json:"today"      binding:"omitempty,datetime=2006-01-02"`
	// StartYear / EndYear 此前滚动扩展后的年份边界，省略时为 today 前后一年
	StartYear int                `json:"start_year" binding:"omitempty,min=1900,max=9999"`
	EndYear   int                `json:"end_year"   binding:"omitempty,min=1900,max=9999"`
	Scroll    *gantt.ScrollState `json:"scroll"`
	Lanes     []GanttLaneRequest `json:"lanes"      binding:"omitempty,dive"`
}

// GanttLayoutResponse 布局结果；scroll 为补偿后的滚动状态
type GanttLayoutResponse struct {
	gantt.Layout
	StartYear int                `json:"start_year,omitempty"`
	EndYear   int                `json:"end_year,omitempty"`
	Scroll    *gantt.ScrollState `json:"scroll,omitempty"`
	Grew      bool               `json:"grew"`
}

// GanttDateAtRequest 鼠标位置反查日期
type GanttDateAtRequest struct {
	Range     string  `form:"range"      binding:"omitempty,oneof=daily monthly quarterly timely"`
	Zoom      int     `form:"zoom"       binding:"omitempty,min=1,max=1000"`
	Today     string  `form:"today"      binding:"omitempty,datetime=2006-01-02"`
	StartYear int     `form:"start_year" binding:"omitempty,min=1900,max=9999"`
	X         float64 `form:"x"          binding:"min=0"`
}

// GanttDateAtResponse 反查结果
type GanttDateAtResponse struct {
	Date string `json:"date"`
}
