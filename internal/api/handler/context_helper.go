package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/service"
	pkgerrors "porest/backend/pkg/errors"
	"porest/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id", false)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role", false)
}

// MustGetDepartmentID 从 Gin 上下文中安全提取 department_id，未分配部门时为空串。
func MustGetDepartmentID(c *gin.Context) (string, bool) {
	return mustGetString(c, "department_id", true)
}

// MustGetCaller 同时提取 user_id 与 role
func MustGetCaller(c *gin.Context) (string, string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", "", false
	}
	return userID, role, true
}

func mustGetString(c *gin.Context, key string, allowEmpty bool) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || (s == "" && !allowEmpty) {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// handleCommonError 处理跨模块的通用错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 10007, "结束时间不能早于开始时间")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10008, "数据已被其他操作修改，请刷新后重试")
	default:
		return false
	}
	return true
}

// sendAttachment 以附件形式返回文件内容
func sendAttachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
