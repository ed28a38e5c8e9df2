package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/response"
)

// AuthorityHandler 页面权限模块 HTTP 处理器
type AuthorityHandler struct {
	authoritySvc service.AuthorityService
}

// NewAuthorityHandler 创建 AuthorityHandler
func NewAuthorityHandler(authoritySvc service.AuthorityService) *AuthorityHandler {
	return &AuthorityHandler{authoritySvc: authoritySvc}
}

// ListAuthorities 角色权限列表；role 为空时返回全部角色
// GET /api/v1/authorities?role=
func (h *AuthorityHandler) ListAuthorities(c *gin.Context) {
	list, err := h.authoritySvc.ListByRole(c.Request.Context(), c.Query("role"))
	if err != nil {
		handleAuthorityError(c, err)
		return
	}
	response.OKList(c, list, int64(len(list)))
}

// ReplaceAuthorities 整体替换某角色的权限并刷新判定器
// PUT /api/v1/authorities/:role
func (h *AuthorityHandler) ReplaceAuthorities(c *gin.Context) {
	var req dto.ReplaceAuthoritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authoritySvc.Replace(c.Request.Context(), c.Param("role"), &req, callerID)
	if err != nil {
		handleAuthorityError(c, err)
		return
	}
	response.OK(c, result)
}

// Mine 当前用户可访问的页面
// GET /api/v1/authorities/me
func (h *AuthorityHandler) Mine(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.authoritySvc.Mine(c.Request.Context(), role)
	if err != nil {
		handleAuthorityError(c, err)
		return
	}
	response.OK(c, result)
}

func handleAuthorityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthorityPageInvalid):
		response.BadRequest(c, 17001, "页面不受控")
	case errors.Is(err, service.ErrAuthorityActionInvalid):
		response.BadRequest(c, 17002, "动作无效")
	case errors.Is(err, service.ErrAuthorityAdminLockout):
		response.BadRequest(c, 17003, "不能移除 ADMIN 对权限页面的写权限")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 13005, "角色无效")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
