package dto

import "porest/backend/pkg/authz"

// ── 页面权限模块 DTO ──

// AuthorityItem 单条权限
type AuthorityItem struct {
	Page   string `json:"page"   binding:"required,min=1,max=50"`
	Action string `json:"action" binding:"required,oneof=read write *"`
}

// ReplaceAuthoritiesRequest 整体替换某角色的权限
type ReplaceAuthoritiesRequest struct {
	Items []AuthorityItem `json:"items" binding:"dive"`
}

// RoleAuthoritiesResponse 角色权限列表
type RoleAuthoritiesResponse struct {
	Role  string          `json:"role"`
	Items []AuthorityItem `json:"items"`
}

// MyAuthoritiesResponse 当前用户可访问的页面
type MyAuthoritiesResponse struct {
	Role  string             `json:"role"`
	Pages []authz.PageAccess `json:"pages"`
}
