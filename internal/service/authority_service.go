package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
	"porest/backend/pkg/authz"
)

// ── 页面权限模块业务错误 ──

var (
	ErrAuthorityPageInvalid   = errors.New("页面不受控")
	ErrAuthorityActionInvalid = errors.New("动作无效")
	ErrAuthorityAdminLockout  = errors.New("不能移除 ADMIN 对权限页面的写权限")
)

// PolicyStore 权限判定器在服务层需要的能力
type PolicyStore interface {
	Reload(ctx context.Context) error
	PagesFor(role string) ([]authz.PageAccess, error)
}

// AuthorityService 页面权限业务接口
type AuthorityService interface {
	// ListByRole role 为空时返回全部角色
	ListByRole(ctx context.Context, role string) ([]dto.RoleAuthoritiesResponse, error)
	// Replace 整体替换某角色的权限并刷新判定器
	Replace(ctx context.Context, role string, req *dto.ReplaceAuthoritiesRequest, callerID string) (*dto.RoleAuthoritiesResponse, error)
	// Mine 当前角色可访问的页面
	Mine(ctx context.Context, role string) (*dto.MyAuthoritiesResponse, error)
}

type authorityService struct {
	repo     *repository.Repository
	policies PolicyStore
	logger   *zap.Logger
}

// NewAuthorityService 创建 AuthorityService 实例
func NewAuthorityService(repo *repository.Repository, policies PolicyStore, logger *zap.Logger) AuthorityService {
	return &authorityService{repo: repo, policies: policies, logger: logger}
}

// PolicyLoader 以 role_authorities 表作为 authz 策略来源
func PolicyLoader(repo *repository.Repository) authz.LoadFunc {
	return func(ctx context.Context) ([]authz.Policy, error) {
		items, err := repo.RoleAuthority.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]authz.Policy, 0, len(items))
		for _, it := range items {
			out = append(out, authz.Policy{Role: it.Role, Page: it.Page, Action: it.Action})
		}
		return out, nil
	}
}

// ────────────────────── ListByRole ──────────────────────

func (s *authorityService) ListByRole(ctx context.Context, role string) ([]dto.RoleAuthoritiesResponse, error) {
	var items []model.RoleAuthority
	var err error
	if role != "" {
		items, err = s.repo.RoleAuthority.ListByRole(ctx, role)
	} else {
		items, err = s.repo.RoleAuthority.ListAll(ctx)
	}
	if err != nil {
		s.logger.Error("查询页面权限失败", zap.String("role", role), zap.Error(err))
		return nil, err
	}

	byRole := make(map[string]*dto.RoleAuthoritiesResponse)
	var order []string
	for _, it := range items {
		r, ok := byRole[it.Role]
		if !ok {
			r = &dto.RoleAuthoritiesResponse{Role: it.Role, Items: []dto.AuthorityItem{}}
			byRole[it.Role] = r
			order = append(order, it.Role)
		}
		r.Items = append(r.Items, dto.AuthorityItem{Page: it.Page, Action: it.Action})
	}

	if role != "" && len(order) == 0 {
		return []dto.RoleAuthoritiesResponse{{Role: role, Items: []dto.AuthorityItem{}}}, nil
	}
	result := make([]dto.RoleAuthoritiesResponse, 0, len(order))
	for _, r := range order {
		result = append(result, *byRole[r])
	}
	return result, nil
}

// ────────────────────── Replace ──────────────────────

func (s *authorityService) Replace(ctx context.Context, role string, req *dto.ReplaceAuthoritiesRequest, callerID string) (*dto.RoleAuthoritiesResponse, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	seen := make(map[string]bool)
	items := make([]model.RoleAuthority, 0, len(req.Items))
	resp := &dto.RoleAuthoritiesResponse{Role: role, Items: []dto.AuthorityItem{}}
	adminWritable := false
	for _, it := range req.Items {
		if !authz.ValidPage(it.Page) {
			return nil, fmt.Errorf("%w: %s", ErrAuthorityPageInvalid, it.Page)
		}
		if !authz.ValidAction(it.Action) {
			return nil, fmt.Errorf("%w: %s", ErrAuthorityActionInvalid, it.Action)
		}
		key := it.Page + "|" + it.Action
		if seen[key] {
			continue
		}
		seen[key] = true
		if (it.Page == authz.PageAuthority || it.Page == authz.Wildcard) && it.Action != authz.ActionRead {
			adminWritable = true
		}
		items = append(items, model.RoleAuthority{Role: role, Page: it.Page, Action: it.Action, CreatedBy: &callerID})
		resp.Items = append(resp.Items, dto.AuthorityItem{Page: it.Page, Action: it.Action})
	}
	// ADMIN 必须保留管理权限页面的能力，否则无人能再修改权限
	if role == model.RoleAdmin && !adminWritable {
		return nil, ErrAuthorityAdminLockout
	}

	if err := s.repo.RoleAuthority.ReplaceRole(ctx, role, items); err != nil {
		s.logger.Error("替换页面权限失败", zap.String("role", role), zap.Error(err))
		return nil, err
	}
	if err := s.policies.Reload(ctx); err != nil {
		s.logger.Error("刷新权限判定器失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("页面权限已更新", zap.String("role", role), zap.Int("items", len(items)), zap.String("by", callerID))
	return resp, nil
}

// ────────────────────── Mine ──────────────────────

func (s *authorityService) Mine(_ context.Context, role string) (*dto.MyAuthoritiesResponse, error) {
	pages, err := s.policies.PagesFor(role)
	if err != nil {
		s.logger.Error("计算可访问页面失败", zap.String("role", role), zap.Error(err))
		return nil, err
	}
	if pages == nil {
		pages = []authz.PageAccess{}
	}
	return &dto.MyAuthoritiesResponse{Role: role, Pages: pages}, nil
}
