package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 公司模块业务错误 ──

var (
	ErrCompanyNotFound       = errors.New("公司不存在")
	ErrCompanyNameExists     = errors.New("公司名称已存在")
	ErrCompanyHasDepartments = errors.New("公司下存在部门，无法删除")
)

// CompanyService 公司业务接口
type CompanyService interface {
	Create(ctx context.Context, req *dto.CreateCompanyRequest, callerID string) (*dto.CompanyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error)
	List(ctx context.Context) ([]dto.CompanyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCompanyRequest, callerID string) (*dto.CompanyResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Tree 公司完整组织树（部门嵌套 + 成员）
	Tree(ctx context.Context, id string) (*dto.CompanyTreeResponse, error)
}

type companyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCompanyService 创建 CompanyService 实例
func NewCompanyService(repo *repository.Repository, logger *zap.Logger) CompanyService {
	return &companyService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *companyService) Create(ctx context.Context, req *dto.CreateCompanyRequest, callerID string) (*dto.CompanyResponse, error) {
	if _, err := s.repo.Company.GetByName(ctx, req.Name); err == nil {
		return nil, ErrCompanyNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询公司失败", zap.Error(err))
		return nil, err
	}

	company := &model.Company{
		Name:        req.Name,
		Description: req.Description,
	}
	company.CreatedBy = &callerID
	company.UpdatedBy = &callerID

	if err := s.repo.Company.Create(ctx, company); err != nil {
		s.logger.Error("创建公司失败", zap.Error(err))
		return nil, err
	}
	return s.toCompanyResponse(ctx, company), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *companyService) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toCompanyResponse(ctx, company), nil
}

// ────────────────────── List ──────────────────────

func (s *companyService) List(ctx context.Context) ([]dto.CompanyResponse, error) {
	companies, err := s.repo.Company.List(ctx)
	if err != nil {
		s.logger.Error("列出公司失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		result = append(result, *s.toCompanyResponse(ctx, &companies[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *companyService) Update(ctx context.Context, id string, req *dto.UpdateCompanyRequest, callerID string) (*dto.CompanyResponse, error) {
	company, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != company.Name {
		existing, err := s.repo.Company.GetByName(ctx, *req.Name)
		if err == nil && existing.CompanyID != id {
			return nil, ErrCompanyNameExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		company.Name = *req.Name
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	company.UpdatedBy = &callerID

	if err := s.repo.Company.Update(ctx, company); err != nil {
		s.logger.Error("更新公司失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toCompanyResponse(ctx, company), nil
}

// ────────────────────── Delete ──────────────────────

func (s *companyService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getCompany(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Company.CountDepartments(ctx, id)
	if err != nil {
		s.logger.Error("统计部门数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCompanyHasDepartments
	}

	if err := s.repo.Company.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除公司失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Tree ──────────────────────

func (s *companyService) Tree(ctx context.Context, id string) (*dto.CompanyTreeResponse, error) {
	company, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	depts, err := s.repo.Department.ListByCompany(ctx, id)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(depts))
	for _, d := range depts {
		ids = append(ids, d.DepartmentID)
	}
	var users []model.User
	if len(ids) > 0 {
		users, err = s.repo.User.ListByDepartments(ctx, ids)
		if err != nil {
			s.logger.Error("查询部门成员失败", zap.String("company_id", id), zap.Error(err))
			return nil, err
		}
	}

	return &dto.CompanyTreeResponse{
		Company: *s.toCompanyResponse(ctx, company),
		Roots:   BuildDepartmentTree(depts, users),
	}, nil
}

// BuildDepartmentTree 由扁平的部门与成员列表构建嵌套树
// 父节点不在列表中的部门视为根；同级按 sort_order、名称排序，成员部门负责人优先
func BuildDepartmentTree(depts []model.Department, users []model.User) []*dto.DepartmentNode {
	nodes := make(map[string]*dto.DepartmentNode, len(depts))
	heads := make(map[string]string, len(depts))
	order := make(map[string]model.Department, len(depts))
	for _, d := range depts {
		nodes[d.DepartmentID] = &dto.DepartmentNode{
			ID:       d.DepartmentID,
			Name:     d.Name,
			NameKR:   d.NameKR,
			Members:  []dto.DepartmentMember{},
			Children: []*dto.DepartmentNode{},
		}
		if d.HeadUserID != nil {
			heads[d.DepartmentID] = *d.HeadUserID
		}
		order[d.DepartmentID] = d
	}

	for _, u := range users {
		if u.DepartmentID == nil {
			continue
		}
		node, ok := nodes[*u.DepartmentID]
		if !ok {
			continue
		}
		node.Members = append(node.Members, dto.DepartmentMember{
			UserID: u.UserID,
			Name:   u.Name,
			Role:   u.Role,
			IsHead: heads[*u.DepartmentID] == u.UserID,
		})
	}

	var roots []*dto.DepartmentNode
	for _, d := range depts {
		node := nodes[d.DepartmentID]
		if d.ParentID != nil {
			if parent, ok := nodes[*d.ParentID]; ok && *d.ParentID != d.DepartmentID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	less := func(list []*dto.DepartmentNode) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := order[list[i].ID], order[list[j].ID]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.Name < b.Name
		}
	}

	var walk func(list []*dto.DepartmentNode, level int)
	walk = func(list []*dto.DepartmentNode, level int) {
		sort.SliceStable(list, less(list))
		for _, n := range list {
			n.Level = level
			sort.SliceStable(n.Members, func(i, j int) bool {
				if n.Members[i].IsHead != n.Members[j].IsHead {
					return n.Members[i].IsHead
				}
				return n.Members[i].Name < n.Members[j].Name
			})
			walk(n.Children, level+1)
		}
	}
	walk(roots, 0)

	if roots == nil {
		roots = []*dto.DepartmentNode{}
	}
	return roots
}

// ── 内部辅助方法 ──

func (s *companyService) getCompany(ctx context.Context, id string) (*model.Company, error) {
	company, err := s.repo.Company.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Error("查询公司失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return company, nil
}

func (s *companyService) toCompanyResponse(ctx context.Context, c *model.Company) *dto.CompanyResponse {
	count, _ := s.repo.Company.CountDepartments(ctx, c.CompanyID)
	return &dto.CompanyResponse{
		ID:              c.CompanyID,
		Name:            c.Name,
		Description:     c.Description,
		DepartmentCount: count,
		CreatedAt:       formatDateTime(c.CreatedAt),
		UpdatedAt:       formatDateTime(c.UpdatedAt),
	}
}
