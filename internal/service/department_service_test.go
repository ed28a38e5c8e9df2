package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	pkgerrors "porest/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestDepartmentService() (DepartmentService, *mockRepos) {
	repo, m := newMockRepos()
	return NewDepartmentService(repo, zap.NewNop()), m
}

func setupTestCompanyService() (CompanyService, *mockRepos) {
	repo, m := newMockRepos()
	return NewCompanyService(repo, zap.NewNop()), m
}

// 总部 ── 研发部 ── 平台组
//      └─ 人事部
func seedDepartmentTree(m *mockRepos) {
	root := "dept-root"
	dev := "dept-dev"
	m.dept.add(dev, "研发部", &root, 1)
	m.dept.add("dept-hr", "人事部", &root, 1)
	m.dept.add("dept-platform", "平台组", &dev, 2)
}

// ── Department Create 测试 ──

func TestDepartmentService_Create_Success(t *testing.T) {
	svc, _ := setupTestDepartmentService()
	parent := "dept-root"

	result, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		CompanyID: "company-1",
		ParentID:  &parent,
		Name:      "财务部",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Level != 1 {
		t.Errorf("期望Level=1，实际=%d", result.Level)
	}
	if result.Version != 1 {
		t.Errorf("期望Version=1，实际=%d", result.Version)
	}
}

func TestDepartmentService_Create_NameExistsAmongSiblings(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	parent := "dept-root"

	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		CompanyID: "company-1",
		ParentID:  &parent,
		Name:      "研发部",
	}, "admin-001")
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际: %v", err)
	}
}

func TestDepartmentService_Create_SameNameUnderOtherParent(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	parent := "dept-hr"

	// 不同上级下允许同名
	if _, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		CompanyID: "company-1",
		ParentID:  &parent,
		Name:      "平台组",
	}, "admin-001"); err != nil {
		t.Fatalf("不同上级下同名应成功: %v", err)
	}
}

func TestDepartmentService_Create_CompanyNotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{CompanyID: "missing", Name: "X"}, "admin-001")
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("期望 ErrCompanyNotFound，实际: %v", err)
	}
}

func TestDepartmentService_Create_HeadNotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()
	head := "ghost"

	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		CompanyID:  "company-1",
		Name:       "新部门",
		HeadUserID: &head,
	}, "admin-001")
	if !errors.Is(err, ErrDepartmentHeadNotMember) {
		t.Errorf("期望 ErrDepartmentHeadNotMember，实际: %v", err)
	}
}

// ── Department Update 测试 ──

func TestDepartmentService_Update_MoveRecomputesSubtreeLevels(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	newParent := "dept-hr"

	result, err := svc.Update(context.Background(), "dept-dev", &dto.UpdateDepartmentRequest{
		ParentID: &newParent,
		Version:  1,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Level != 2 {
		t.Errorf("期望研发部Level=2，实际=%d", result.Level)
	}
	if got := m.dept.departments["dept-platform"].Level; got != 3 {
		t.Errorf("期望平台组Level=3，实际=%d", got)
	}
}

func TestDepartmentService_Update_MoveToRoot(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	empty := ""

	result, err := svc.Update(context.Background(), "dept-dev", &dto.UpdateDepartmentRequest{
		ParentID: &empty,
		Version:  1,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.ParentID != nil || result.Level != 0 {
		t.Errorf("期望移至根节点，实际 parent=%v level=%d", result.ParentID, result.Level)
	}
	if got := m.dept.departments["dept-platform"].Level; got != 1 {
		t.Errorf("期望平台组Level=1，实际=%d", got)
	}
}

func TestDepartmentService_Update_CycleRejected(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)

	for _, target := range []string{"dept-dev", "dept-platform"} {
		target := target
		_, err := svc.Update(context.Background(), "dept-dev", &dto.UpdateDepartmentRequest{
			ParentID: &target,
			Version:  1,
		}, "admin-001")
		if !errors.Is(err, ErrDepartmentCycle) {
			t.Errorf("移到 %s 下期望 ErrDepartmentCycle，实际: %v", target, err)
		}
	}
}

func TestDepartmentService_Update_StaleVersion(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	name := "研发中心"

	if _, err := svc.Update(context.Background(), "dept-dev", &dto.UpdateDepartmentRequest{Name: &name, Version: 1}, "admin-001"); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}
	_, err := svc.Update(context.Background(), "dept-dev", &dto.UpdateDepartmentRequest{Name: &name, Version: 1}, "admin-001")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestDepartmentService_Update_ClearHead(t *testing.T) {
	svc, m := setupTestDepartmentService()
	head := "user-001"
	m.dept.departments["dept-root"].HeadUserID = &head
	empty := ""

	result, err := svc.Update(context.Background(), "dept-root", &dto.UpdateDepartmentRequest{HeadUserID: &empty, Version: 1}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.HeadUserID != nil {
		t.Errorf("期望负责人被清空，实际=%v", *result.HeadUserID)
	}
}

// ── Department Delete 测试 ──

func TestDepartmentService_Delete_HasChildren(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)

	if err := svc.Delete(context.Background(), "dept-dev", "admin-001"); !errors.Is(err, ErrDepartmentHasChildren) {
		t.Errorf("期望 ErrDepartmentHasChildren，实际: %v", err)
	}
}

func TestDepartmentService_Delete_HasMembers(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)
	hr := "dept-hr"
	m.user.users["user-001"].DepartmentID = &hr

	if err := svc.Delete(context.Background(), "dept-hr", "admin-001"); !errors.Is(err, ErrDepartmentHasMembers) {
		t.Errorf("期望 ErrDepartmentHasMembers，实际: %v", err)
	}
}

func TestDepartmentService_Delete_Success(t *testing.T) {
	svc, m := setupTestDepartmentService()
	seedDepartmentTree(m)

	if err := svc.Delete(context.Background(), "dept-platform", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := m.dept.departments["dept-platform"]; ok {
		t.Error("部门应已删除")
	}
}

// ── Company 测试 ──

func TestCompanyService_Create_NameExists(t *testing.T) {
	svc, _ := setupTestCompanyService()

	_, err := svc.Create(context.Background(), &dto.CreateCompanyRequest{Name: "测试公司"}, "admin-001")
	if !errors.Is(err, ErrCompanyNameExists) {
		t.Errorf("期望 ErrCompanyNameExists，实际: %v", err)
	}
}

func TestCompanyService_Delete_HasDepartments(t *testing.T) {
	svc, _ := setupTestCompanyService()

	if err := svc.Delete(context.Background(), "company-1", "admin-001"); !errors.Is(err, ErrCompanyHasDepartments) {
		t.Errorf("期望 ErrCompanyHasDepartments，实际: %v", err)
	}
}

func TestCompanyService_Tree(t *testing.T) {
	svc, m := setupTestCompanyService()
	seedDepartmentTree(m)
	hr := "dept-hr"
	m.user.users["user-001"].DepartmentID = &hr
	m.user.users["admin-001"].DepartmentID = &hr
	admin := "admin-001"
	m.dept.departments["dept-hr"].HeadUserID = &admin

	tree, err := svc.Tree(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("Tree 应成功: %v", err)
	}
	if tree.Company.DepartmentCount != 4 {
		t.Errorf("期望DepartmentCount=4，实际=%d", tree.Company.DepartmentCount)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].ID != "dept-root" {
		t.Fatalf("期望唯一根节点 dept-root，实际=%v", tree.Roots)
	}

	children := tree.Roots[0].Children
	if len(children) != 2 {
		t.Fatalf("期望2个子部门，实际=%d", len(children))
	}
	// 同 sort_order 按名称排序
	if children[0].Name != "人事部" || children[1].Name != "研发部" {
		t.Errorf("子部门顺序错误: %s, %s", children[0].Name, children[1].Name)
	}
	hrNode := children[0]
	if len(hrNode.Members) != 2 || !hrNode.Members[0].IsHead || hrNode.Members[0].UserID != "admin-001" {
		t.Errorf("负责人应排在首位，实际=%v", hrNode.Members)
	}
	if got := children[1].Children[0].Level; got != 2 {
		t.Errorf("期望平台组Level=2，实际=%d", got)
	}
}

func TestBuildDepartmentTree_OrphanBecomesRoot(t *testing.T) {
	missing := "gone"
	depts := []model.Department{
		{DepartmentID: "a", Name: "甲"},
		{DepartmentID: "b", Name: "乙", ParentID: &missing},
	}

	roots := BuildDepartmentTree(depts, nil)
	if len(roots) != 2 {
		t.Fatalf("期望2个根节点，实际=%d", len(roots))
	}
	for _, r := range roots {
		if r.Level != 0 {
			t.Errorf("根节点Level应为0，实际=%d", r.Level)
		}
	}
}

func TestBuildDepartmentTree_Empty(t *testing.T) {
	roots := BuildDepartmentTree(nil, nil)
	if roots == nil || len(roots) != 0 {
		t.Errorf("空列表应返回空切片，实际=%v", roots)
	}
}
