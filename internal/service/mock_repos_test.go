package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"porest/backend/internal/model"
	"porest/backend/internal/repository"
	pkgerrors "porest/backend/pkg/errors"
)

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
	depts     *mockDeptRepo
}

func newMockCompanyRepo(depts *mockDeptRepo) *mockCompanyRepo {
	return &mockCompanyRepo{
		companies: map[string]*model.Company{
			"company-1": {CompanyID: "company-1", Name: "测试公司"},
		},
		depts: depts,
	}
}

func (m *mockCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if c.CompanyID == "" {
		c.CompanyID = fmt.Sprintf("company-%d", len(m.companies)+1)
	}
	m.companies[c.CompanyID] = c
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) GetByName(_ context.Context, name string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) List(_ context.Context) ([]model.Company, error) {
	var result []model.Company
	for _, c := range m.companies {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCompanyRepo) Update(_ context.Context, c *model.Company) error {
	if _, ok := m.companies[c.CompanyID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	m.companies[c.CompanyID] = &cp
	return nil
}

func (m *mockCompanyRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.companies, id)
	return nil
}

func (m *mockCompanyRepo) CountDepartments(_ context.Context, companyID string) (int64, error) {
	var n int64
	for _, d := range m.depts.departments {
		if d.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[string]*model.Department
	users       *mockUserRepo
	updates     int
}

func newMockDeptRepo(users *mockUserRepo) *mockDeptRepo {
	d := &model.Department{DepartmentID: "dept-root", CompanyID: "company-1", Name: "总部"}
	d.Version = 1
	return &mockDeptRepo{
		departments: map[string]*model.Department{d.DepartmentID: d},
		users:       users,
	}
}

func (m *mockDeptRepo) add(id, name string, parentID *string, level int) *model.Department {
	d := &model.Department{DepartmentID: id, CompanyID: "company-1", ParentID: parentID, Name: name, Level: level}
	d.Version = 1
	m.departments[id] = d
	return d
}

func (m *mockDeptRepo) Create(_ context.Context, d *model.Department) error {
	if d.DepartmentID == "" {
		d.DepartmentID = fmt.Sprintf("dept-%d", len(m.departments)+1)
	}
	d.Version = 1
	cp := *d
	m.departments[d.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) ListByCompany(_ context.Context, companyID string) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		if d.CompanyID == companyID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DepartmentID < result[j].DepartmentID })
	return result, nil
}

func (m *mockDeptRepo) ListAll(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DepartmentID < result[j].DepartmentID })
	return result, nil
}

// Update 模拟乐观锁：版本不一致返回 ErrOptimisticLock，成功后版本自增
func (m *mockDeptRepo) Update(_ context.Context, d *model.Department) error {
	stored, ok := m.departments[d.DepartmentID]
	if !ok || stored.Version != d.Version {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version++
	cp := *d
	m.departments[d.DepartmentID] = &cp
	m.updates++
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.departments, id)
	return nil
}

func (m *mockDeptRepo) CountMembers(_ context.Context, departmentID string) (int64, error) {
	var n int64
	for _, u := range m.users.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

func (m *mockDeptRepo) CountChildren(_ context.Context, departmentID string) (int64, error) {
	var n int64
	for _, d := range m.departments {
		if d.ParentID != nil && *d.ParentID == departmentID {
			n++
		}
	}
	return n, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	admin := &model.User{
		UserID:   "admin-001",
		Name:     "管理员",
		Email:    "admin@porest.test",
		Role:     model.RoleAdmin,
		JoinDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	admin.Version = 1
	user := &model.User{
		UserID:   "user-001",
		Name:     "张三",
		Email:    "zhangsan@porest.test",
		Role:     model.RoleUser,
		JoinDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	user.Version = 1
	return &mockUserRepo{users: map[string]*model.User{admin.UserID: admin, user.UserID: user}}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	if u.UserID == "" {
		u.UserID = fmt.Sprintf("user-%03d", len(m.users)+1)
	}
	u.Version = 1
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	stored, ok := m.users[u.UserID]
	if !ok || stored.Version != u.Version {
		return pkgerrors.ErrOptimisticLock
	}
	u.Version++
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, _ string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.DepartmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != filter.DepartmentID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Name, filter.Keyword) && !strings.Contains(u.Email, filter.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUserRepo) ListByDepartments(_ context.Context, departmentIDs []string) ([]model.User, error) {
	want := make(map[string]bool, len(departmentIDs))
	for _, id := range departmentIDs {
		want[id] = true
	}
	var result []model.User
	for _, u := range m.users {
		if u.DepartmentID != nil && want[*u.DepartmentID] {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	users     *mockUserRepo
}

func newMockScheduleRepo(users *mockUserRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule), users: users}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	if s.ScheduleID == "" {
		s.ScheduleID = fmt.Sprintf("sch-%03d", len(m.schedules)+1)
	}
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		m.preload(&cp)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) Update(_ context.Context, s *model.Schedule) error {
	if _, ok := m.schedules[s.ScheduleID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.StartAt.After(filter.End) || s.EndAt.Before(filter.Start) {
			continue
		}
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		cp := *s
		m.preload(&cp)
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *mockScheduleRepo) preload(s *model.Schedule) {
	if u, ok := m.users.users[s.UserID]; ok {
		cp := *u
		s.User = &cp
	}
}

// ── Mock VacationGrantRepository ──

type mockVacationRepo struct {
	grants map[string]*model.VacationGrant
}

func newMockVacationRepo() *mockVacationRepo {
	return &mockVacationRepo{grants: make(map[string]*model.VacationGrant)}
}

func (m *mockVacationRepo) Create(_ context.Context, g *model.VacationGrant) error {
	if g.GrantID == "" {
		g.GrantID = fmt.Sprintf("grant-%03d", len(m.grants)+1)
	}
	cp := *g
	m.grants[g.GrantID] = &cp
	return nil
}

func (m *mockVacationRepo) GetByID(_ context.Context, id string) (*model.VacationGrant, error) {
	if g, ok := m.grants[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVacationRepo) List(_ context.Context, userID string, year int) ([]model.VacationGrant, error) {
	var result []model.VacationGrant
	for _, g := range m.grants {
		if userID != "" && g.UserID != userID {
			continue
		}
		if year != 0 && g.Year != year {
			continue
		}
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GrantID < result[j].GrantID })
	return result, nil
}

func (m *mockVacationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.grants, id)
	return nil
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	holidays map[string]*model.Holiday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.Holiday)}
}

func (m *mockHolidayRepo) Create(_ context.Context, h *model.Holiday) error {
	if h.HolidayID == "" {
		h.HolidayID = fmt.Sprintf("hol-%03d", len(m.holidays)+1)
	}
	cp := *h
	m.holidays[h.HolidayID] = &cp
	return nil
}

func (m *mockHolidayRepo) GetByID(_ context.Context, id string) (*model.Holiday, error) {
	if h, ok := m.holidays[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) GetByDateName(_ context.Context, date time.Time, name string) (*model.Holiday, error) {
	for _, h := range m.holidays {
		if sameDay(h.Date, date) && h.Name == name {
			cp := *h
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) Update(_ context.Context, h *model.Holiday) error {
	if _, ok := m.holidays[h.HolidayID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *h
	m.holidays[h.HolidayID] = &cp
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.holidays, id)
	return nil
}

func (m *mockHolidayRepo) ListCandidates(_ context.Context, start, end time.Time) ([]model.Holiday, error) {
	var result []model.Holiday
	for _, h := range m.holidays {
		if h.RecurringYearly || (!h.Date.Before(truncDay(start)) && !h.Date.After(end)) {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (m *mockHolidayRepo) Upsert(ctx context.Context, h *model.Holiday) (bool, error) {
	existing, err := m.GetByDateName(ctx, h.Date, h.Name)
	if err == nil {
		h.HolidayID = existing.HolidayID
		return false, m.Update(ctx, h)
	}
	return true, m.Create(ctx, h)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func truncDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ── Mock DuesRepository ──

type mockDuesRepo struct {
	dues map[string]*model.Dues
}

func newMockDuesRepo() *mockDuesRepo {
	return &mockDuesRepo{dues: make(map[string]*model.Dues)}
}

func (m *mockDuesRepo) Create(_ context.Context, d *model.Dues) error {
	if d.DuesID == "" {
		d.DuesID = fmt.Sprintf("dues-%03d", len(m.dues)+1)
	}
	cp := *d
	m.dues[d.DuesID] = &cp
	return nil
}

func (m *mockDuesRepo) GetByID(_ context.Context, id string) (*model.Dues, error) {
	if d, ok := m.dues[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDuesRepo) Update(_ context.Context, d *model.Dues) error {
	if _, ok := m.dues[d.DuesID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	m.dues[d.DuesID] = &cp
	return nil
}

func (m *mockDuesRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.dues, id)
	return nil
}

func (m *mockDuesRepo) ListByYear(_ context.Context, year int) ([]model.Dues, error) {
	var result []model.Dues
	for _, d := range m.dues {
		if d.Year == year {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].DuesID < result[j].DuesID
	})
	return result, nil
}

func (m *mockDuesRepo) BalanceBefore(_ context.Context, year int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range m.dues {
		if d.Year < year {
			total = total.Add(d.Signed())
		}
	}
	return total, nil
}

// ── Mock RoleAuthorityRepository ──

type mockRoleAuthorityRepo struct {
	items []model.RoleAuthority
}

func newMockRoleAuthorityRepo() *mockRoleAuthorityRepo {
	return &mockRoleAuthorityRepo{items: []model.RoleAuthority{
		{Role: model.RoleAdmin, Page: "*", Action: "*"},
		{Role: model.RoleUser, Page: "calendar", Action: "read"},
	}}
}

func (m *mockRoleAuthorityRepo) ListAll(_ context.Context) ([]model.RoleAuthority, error) {
	return append([]model.RoleAuthority(nil), m.items...), nil
}

func (m *mockRoleAuthorityRepo) ListByRole(_ context.Context, role string) ([]model.RoleAuthority, error) {
	var result []model.RoleAuthority
	for _, it := range m.items {
		if it.Role == role {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockRoleAuthorityRepo) ReplaceRole(_ context.Context, role string, items []model.RoleAuthority) error {
	kept := m.items[:0]
	for _, it := range m.items {
		if it.Role != role {
			kept = append(kept, it)
		}
	}
	m.items = append(kept, items...)
	return nil
}

// ── 测试辅助 ──

// mockRepos 一组互相关联的内存仓库
type mockRepos struct {
	company   *mockCompanyRepo
	dept      *mockDeptRepo
	user      *mockUserRepo
	schedule  *mockScheduleRepo
	vacation  *mockVacationRepo
	holiday   *mockHolidayRepo
	dues      *mockDuesRepo
	authority *mockRoleAuthorityRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	depts := newMockDeptRepo(users)
	m := &mockRepos{
		company:   newMockCompanyRepo(depts),
		dept:      depts,
		user:      users,
		schedule:  newMockScheduleRepo(users),
		vacation:  newMockVacationRepo(),
		holiday:   newMockHolidayRepo(),
		dues:      newMockDuesRepo(),
		authority: newMockRoleAuthorityRepo(),
	}
	repo := &repository.Repository{
		Company:       m.company,
		Department:    m.dept,
		User:          m.user,
		Schedule:      m.schedule,
		VacationGrant: m.vacation,
		Holiday:       m.holiday,
		Dues:          m.dues,
		RoleAuthority: m.authority,
	}
	return repo, m
}

// testLoc 测试统一使用的日历时区
var testLoc = time.FixedZone("KST", 9*3600)
