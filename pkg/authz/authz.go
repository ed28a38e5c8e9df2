// Package authz 基于 casbin 的页面权限判定。
// 策略的权威来源是 role_authorities 表，内存中的 enforcer 只做缓存，修改后需 Reload。
package authz

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// 动作
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Wildcard 匹配任意页面或动作
const Wildcard = "*"

// 页面
const (
	PageCalendar  = "calendar"
	PageGantt     = "gantt"
	PageVacation  = "vacation"
	PageHoliday   = "holiday"
	PageDues      = "dues"
	PageUser      = "user"
	PageCompany   = "company"
	PageAuthority = "authority"
)

// Pages 全部受控页面，按导航顺序
var Pages = []string{
	PageCalendar, PageGantt, PageVacation, PageHoliday,
	PageDues, PageUser, PageCompany, PageAuthority,
}

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 单条授权：角色 role 对页面 page 拥有动作 action
type Policy struct {
	Role   string `json:"role"`
	Page   string `json:"page"`
	Action string `json:"action"`
}

// LoadFunc 从持久化存储读取全部策略
type LoadFunc func(ctx context.Context) ([]Policy, error)

// Enforcer 并发安全的页面权限判定器
type Enforcer struct {
	load   LoadFunc
	logger *zap.Logger

	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	policies []Policy
}

// NewEnforcer 创建并立即加载一次策略
func NewEnforcer(ctx context.Context, load LoadFunc, logger *zap.Logger) (*Enforcer, error) {
	if load == nil {
		return nil, fmt.Errorf("authz: load func is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enforcer{load: load, logger: logger.Named("authz")}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload 重新读取策略并整体替换内存中的 enforcer
func (e *Enforcer) Reload(ctx context.Context) error {
	policies, err := e.load(ctx)
	if err != nil {
		return fmt.Errorf("authz: load policies: %w", err)
	}

	enf, err := build(policies)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.enforcer = enf
	e.policies = append([]Policy(nil), policies...)
	e.mu.Unlock()

	e.logger.Info("权限策略已加载", zap.Int("count", len(policies)))
	return nil
}

func build(policies []Policy) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: init enforcer: %w", err)
	}
	if len(policies) == 0 {
		return enf, nil
	}

	rules := make([][]string, 0, len(policies))
	for _, p := range policies {
		rules = append(rules, []string{p.Role, p.Page, p.Action})
	}
	if _, err := enf.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("authz: add policies: %w", err)
	}
	return enf, nil
}

// Check 判断 role 是否可以对 page 执行 action
func (e *Enforcer) Check(role, page, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ok, err := e.enforcer.Enforce(role, page, action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce: %w", err)
	}
	return ok, nil
}

// Policies 返回 role 的原始策略（role 为空时返回全部）
func (e *Enforcer) Policies(role string) []Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Policy, 0, len(e.policies))
	for _, p := range e.policies {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// PageAccess 某页面的读写权限
type PageAccess struct {
	Page  string `json:"page"`
	Read  bool   `json:"read"`
	Write bool   `json:"write"`
}

// PagesFor 展开 role 对每个已知页面的读写权限（通配符已解析），只返回至少可读或可写的页面
func (e *Enforcer) PagesFor(role string) ([]PageAccess, error) {
	var out []PageAccess
	for _, page := range Pages {
		read, err := e.Check(role, page, ActionRead)
		if err != nil {
			return nil, err
		}
		write, err := e.Check(role, page, ActionWrite)
		if err != nil {
			return nil, err
		}
		if read || write {
			out = append(out, PageAccess{Page: page, Read: read, Write: write})
		}
	}
	return out, nil
}

// ValidPage 页面是否受控（或为通配符）
func ValidPage(page string) bool {
	if page == Wildcard {
		return true
	}
	for _, p := range Pages {
		if p == page {
			return true
		}
	}
	return false
}

// ValidAction 动作是否合法
func ValidAction(action string) bool {
	return action == ActionRead || action == ActionWrite || action == Wildcard
}
