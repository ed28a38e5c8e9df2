package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLoader(policies *[]Policy) LoadFunc {
	return func(context.Context) ([]Policy, error) {
		return *policies, nil
	}
}

func seedPolicies() []Policy {
	return []Policy{
		{Role: "ADMIN", Page: Wildcard, Action: ActionRead},
		{Role: "ADMIN", Page: Wildcard, Action: ActionWrite},
		{Role: "MANAGER", Page: PageCalendar, Action: ActionRead},
		{Role: "MANAGER", Page: PageCalendar, Action: ActionWrite},
		{Role: "MANAGER", Page: PageDues, Action: Wildcard},
		{Role: "USER", Page: PageCalendar, Action: ActionRead},
	}
}

func newTestEnforcer(t *testing.T) (*Enforcer, *[]Policy) {
	t.Helper()
	policies := seedPolicies()
	e, err := NewEnforcer(context.Background(), staticLoader(&policies), nil)
	require.NoError(t, err)
	return e, &policies
}

func TestCheck(t *testing.T) {
	e, _ := newTestEnforcer(t)

	cases := []struct {
		role, page, action string
		want               bool
	}{
		{"ADMIN", PageAuthority, ActionWrite, true},
		{"ADMIN", "anything", ActionRead, true},
		{"MANAGER", PageCalendar, ActionWrite, true},
		{"MANAGER", PageDues, ActionWrite, true},
		{"MANAGER", PageUser, ActionRead, false},
		{"USER", PageCalendar, ActionRead, true},
		{"USER", PageCalendar, ActionWrite, false},
		{"GUEST", PageCalendar, ActionRead, false},
	}
	for _, tc := range cases {
		got, err := e.Check(tc.role, tc.page, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.page, tc.action)
	}
}

func TestReload_PicksUpChanges(t *testing.T) {
	e, policies := newTestEnforcer(t)

	ok, _ := e.Check("USER", PageHoliday, ActionRead)
	require.False(t, ok)

	*policies = append(*policies, Policy{Role: "USER", Page: PageHoliday, Action: ActionRead})
	require.NoError(t, e.Reload(context.Background()))

	ok, _ = e.Check("USER", PageHoliday, ActionRead)
	assert.True(t, ok)
}

func TestReload_KeepsOldPoliciesOnError(t *testing.T) {
	calls := 0
	e, err := NewEnforcer(context.Background(), func(context.Context) ([]Policy, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("db down")
		}
		return seedPolicies(), nil
	}, nil)
	require.NoError(t, err)

	require.Error(t, e.Reload(context.Background()))
	ok, err := e.Check("USER", PageCalendar, ActionRead)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewEnforcer_EmptyPoliciesDenyAll(t *testing.T) {
	e, err := NewEnforcer(context.Background(), func(context.Context) ([]Policy, error) { return nil, nil }, nil)
	require.NoError(t, err)
	ok, err := e.Check("ADMIN", PageCalendar, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPagesFor(t *testing.T) {
	e, _ := newTestEnforcer(t)

	admin, err := e.PagesFor("ADMIN")
	require.NoError(t, err)
	assert.Len(t, admin, len(Pages))

	manager, err := e.PagesFor("MANAGER")
	require.NoError(t, err)
	assert.Equal(t, []PageAccess{
		{Page: PageCalendar, Read: true, Write: true},
		{Page: PageDues, Read: true, Write: true},
	}, manager)

	user, err := e.PagesFor("USER")
	require.NoError(t, err)
	assert.Equal(t, []PageAccess{{Page: PageCalendar, Read: true}}, user)
}

func TestPolicies_FilterAndSort(t *testing.T) {
	e, _ := newTestEnforcer(t)
	got := e.Policies("MANAGER")
	require.Len(t, got, 3)
	assert.Equal(t, PageCalendar, got[0].Page)
	assert.Equal(t, ActionRead, got[0].Action)
	assert.Len(t, e.Policies(""), 6)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidPage(PageDues))
	assert.True(t, ValidPage(Wildcard))
	assert.False(t, ValidPage("nope"))
	assert.True(t, ValidAction(ActionWrite))
	assert.False(t, ValidAction("delete"))
}
