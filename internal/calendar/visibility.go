package calendar

// Entry 单个用户或类别的显示状态
type Entry struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

// Visibility 日历筛选状态快照
//
// 所有操作都返回新值，不修改接收者。三个汇总字段始终由成员重新推导：
//   - AllUsers     == AND(Users)
//   - AllCalendars == AND(Calendars)
//   - All          == AllUsers && AllCalendars
type Visibility struct {
	Users        []Entry `json:"users"`
	Calendars    []Entry `json:"calendars"`
	AllUsers     bool    `json:"all_users"`
	AllCalendars bool    `json:"all_calendars"`
	All          bool    `json:"all"`
}

// NewVisibility 以全部可见初始化
func NewVisibility(userIDs, calendarIDs []string) Visibility {
	return Visibility{}.ResetUsers(userIDs).ResetCalendars(calendarIDs)
}

// ResetUsers 重置用户列表，全部可见
func (v Visibility) ResetUsers(ids []string) Visibility {
	out := v.clone()
	out.Users = seed(ids)
	return out.derive()
}

// ResetCalendars 重置类别列表，全部可见
func (v Visibility) ResetCalendars(ids []string) Visibility {
	out := v.clone()
	out.Calendars = seed(ids)
	return out.derive()
}

// ToggleUser 切换单个用户，未知 id 不做改变
func (v Visibility) ToggleUser(id string) Visibility {
	out := v.clone()
	toggle(out.Users, id)
	return out.derive()
}

// ToggleCalendar 切换单个类别，未知 id 不做改变
func (v Visibility) ToggleCalendar(id string) Visibility {
	out := v.clone()
	toggle(out.Calendars, id)
	return out.derive()
}

// ToggleAllUsers 所有用户统一设为 !AllUsers
func (v Visibility) ToggleAllUsers() Visibility {
	out := v.clone()
	setAll(out.Users, !v.AllUsers)
	return out.derive()
}

// ToggleAllCalendars 所有类别统一设为 !AllCalendars
func (v Visibility) ToggleAllCalendars() Visibility {
	out := v.clone()
	setAll(out.Calendars, !v.AllCalendars)
	return out.derive()
}

// ToggleAll 两组全部设为 !All
func (v Visibility) ToggleAll() Visibility {
	out := v.clone()
	target := !v.All
	setAll(out.Users, target)
	setAll(out.Calendars, target)
	return out.derive()
}

// UserVisible 用户是否可见，未登记的用户视为可见
func (v Visibility) UserVisible(id string) bool {
	return lookup(v.Users, id)
}

// CalendarVisible 类别是否可见，未登记的类别视为可见
func (v Visibility) CalendarVisible(id string) bool {
	return lookup(v.Calendars, id)
}

// Consistent 汇总字段是否与成员一致
func (v Visibility) Consistent() bool {
	d := v.clone().derive()
	return d.AllUsers == v.AllUsers && d.AllCalendars == v.AllCalendars && d.All == v.All
}

func (v Visibility) clone() Visibility {
	out := v
	out.Users = append([]Entry(nil), v.Users...)
	out.Calendars = append([]Entry(nil), v.Calendars...)
	return out
}

func (v Visibility) derive() Visibility {
	v.AllUsers = every(v.Users)
	v.AllCalendars = every(v.Calendars)
	v.All = v.AllUsers && v.AllCalendars
	return v
}

func seed(ids []string) []Entry {
	entries := make([]Entry, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		entries = append(entries, Entry{ID: id, Visible: true})
	}
	return entries
}

func toggle(entries []Entry, id string) {
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Visible = !entries[i].Visible
			return
		}
	}
}

func setAll(entries []Entry, visible bool) {
	for i := range entries {
		entries[i].Visible = visible
	}
}

func every(entries []Entry) bool {
	for _, e := range entries {
		if !e.Visible {
			return false
		}
	}
	return true
}

func lookup(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return e.Visible
		}
	}
	return true
}
