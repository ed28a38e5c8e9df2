package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"porest/backend/internal/calendar"
	"porest/backend/internal/dto"
	"porest/backend/internal/service"
	"porest/backend/pkg/authz"
	pkgerrors "porest/backend/pkg/errors"
	"porest/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock DepartmentService ──

type mockDepartmentService struct {
	listResult   []dto.DepartmentDetailResponse
	updateResult *dto.DepartmentDetailResponse
	err          error
}

func (m *mockDepartmentService) Create(_ context.Context, _ *dto.CreateDepartmentRequest, _ string) (*dto.DepartmentDetailResponse, error) {
	return m.updateResult, m.err
}
func (m *mockDepartmentService) GetByID(_ context.Context, _ string) (*dto.DepartmentDetailResponse, error) {
	return m.updateResult, m.err
}
func (m *mockDepartmentService) List(_ context.Context, _ *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error) {
	return m.listResult, m.err
}
func (m *mockDepartmentService) Update(_ context.Context, _ string, _ *dto.UpdateDepartmentRequest, _ string) (*dto.DepartmentDetailResponse, error) {
	return m.updateResult, m.err
}
func (m *mockDepartmentService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}

// ── Mock UserService ──

type mockUserService struct {
	listResult   []dto.UserResponse
	listTotal    int64
	getResult    *dto.UserResponse
	importResult *dto.ImportUserResponse
	parsed       bool
	err          error
}

func (m *mockUserService) CreateUser(_ context.Context, _ *dto.CreateUserRequest, _ string) (*dto.CreateUserResponse, error) {
	return &dto.CreateUserResponse{User: m.getResult}, m.err
}
func (m *mockUserService) GetByID(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.err
}
func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return m.listResult, m.listTotal, m.err
}
func (m *mockUserService) Update(_ context.Context, _ string, _ *dto.UpdateUserRequest, _, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.err
}
func (m *mockUserService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}
func (m *mockUserService) AssignRole(_ context.Context, _ string, _ *dto.AssignRoleRequest, _ string) error {
	return m.err
}
func (m *mockUserService) ResetPassword(_ context.Context, _ string, _ string) (*dto.ResetPasswordResponse, error) {
	return &dto.ResetPasswordResponse{TempPassword: "tmp"}, m.err
}
func (m *mockUserService) ParseImportFile(_ io.Reader) ([]service.ImportUserRow, error) {
	m.parsed = true
	return []service.ImportUserRow{{Row: 2}}, nil
}
func (m *mockUserService) ImportUsers(_ context.Context, _ []service.ImportUserRow, _ string) (*dto.ImportUserResponse, error) {
	return m.importResult, m.err
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	icsData  []byte
	filename string
	err      error
}

func (m *mockScheduleService) Create(_ context.Context, _ *dto.CreateScheduleRequest, _, _ string) (*dto.ScheduleResponse, error) {
	return &dto.ScheduleResponse{}, m.err
}
func (m *mockScheduleService) GetByID(_ context.Context, _ string) (*dto.ScheduleResponse, error) {
	return &dto.ScheduleResponse{}, m.err
}
func (m *mockScheduleService) List(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	return nil, m.err
}
func (m *mockScheduleService) Update(_ context.Context, _ string, _ *dto.UpdateScheduleRequest, _, _ string) (*dto.ScheduleResponse, error) {
	return &dto.ScheduleResponse{}, m.err
}
func (m *mockScheduleService) Delete(_ context.Context, _ string, _, _ string) error {
	return m.err
}
func (m *mockScheduleService) ExportICS(_ context.Context, _ *dto.ScheduleListRequest) ([]byte, string, error) {
	return m.icsData, m.filename, m.err
}

// ── Mock AuthorityService ──

type mockAuthorityService struct {
	mineRole string
	err      error
}

func (m *mockAuthorityService) ListByRole(_ context.Context, _ string) ([]dto.RoleAuthoritiesResponse, error) {
	return nil, m.err
}
func (m *mockAuthorityService) Replace(_ context.Context, role string, _ *dto.ReplaceAuthoritiesRequest, _ string) (*dto.RoleAuthoritiesResponse, error) {
	return &dto.RoleAuthoritiesResponse{Role: role}, m.err
}
func (m *mockAuthorityService) Mine(_ context.Context, role string) (*dto.MyAuthoritiesResponse, error) {
	m.mineRole = role
	return &dto.MyAuthoritiesResponse{Role: role, Pages: []authz.PageAccess{}}, m.err
}

// ── Mock CalendarService ──

type mockCalendarService struct {
	toggledKind string
	toggledID   string
	err         error
}

func (m *mockCalendarService) Events(_ context.Context, _ string, _ *dto.CalendarEventsRequest) (*dto.CalendarEventsResponse, error) {
	return &dto.CalendarEventsResponse{}, m.err
}
func (m *mockCalendarService) Categories() []calendar.Category {
	return calendar.All()
}
func (m *mockCalendarService) Visibility(_ context.Context, _ string) (calendar.Visibility, error) {
	return calendar.Visibility{}, m.err
}
func (m *mockCalendarService) Toggle(_ context.Context, _ string, kind, id string) (calendar.Visibility, error) {
	m.toggledKind, m.toggledID = kind, id
	return calendar.Visibility{}, m.err
}
func (m *mockCalendarService) Reset(_ context.Context, _ string, _ *dto.ResetVisibilityRequest) (calendar.Visibility, error) {
	return calendar.Visibility{}, m.err
}

// ── Mock GanttService ──

type mockGanttService struct {
	err error
}

func (m *mockGanttService) Layout(_ context.Context, _ *dto.GanttLayoutRequest) (*dto.GanttLayoutResponse, error) {
	return &dto.GanttLayoutResponse{}, m.err
}
func (m *mockGanttService) DateAt(_ context.Context, _ *dto.GanttDateAtRequest) (*dto.GanttDateAtResponse, error) {
	return &dto.GanttDateAtResponse{Date: "2025-01-01"}, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "ADMIN")
	c.Set("department_id", "")
}

// withAuth 注入认证信息后调用 handler
func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(method, route, target string, body io.Reader, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, handler)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// Context Helper Tests
// ═══════════════════════════════════════════════════════════

func TestMustGetUserID_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	w := serve("GET", "/users/me", "/users/me", nil, h.GetCurrentUser)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("expected code 10002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DepartmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDepartmentHandler_List_SetsCount(t *testing.T) {
	mock := &mockDepartmentService{listResult: []dto.DepartmentDetailResponse{{ID: "a"}, {ID: "b"}}}
	h := NewDepartmentHandler(mock)

	w := serve("GET", "/departments", "/departments", nil, h.ListDepartments)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != response.CodeSuccess || resp.Count == nil || *resp.Count != 2 {
		t.Errorf("expected code 200 and count 2, got %+v", resp)
	}
}

func TestDepartmentHandler_Update_Cycle(t *testing.T) {
	h := NewDepartmentHandler(&mockDepartmentService{err: service.ErrDepartmentCycle})

	w := serve("PUT", "/departments/:id", "/departments/dept-1", jsonBody(map[string]any{"version": 1}), withAuth(h.UpdateDepartment))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12005 {
		t.Errorf("expected code 12005, got %d", resp.Code)
	}
}

func TestDepartmentHandler_Update_OptimisticLock(t *testing.T) {
	h := NewDepartmentHandler(&mockDepartmentService{err: pkgerrors.ErrOptimisticLock})

	w := serve("PUT", "/departments/:id", "/departments/dept-1", jsonBody(map[string]any{"version": 1}), withAuth(h.UpdateDepartment))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestDepartmentHandler_Update_MissingVersion(t *testing.T) {
	h := NewDepartmentHandler(&mockDepartmentService{})

	w := serve("PUT", "/departments/:id", "/departments/dept-1", jsonBody(map[string]any{"name": "x"}), withAuth(h.UpdateDepartment))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_List_CountIsTotal(t *testing.T) {
	mock := &mockUserService{listResult: []dto.UserResponse{{ID: "u1"}}, listTotal: 42}
	h := NewUserHandler(mock)

	w := serve("GET", "/users", "/users?page=1&page_size=1", nil, withAuth(h.ListUsers))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Count == nil || *resp.Count != 42 {
		t.Errorf("expected count 42, got %v", resp.Count)
	}
}

func TestUserHandler_Update_NoPermission(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrNoPermission})

	w := serve("PUT", "/users/:id", "/users/u2", jsonBody(map[string]any{"version": 1}), withAuth(h.UpdateUser))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func newUploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("content"))
	mw.Close()

	req := httptest.NewRequest("POST", "/users/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUserHandler_Import_RejectsNonXLSX(t *testing.T) {
	mock := &mockUserService{}
	h := NewUserHandler(mock)

	r := gin.New()
	r.POST("/users/import", withAuth(h.ImportUsers))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, "users.csv"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.parsed {
		t.Error("expected file not to be parsed")
	}
}

func TestUserHandler_Import_Success(t *testing.T) {
	mock := &mockUserService{importResult: &dto.ImportUserResponse{Total: 1, Success: 1}}
	h := NewUserHandler(mock)

	r := gin.New()
	r.POST("/users/import", withAuth(h.ImportUsers))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, "users.XLSX"))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !mock.parsed {
		t.Error("expected file to be parsed")
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_ExportICS(t *testing.T) {
	mock := &mockScheduleService{icsData: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), filename: "schedules_20250101_20250131.ics"}
	h := NewScheduleHandler(mock)

	w := serve("GET", "/schedules/export.ics", "/schedules/export.ics?start=2025-01-01&end=2025-01-31", nil, withAuth(h.ExportICS))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "schedules_20250101_20250131.ics") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

func TestScheduleHandler_List_MissingRange(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	w := serve("GET", "/schedules", "/schedules?start=2025-01-01", nil, withAuth(h.ListSchedules))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_Create_InvalidCategory(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{err: service.ErrScheduleCategoryInvalid})

	w := serve("POST", "/schedules", "/schedules", jsonBody(dto.CreateScheduleRequest{
		Category: "PARTY",
		Title:    "x",
		StartAt:  "2025-01-01T09:00:00+09:00",
		EndAt:    "2025-01-01T10:00:00+09:00",
	}), withAuth(h.CreateSchedule))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14002 {
		t.Errorf("expected code 14002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthorityHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthorityHandler_Mine_UsesCallerRole(t *testing.T) {
	mock := &mockAuthorityService{}
	h := NewAuthorityHandler(mock)

	w := serve("GET", "/authorities/me", "/authorities/me", nil, withAuth(h.Mine))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.mineRole != "ADMIN" {
		t.Errorf("expected role ADMIN, got %s", mock.mineRole)
	}
}

func TestAuthorityHandler_Replace_AdminLockout(t *testing.T) {
	h := NewAuthorityHandler(&mockAuthorityService{err: service.ErrAuthorityAdminLockout})

	w := serve("PUT", "/authorities/:role", "/authorities/ADMIN", jsonBody(dto.ReplaceAuthoritiesRequest{
		Items: []dto.AuthorityItem{{Page: "calendar", Action: "read"}},
	}), withAuth(h.ReplaceAuthorities))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 17003 {
		t.Errorf("expected code 17003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// Calendar / Gantt Handler Tests
// ═══════════════════════════════════════════════════════════

func TestCalendarHandler_ToggleRoutes(t *testing.T) {
	cases := []struct {
		route, target string
		handler       func(h *CalendarHandler) gin.HandlerFunc
		kind, id      string
	}{
		{"/v/users/:id", "/v/users/u1", func(h *CalendarHandler) gin.HandlerFunc { return h.ToggleUser }, service.ToggleUser, "u1"},
		{"/v/calendars/:code", "/v/calendars/DAYOFF", func(h *CalendarHandler) gin.HandlerFunc { return h.ToggleCalendar }, service.ToggleCalendar, "DAYOFF"},
		{"/v/users", "/v/users", func(h *CalendarHandler) gin.HandlerFunc { return h.ToggleAllUsers }, service.ToggleAllUsers, ""},
		{"/v/calendars", "/v/calendars", func(h *CalendarHandler) gin.HandlerFunc { return h.ToggleAllCalendars }, service.ToggleAllCalendars, ""},
		{"/v", "/v", func(h *CalendarHandler) gin.HandlerFunc { return h.ToggleAll }, service.ToggleAll, ""},
	}
	for _, tc := range cases {
		mock := &mockCalendarService{}
		h := NewCalendarHandler(mock)

		w := serve("PUT", tc.route, tc.target, nil, withAuth(tc.handler(h)))

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tc.target, w.Code)
		}
		if mock.toggledKind != tc.kind || mock.toggledID != tc.id {
			t.Errorf("%s: expected %s/%s, got %s/%s", tc.target, tc.kind, tc.id, mock.toggledKind, mock.toggledID)
		}
	}
}

func TestCalendarHandler_Categories(t *testing.T) {
	h := NewCalendarHandler(&mockCalendarService{})

	w := serve("GET", "/calendar/categories", "/calendar/categories", nil, h.Categories)

	resp := parseResponse(w)
	if resp.Count == nil || int(*resp.Count) != len(calendar.Codes()) {
		t.Errorf("expected count %d, got %v", len(calendar.Codes()), resp.Count)
	}
}

func TestGanttHandler_DateAt_InvalidRange(t *testing.T) {
	h := NewGanttHandler(&mockGanttService{})

	w := serve("GET", "/gantt/date-at", "/gantt/date-at?range=weekly&x=10", nil, h.DateAt)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGanttHandler_Layout_SpanTooLarge(t *testing.T) {
	h := NewGanttHandler(&mockGanttService{err: service.ErrGanttSpanTooLarge})

	w := serve("POST", "/gantt/layout", "/gantt/layout", jsonBody(map[string]any{"range": "monthly"}), h.Layout)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 18102 {
		t.Errorf("expected code 18102, got %d", resp.Code)
	}
}
