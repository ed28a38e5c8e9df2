package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHolidaysSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/holidays/sync", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"success","data":{"fetched":3,"created":2,"updated":1,"skipped":0}}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "holidays", "sync", "--base-url", srv.URL+"/api/v1", "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, `"created": 2`)
}

func TestHolidaysSync_BusinessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":10003,"message":"权限不足"}`))
	}))
	defer srv.Close()

	_, err := runCmd(t, "holidays", "sync", "--base-url", srv.URL, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "权限不足")
}

func TestDuesExport(t *testing.T) {
	payload := []byte("PK\x03\x04fake-xlsx")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dues/export", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "dues.xlsx")
	out, err := runCmd(t, "dues", "export", "--year", "2025", "--out", target, "--base-url", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, target)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRequiresToken(t *testing.T) {
	t.Setenv("POREST_TOKEN", "")
	_, err := runCmd(t, "holidays", "sync", "--base-url", "http://localhost:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token")
}

func TestMigrateDown_RejectsZeroSteps(t *testing.T) {
	_, err := runCmd(t, "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}
