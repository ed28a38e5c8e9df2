package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/ping/:id", "GET", "204"))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/"+string(rune('a'+i)), nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, before+3, testutil.ToFloat64(httpRequests.WithLabelValues("/ping/:id", "GET", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "porest_http_requests_total"))
}

func TestRecordHolidaySync(t *testing.T) {
	okBefore := testutil.ToFloat64(holidaySyncRuns.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(holidaySyncRuns.WithLabelValues("error"))
	importedBefore := testutil.ToFloat64(holidaySyncImported)

	RecordHolidaySync(4, nil)
	RecordHolidaySync(0, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(holidaySyncRuns.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(holidaySyncRuns.WithLabelValues("error")))
	assert.Equal(t, importedBefore+4, testutil.ToFloat64(holidaySyncImported))
}
