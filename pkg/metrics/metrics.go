// Package metrics 进程级 Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "porest",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests broken down by route, method and status.",
	}, []string{"route", "method", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "porest",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution for HTTP requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	}, []string{"route", "method"})

	holidaySyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "porest",
		Subsystem: "holiday_sync",
		Name:      "runs_total",
		Help:      "Total number of holiday ICS sync runs broken down by result.",
	}, []string{"result"})

	holidaySyncImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "porest",
		Subsystem: "holiday_sync",
		Name:      "imported_total",
		Help:      "Total number of holidays upserted by ICS sync.",
	})

	authzDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "porest",
		Subsystem: "authz",
		Name:      "denied_total",
		Help:      "Total number of page authority denials.",
	}, []string{"page", "action"})
)

// Middleware 记录请求数与耗时；未匹配路由记为 "unmatched"，避免标签基数膨胀
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 端点
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordHolidaySync 记录一次节假日同步
func RecordHolidaySync(imported int, err error) {
	if err != nil {
		holidaySyncRuns.WithLabelValues("error").Inc()
		return
	}
	holidaySyncRuns.WithLabelValues("ok").Inc()
	holidaySyncImported.Add(float64(imported))
}

// RecordAuthzDenied 记录一次权限拒绝
func RecordAuthzDenied(page, action string) {
	authzDenied.WithLabelValues(page, action).Inc()
}
