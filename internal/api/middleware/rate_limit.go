package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"porest/backend/config"
	"porest/backend/pkg/redis"
	"porest/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 已认证请求按用户计数，其余按客户端 IP；rdb 为 nil 或未配置上限时放行
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if userID := c.GetString("user_id"); userID != "" {
			subject = "user:" + userID
		}
		key := "rate_limit:" + subject + ":" + c.FullPath()

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			// Redis 出错时降级放行
			logger.Warn("限流检查失败", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
