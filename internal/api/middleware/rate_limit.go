package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/pkg/redis"
	"gradcheck/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的限流中间件
// scope 相同的路由共享同一计数（如注册与登录都计入 "auth"），scope 为空时按路由计数。
// 已认证请求按 user_id 计数，否则按客户端 IP。
// rdb 为 nil 或 limit<=0 时不限流；Redis 出错时降级放行。
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		bucket := scope
		if bucket == "" {
			bucket = c.FullPath()
		}
		who := c.GetString(CtxUserID)
		if who == "" {
			who = "ip:" + c.ClientIP()
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), "rate_limit:"+bucket+":"+who, limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter)
		response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
		c.Abort()
	}
}
