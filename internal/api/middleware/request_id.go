package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gradcheck/backend/pkg/response"
)

// CtxRequestID 请求追踪 ID 的上下文键
const CtxRequestID = response.RequestIDKey

// requestIDMaxLen 外部传入 ID 的最大长度，超出则重新生成
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 优先沿用 X-Request-ID 请求头，缺失或过长时生成 UUID，并回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.NewString()
		}

		c.Set(CtxRequestID, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
