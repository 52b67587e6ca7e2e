package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/api/middleware"
	"gradcheck/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// JWT 中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

// tokenMeta 当前 Access Token 的 JTI 与过期时间（登出用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenID)
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
