package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/pkg/jwt"
	"gradcheck/backend/pkg/redis"
	"gradcheck/backend/pkg/response"
)

// 上下文键
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxMajor    = "major"
	CtxTokenID  = "jti"
	CtxTokenExp = "token_exp"
)

// JWTAuth 认证中间件
// 从 Authorization: Bearer <token> 中提取并校验 Access Token；
// rdb 非 nil 时检查注销黑名单，Redis 故障时降级放行
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxMajor, claims.Major)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth 角色权限中间件，需挂在 JWTAuth 之后
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(CtxRole)
		if userRole == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
