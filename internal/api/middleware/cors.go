package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// allowOrigins 为空时仅允许同源访问；包含 "*" 时放开所有来源（不携带凭证）
func CORS(allowOrigins []string) gin.HandlerFunc {
	origins := make([]string, 0, len(allowOrigins))
	wildcard := false
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			wildcard = true
			continue
		}
		origins = append(origins, o)
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        24 * time.Hour,
	}
	if wildcard {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	cfg.AllowCredentials = true
	cfg.AllowOriginFunc = func(origin string) bool { return allowed[origin] }
	return cors.New(cfg)
}
