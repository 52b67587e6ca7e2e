package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/api/handler"
	"gradcheck/backend/internal/api/middleware"
	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/jwt"
	"gradcheck/backend/pkg/redis"
)

// jsonBodyLimit 非上传接口的请求体上限
const jsonBodyLimit = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rl := cfg.Server.RateLimit
	authLimit := middleware.RateLimit(rdb, "auth", rl.Requests, rl.Window)
	uploadRateLimit := middleware.RateLimit(rdb, "ocr", rl.Requests, rl.Window)
	jsonLimit := middleware.BodyLimit(jsonBodyLimit)
	// 多页上传：单页上限 × 页数，再留 1MB 给 multipart 头
	uploadLimit := middleware.BodyLimit(cfg.Upload.MaxBytes*int64(max(cfg.Upload.MaxFiles, 1)) + jsonBodyLimit)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth", jsonLimit)
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 成绩单模块
			transcripts := authorized.Group("/transcripts")
			{
				transcripts.POST("", uploadRateLimit, uploadLimit, h.Transcript.Upload)
				transcripts.GET("", h.Transcript.List)
				transcripts.GET("/status", h.Transcript.Status)
				transcripts.GET("/parsed", h.Transcript.Parsed)
				transcripts.POST("/retry", uploadRateLimit, h.Transcript.Retry)
			}

			// 毕业要求模块
			requirements := authorized.Group("/requirements")
			{
				requirements.GET("", h.Requirement.ListMajors)
				requirements.GET("/:major", h.Requirement.Get)
				requirements.PUT("/:major", adminOnly, jsonLimit, h.Requirement.Upsert)
				requirements.POST("/:major/import", adminOnly, uploadLimit, h.Requirement.Import)
			}

			// 分析模块
			analysis := authorized.Group("/analysis")
			{
				analysis.GET("/status", h.Analysis.Status)
				analysis.GET("/general", h.Analysis.General)
				analysis.GET("/major", h.Analysis.Major)
				analysis.GET("/credits", h.Analysis.Credits)
				analysis.GET("/statistics", h.Analysis.Statistics)
				analysis.GET("/breadth", h.Analysis.Breadth)
				analysis.GET("/missing", h.Analysis.Missing)
				analysis.GET("/roadmap", h.Analysis.Roadmap)
				analysis.GET("/export.xlsx", h.Export.ExportXLSX)
				analysis.GET("/export.pdf", h.Export.ExportPDF)
			}

			// 学期视图
			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Analysis.Semesters)
				semesters.GET("/courses", h.Analysis.CoursesBySemester)
				semesters.GET("/missing/all", h.Analysis.AllMissing)
				semesters.GET("/missing/timeline", h.Analysis.MissingTimeline)
				semesters.GET("/:semester", h.Analysis.Semester)
				semesters.GET("/:semester/missing", h.Analysis.SemesterMissing)
			}
		}
	}

	return r
}
