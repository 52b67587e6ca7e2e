package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/analysis"
	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/service"
	"gradcheck/backend/pkg/response"
	"gradcheck/backend/pkg/term"
)

// AnalysisHandler 毕业要求分析与学期视图 HTTP 处理器。
// 每个请求都基于最新成绩单重新计算，不缓存结果。
type AnalysisHandler struct {
	analysisSvc service.AnalysisService
}

// NewAnalysisHandler 创建 AnalysisHandler
func NewAnalysisHandler(analysisSvc service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisSvc: analysisSvc}
}

// Status 毕业判定结果
// GET /api/v1/analysis/status
func (h *AnalysisHandler) Status(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.Result })
}

// General 교양필수 分组完成情况
// GET /api/v1/analysis/general
func (h *AnalysisHandler) General(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.GeneralCoursesStatus() })
}

// Major 已修전공필수/전공선택
// GET /api/v1/analysis/major
func (h *AnalysisHandler) Major(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.MajorCoursesStatus() })
}

// Credits 各类别学分汇总
// GET /api/v1/analysis/credits
func (h *AnalysisHandler) Credits(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.CreditSummary() })
}

// Statistics 전공/교양 完成率
// GET /api/v1/analysis/statistics
func (h *AnalysisHandler) Statistics(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.Statistics() })
}

// Breadth 드볼 领域覆盖
// GET /api/v1/analysis/breadth
func (h *AnalysisHandler) Breadth(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.BreadthView() })
}

// Missing 未修必修（전공필수 + 교양필수 分组）
// GET /api/v1/analysis/missing
func (h *AnalysisHandler) Missing(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.MissingRequiredCourses() })
}

// Roadmap 必修课程路线图
// GET /api/v1/analysis/roadmap
func (h *AnalysisHandler) Roadmap(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.RequiredRoadmap() })
}

// ── 学期视图 ──

// Semesters 已修学期列表
// GET /api/v1/semesters
func (h *AnalysisHandler) Semesters(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.Semesters() })
}

// CoursesBySemester 按学期分组的已修课程，可按类别过滤
// GET /api/v1/semesters/courses?filter=전공
func (h *AnalysisHandler) CoursesBySemester(c *gin.Context) {
	var req dto.SemesterCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	filter := strings.TrimSpace(req.Filter)
	h.respond(c, func(a *analysis.Analysis) any { return a.CoursesBySemester(filter) })
}

// Semester 单个学期明细
// GET /api/v1/semesters/:semester
func (h *AnalysisHandler) Semester(c *gin.Context) {
	sem, ok := semesterParam(c)
	if !ok {
		return
	}
	h.respond(c, func(a *analysis.Analysis) any { return a.Semester(sem) })
}

// SemesterMissing 计划在该学期但未修的전공필수
// GET /api/v1/semesters/:semester/missing
func (h *AnalysisHandler) SemesterMissing(c *gin.Context) {
	sem, ok := semesterParam(c)
	if !ok {
		return
	}
	h.respond(c, func(a *analysis.Analysis) any { return a.SemesterMissingRequired(sem) })
}

// AllMissing 全部未修전공필수
// GET /api/v1/semesters/missing/all
func (h *AnalysisHandler) AllMissing(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.AllMissingRequired() })
}

// MissingTimeline 按计划学期排列的未修전공필수
// GET /api/v1/semesters/missing/timeline
func (h *AnalysisHandler) MissingTimeline(c *gin.Context) {
	h.respond(c, func(a *analysis.Analysis) any { return a.MissingTimeline() })
}

// respond 执行分析并返回 view 的投影
func (h *AnalysisHandler) respond(c *gin.Context, view func(*analysis.Analysis) any) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.analysisSvc.Analyze(c.Request.Context(), userID)
	if err != nil {
		handleAnalysisError(c, err)
		return
	}

	response.OK(c, view(a))
}

// semesterParam 校验路径中的学期标签（"1-2" 或 "기타"）
func semesterParam(c *gin.Context) (string, bool) {
	sem := strings.TrimSpace(c.Param("semester"))
	if sem == term.Other {
		return sem, true
	}
	if _, _, ok := term.Split(sem); !ok {
		response.BadRequest(c, 10001, "学期格式应为 学年-学期，如 1-2")
		return "", false
	}
	return sem, true
}

// handleAnalysisError 分析前置数据缺失统一映射为 404
func handleAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 14001, "用户不存在")
	case errors.Is(err, service.ErrRequirementNotFound):
		response.NotFound(c, 14002, "该专业尚未配置毕业要求")
	case errors.Is(err, service.ErrTranscriptNotFound):
		response.NotFound(c, 14003, "尚未上传成绩单")
	case errors.Is(err, service.ErrTranscriptNotReady):
		response.NotFound(c, 14004, "成绩单尚未解析完成")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
