package dto

// ── 分析模块 DTO ──

// SemesterCoursesRequest GET /semesters/courses 查询参数
type SemesterCoursesRequest struct {
	// Filter 类别过滤：전공/교양/드볼/... 或类别 key；为空返回全部
	Filter string `form:"filter" binding:"omitempty,max=50"`
}
