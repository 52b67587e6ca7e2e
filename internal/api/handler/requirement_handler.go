package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/service"
	"gradcheck/backend/pkg/response"
)

// importField 毕业要求 xlsx 的 multipart 字段名
const importField = "file"

// RequirementHandler 毕业要求模块 HTTP 处理器
type RequirementHandler struct {
	requirementSvc service.RequirementService
}

// NewRequirementHandler 创建 RequirementHandler
func NewRequirementHandler(requirementSvc service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirementSvc: requirementSvc}
}

// ListMajors 已配置毕业要求的专业列表
// GET /api/v1/requirements
func (h *RequirementHandler) ListMajors(c *gin.Context) {
	majors, err := h.requirementSvc.ListMajors(c.Request.Context())
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}
	response.OK(c, majors)
}

// Get 查询专业毕业要求
// GET /api/v1/requirements/:major
func (h *RequirementHandler) Get(c *gin.Context) {
	req, err := h.requirementSvc.Get(c.Request.Context(), c.Param("major"))
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}
	response.OK(c, req)
}

// Upsert 整体写入专业毕业要求（管理员）
// PUT /api/v1/requirements/:major
func (h *RequirementHandler) Upsert(c *gin.Context) {
	var body dto.RequirementRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	req, err := h.requirementSvc.Upsert(c.Request.Context(), c.Param("major"), &body)
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}
	response.OK(c, req)
}

// Import 从 xlsx 导入专业毕业要求（管理员）
// POST /api/v1/requirements/:major/import
func (h *RequirementHandler) Import(c *gin.Context) {
	fh, err := c.FormFile(importField)
	if err != nil {
		response.BadRequest(c, 10001, "请上传 xlsx 文件")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "读取上传文件失败")
		return
	}
	defer f.Close()

	req, err := h.requirementSvc.Import(c.Request.Context(), c.Param("major"), f)
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}
	response.OK(c, req)
}

func (h *RequirementHandler) handleRequirementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequirementNotFound):
		response.NotFound(c, 13001, "该专业尚未配置毕业要求")
	case errors.Is(err, service.ErrInvalidMajor):
		response.BadRequest(c, 13002, "专业名称不能为空")
	case errors.Is(err, service.ErrImportFormat):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13003, "毕业要求表格格式错误", err.Error())
	default:
		response.InternalError(c)
	}
}
