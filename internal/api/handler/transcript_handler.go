package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/api/middleware"
	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/service"
	"gradcheck/backend/pkg/response"
)

// uploadField multipart 表单中的图片字段名
const uploadField = "files"

// TranscriptHandler 成绩单模块 HTTP 处理器
type TranscriptHandler struct {
	transcriptSvc service.TranscriptService
}

// NewTranscriptHandler 创建 TranscriptHandler
func NewTranscriptHandler(transcriptSvc service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcriptSvc: transcriptSvc}
}

// Upload 上传成绩单图片（一页一张），后台异步识别
// POST /api/v1/transcripts
func (h *TranscriptHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		response.BadRequest(c, 10001, "请使用 multipart/form-data 上传")
		return
	}

	headers := form.File[uploadField]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			response.BadRequest(c, 10001, "读取上传文件失败")
			return
		}
		files = append(files, service.UploadFile{Filename: fh.Filename, Reader: f})
	}
	defer closeAll(files)

	result, err := h.transcriptSvc.Upload(c.Request.Context(), userID, files)
	if err != nil {
		h.handleTranscriptError(c, err)
		return
	}

	response.Accepted(c, result)
}

// Status 最近一次上传的识别状态
// GET /api/v1/transcripts/status
func (h *TranscriptHandler) Status(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.transcriptSvc.Status(c.Request.Context(), userID)
	if err != nil {
		h.handleTranscriptError(c, err)
		return
	}

	response.OK(c, result)
}

// Parsed 最近一次上传的识别结果
// GET /api/v1/transcripts/parsed
func (h *TranscriptHandler) Parsed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.transcriptSvc.Parsed(c.Request.Context(), userID)
	if err != nil {
		h.handleTranscriptError(c, err)
		return
	}

	response.OK(c, result)
}

// Retry 重新识别最近一次失败的上传
// POST /api/v1/transcripts/retry
func (h *TranscriptHandler) Retry(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.transcriptSvc.Retry(c.Request.Context(), userID)
	if err != nil {
		h.handleTranscriptError(c, err)
		return
	}

	response.Accepted(c, result)
}

// List 上传历史（新→旧）
// GET /api/v1/transcripts?page=1&page_size=20
func (h *TranscriptHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TranscriptListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.transcriptSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTranscriptError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

func (h *TranscriptHandler) handleTranscriptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTranscriptNotFound):
		response.NotFound(c, 12001, "尚未上传成绩单")
	case errors.Is(err, service.ErrTranscriptNotReady):
		response.Conflict(c, 12002, "成绩单尚未解析完成")
	case errors.Is(err, service.ErrNoFiles):
		response.BadRequest(c, 12003, "请至少上传一张成绩单图片")
	case errors.Is(err, service.ErrTooManyFiles):
		response.BadRequest(c, 12004, "上传图片数量超出限制")
	case errors.Is(err, service.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 12005, "图片大小超出限制")
	case errors.Is(err, service.ErrUnsupportedFile):
		response.Error(c, http.StatusUnsupportedMediaType, 12006, "仅支持 PNG 或 JPEG 图片")
	case errors.Is(err, service.ErrRetryNotAllowed):
		response.Conflict(c, 12007, "只有识别失败的成绩单可以重试")
	case middleware.IsBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
	default:
		response.InternalError(c)
	}
}

func closeAll(files []service.UploadFile) {
	for _, f := range files {
		if cl, ok := f.Reader.(multipart.File); ok {
			_ = cl.Close()
		}
	}
}
