// Package response 统一的 {code, message, data} 响应封装
package response

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// RequestIDKey 请求追踪 ID 在 gin.Context 中的键；错误响应会带上它
const RequestIDKey = "request_id"

// Response 统一响应结构
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       any        `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// ── 成功响应 ──

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Code: 0, Message: "success", Data: data})
}

// OK 200
func OK(c *gin.Context, data any) { success(c, http.StatusOK, data) }

// Created 201
func Created(c *gin.Context, data any) { success(c, http.StatusCreated, data) }

// Accepted 202 已受理，结果由后台任务产生
func Accepted(c *gin.Context, data any) { success(c, http.StatusAccepted, data) }

// OKPage 200 分页
func OKPage(c *gin.Context, list any, total int64, page, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	success(c, http.StatusOK, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Attachment 200 文件下载；文件名按 RFC 5987 编码以支持韩文
func Attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	ErrorWithDetails(c, httpStatus, code, message, "")
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: c.GetString(RequestIDKey),
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
