package dto

import (
	"time"

	"gradcheck/backend/internal/model"
)

// ── 成绩单模块 DTO ──

// TranscriptResponse 成绩单状态（不含解析结果）
type TranscriptResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	PageCount    int     `json:"page_count,omitempty"`
	ErrorMessage *string `json:"error_message"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// NewTranscriptResponse model.Transcript → TranscriptResponse
func NewTranscriptResponse(t *model.Transcript) TranscriptResponse {
	return TranscriptResponse{
		ID:           t.TranscriptID,
		Status:       t.Status,
		PageCount:    len(t.Pages),
		ErrorMessage: t.ErrorMessage,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

// ParsedTranscriptResponse 解析结果
type ParsedTranscriptResponse struct {
	ID      string               `json:"id"`
	Status  string               `json:"status"`
	Count   int                  `json:"count"`
	Courses []model.CourseRecord `json:"courses"`
}

// TranscriptListRequest 历史上传列表
type TranscriptListRequest struct {
	PaginationRequest
}
