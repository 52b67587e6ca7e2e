package handler

import "gradcheck/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Transcript  *TranscriptHandler
	Requirement *RequirementHandler
	Analysis    *AnalysisHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Transcript:  NewTranscriptHandler(svc.Transcript),
		Requirement: NewRequirementHandler(svc.Requirement),
		Analysis:    NewAnalysisHandler(svc.Analysis),
		Export:      NewExportHandler(svc.Export),
	}
}
