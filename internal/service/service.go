package service

import (
	"go.uber.org/zap"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/ocr"
	"gradcheck/backend/internal/repository"
	"gradcheck/backend/pkg/jwt"
	"gradcheck/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Transcript  TranscriptService
	Requirement RequirementService
	Analysis    AnalysisService
	Export      ExportService
}

// NewService 创建 Service 聚合；rdb 为 nil 时不启用 token 黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	recognizer ocr.Recognizer,
	queue JobQueue,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	analysisSvc := NewAnalysisService(cfg, repo, logger)
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Transcript:  NewTranscriptService(cfg, repo, recognizer, queue, logger),
		Requirement: NewRequirementService(repo, logger),
		Analysis:    analysisSvc,
		Export:      NewExportService(cfg, analysisSvc, logger),
	}
}
