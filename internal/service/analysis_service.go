package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/analysis"
	"gradcheck/backend/internal/repository"
)

// AnalysisService 毕业要求分析业务接口
//
// 每次调用都重新读取最新成绩单与毕业要求并完整计算，不缓存结果。
// 报表视图由 handler 在返回的 *analysis.Analysis 上投影。
type AnalysisService interface {
	Analyze(ctx context.Context, userID string) (*analysis.Analysis, error)
}

type analysisService struct {
	repo   *repository.Repository
	policy analysis.Policy
	logger *zap.Logger
}

// NewAnalysisService 创建 AnalysisService 实例
func NewAnalysisService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AnalysisService {
	return &analysisService{
		repo:   repo,
		policy: PolicyFromConfig(cfg.Analysis),
		logger: logger,
	}
}

// PolicyFromConfig 드볼 判定参数，未配置项取默认值
func PolicyFromConfig(c config.AnalysisConfig) analysis.Policy {
	p := analysis.DefaultPolicy()
	if c.BreadthMinAreas > 0 {
		p.MinAreas = c.BreadthMinAreas
	}
	if c.BreadthExceptionCredit > 0 {
		p.ExceptionCredit = c.BreadthExceptionCredit
	}
	if c.BreadthExceptionAreaCredit > 0 {
		p.ExceptionAreaCredit = c.BreadthExceptionAreaCredit
	}
	return p
}

func (s *analysisService) Analyze(ctx context.Context, userID string) (*analysis.Analysis, error) {
	// 1. 用户 → 专业
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 专业 → 毕业要求
	req, err := s.repo.Requirement.GetByMajor(ctx, user.Major)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询毕业要求失败", zap.String("major", user.Major), zap.Error(err))
		return nil, err
	}

	// 3. 最新成绩单
	transcript, err := s.repo.Transcript.LatestByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTranscriptNotFound
		}
		s.logger.Error("查询成绩单失败", zap.Error(err))
		return nil, err
	}
	if !transcript.Ready() {
		return nil, ErrTranscriptNotReady
	}

	// 4. 过滤 F / 重修后计算
	courses := analysis.FilterCountable(transcript.ParsedData)
	a := analysis.New(courses, req, s.policy)

	s.logger.Debug("毕业要求分析完成",
		zap.String("user_id", userID),
		zap.String("major", user.Major),
		zap.Int("courses", len(courses)),
		zap.String("status", a.Result.GraduationStatus),
	)
	return a, nil
}
