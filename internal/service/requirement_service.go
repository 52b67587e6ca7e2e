package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/repository"
)

var (
	ErrRequirementNotFound = errors.New("该专业尚未配置毕业要求")
	ErrInvalidMajor        = errors.New("专业名称不能为空")
)

// RequirementService 毕业要求目录业务接口
type RequirementService interface {
	Get(ctx context.Context, major string) (*model.GraduationRequirement, error)
	Upsert(ctx context.Context, major string, req *dto.RequirementRequest) (*model.GraduationRequirement, error)
	// Import 从 xlsx 导入并整体覆盖该专业的毕业要求
	Import(ctx context.Context, major string, r io.Reader) (*model.GraduationRequirement, error)
	ListMajors(ctx context.Context) ([]string, error)
}

type requirementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRequirementService 创建 RequirementService 实例
func NewRequirementService(repo *repository.Repository, logger *zap.Logger) RequirementService {
	return &requirementService{repo: repo, logger: logger}
}

func (s *requirementService) Get(ctx context.Context, major string) (*model.GraduationRequirement, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return nil, ErrInvalidMajor
	}
	req, err := s.repo.Requirement.GetByMajor(ctx, major)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询毕业要求失败", zap.String("major", major), zap.Error(err))
		return nil, err
	}
	return req, nil
}

func (s *requirementService) Upsert(ctx context.Context, major string, req *dto.RequirementRequest) (*model.GraduationRequirement, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return nil, ErrInvalidMajor
	}
	return s.save(ctx, req.ToModel(major))
}

func (s *requirementService) Import(ctx context.Context, major string, r io.Reader) (*model.GraduationRequirement, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return nil, ErrInvalidMajor
	}
	req, err := ParseRequirementWorkbook(major, r)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req)
}

func (s *requirementService) save(ctx context.Context, req *model.GraduationRequirement) (*model.GraduationRequirement, error) {
	if err := s.repo.Requirement.Upsert(ctx, req); err != nil {
		s.logger.Error("保存毕业要求失败", zap.String("major", req.Major), zap.Error(err))
		return nil, err
	}
	s.logger.Info("毕业要求已更新",
		zap.String("major", req.Major),
		zap.Int("breadth_areas", len(req.AreaNames())),
	)
	return req, nil
}

func (s *requirementService) ListMajors(ctx context.Context) ([]string, error) {
	majors, err := s.repo.Requirement.ListMajors(ctx)
	if err != nil {
		s.logger.Error("查询专业列表失败", zap.Error(err))
		return nil, err
	}
	if majors == nil {
		majors = []string{}
	}
	return majors, nil
}
