package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/repository"
	"gradcheck/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("学号或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrStudentIDExists    = errors.New("该学号已注册")
)

// TokenBlacklist 已注销 token 的黑名单（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 token 的 JTI 加入黑名单直到其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时注销只在客户端生效
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	// 1. 学号唯一
	_, err := s.repo.User.GetByStudentID(ctx, req.StudentID)
	if err == nil {
		return nil, ErrStudentIDExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		StudentID:    req.StudentID,
		Name:         req.Name,
		PasswordHash: string(hash),
		EntryYear:    req.EntryYear,
		Major:        req.Major,
		Role:         model.RoleStudent,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("新用户注册",
		zap.String("user_id", user.UserID),
		zap.String("major", user.Major),
	)
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByStudentID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, user.Major)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("写入 token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}
