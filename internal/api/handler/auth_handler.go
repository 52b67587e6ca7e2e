package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/service"
	"gradcheck/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 学生注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 注销当前 Access Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if jti == "" {
		response.Unauthorized(c, 10002, "未认证")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "学号或密码错误")
	case errors.Is(err, service.ErrStudentIDExists):
		response.Conflict(c, 11002, "该学号已注册")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "用户不存在")
	default:
		response.InternalError(c)
	}
}
