package dto

import "gradcheck/backend/internal/model"

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	EntryYear int    `json:"entry_year"`
	Major     string `json:"major"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NewUserResponse model.User → UserResponse
func NewUserResponse(u *model.User) UserResponse {
	resp := UserResponse{
		ID:        u.UserID,
		StudentID: u.StudentID,
		Name:      u.Name,
		EntryYear: u.EntryYear,
		Major:     u.Major,
		Role:      u.Role,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}
