package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password"   binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	StudentID string `json:"student_id" binding:"required,min=4,max=20"`
	Name      string `json:"name"       binding:"required,min=1,max=50"`
	Password  string `json:"password"   binding:"required,min=8,max=64"`
	EntryYear int    `json:"entry_year" binding:"required,min=1990,max=2100"`
	Major     string `json:"major"      binding:"required,max=100"`
}
