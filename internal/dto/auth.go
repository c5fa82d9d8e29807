package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// 首次登录即注册：邮箱不存在时自动创建用户。
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	FullName   string `json:"full_name"   binding:"required,min=1,max=100"`
	Passcode   string `json:"passcode"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	EmployeeID string `json:"employee_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}
