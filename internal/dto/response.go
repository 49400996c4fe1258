package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// ── 人员模块响应 ──

// UserResponse 人员信息（脱敏）
type UserResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	IsAdmin      bool    `json:"is_admin"`
	Category     string  `json:"category"`
	WagePerUnit  float64 `json:"wage_per_unit"`
	WagePerUnit7 float64 `json:"wage_per_unit_7"`
}

// UserCreatedResponse 新建人员响应，InitialPassword 仅在本次返回
type UserCreatedResponse struct {
	User            UserResponse `json:"user"`
	InitialPassword string       `json:"initial_password,omitempty"`
}

// ResetPasswordResponse 重置口令响应
type ResetPasswordResponse struct {
	Password string `json:"password"`
}
