package dto

// ── 人员模块 DTO ──

// CreateUserRequest 新建人员。Password 为空时按 3+3 规则生成初始口令。
type CreateUserRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"            binding:"required"`
	Email        string  `json:"email"           binding:"required,email"`
	Role         string  `json:"role"            binding:"required,oneof=ADMIN INSTRUCTOR LEADER"`
	IsAdmin      bool    `json:"is_admin"`
	Category     string  `json:"category"        binding:"required,oneof=Schwimmlehrer:in Helfer:in"`
	WagePerUnit  float64 `json:"wage_per_unit"   binding:"gte=0"`
	WagePerUnit7 float64 `json:"wage_per_unit_7" binding:"gte=0"`
	Password     string  `json:"password"`
}

// UpdateUserRequest 更新人员（口令单独通过重置接口修改）
type UpdateUserRequest struct {
	Name         string  `json:"name"            binding:"required"`
	Email        string  `json:"email"           binding:"required,email"`
	Role         string  `json:"role"            binding:"required,oneof=ADMIN INSTRUCTOR LEADER"`
	IsAdmin      bool    `json:"is_admin"`
	Category     string  `json:"category"        binding:"required,oneof=Schwimmlehrer:in Helfer:in"`
	WagePerUnit  float64 `json:"wage_per_unit"   binding:"gte=0"`
	WagePerUnit7 float64 `json:"wage_per_unit_7" binding:"gte=0"`
}
