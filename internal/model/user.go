package model

// 角色
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleLeader     = "LEADER"
)

// 人员类别：A 类计入 required_instructors，B 类计入 required_helpers
const (
	CategoryInstructor = "Schwimmlehrer:in"
	CategoryHelper     = "Helfer:in"
)

// User 教练/工作人员表，对应 instructors
type User struct {
	UserID       string  `gorm:"type:varchar(64);primaryKey"               json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"    json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'INSTRUCTOR'" json:"role"`
	IsAdmin      bool    `gorm:"not null;default:false"                    json:"is_admin"`
	Category     string  `gorm:"type:varchar(30)"                          json:"category"`
	WagePerUnit  float64 `gorm:"type:numeric(10,2);not null;default:0"     json:"wage_per_unit"`   // 5er 课时单价
	WagePerUnit7 float64 `gorm:"type:numeric(10,2);not null;default:0"     json:"wage_per_unit_7"` // 7er 课时单价
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "instructors" }

// HasAdminRights 是否具备管理员权限（角色为 ADMIN 或带有提升标记）
func (u *User) HasAdminRights() bool {
	return u.IsAdmin || u.Role == RoleAdmin
}

// IsManagement 管理层（管理员或课程负责人）
func (u *User) IsManagement() bool {
	return u.HasAdminRights() || u.Role == RoleLeader
}
