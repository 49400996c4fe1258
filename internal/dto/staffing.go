package dto

// ── 人员配置评估 ──

// StaffingResult 单个课时的人员配置评估
type StaffingResult struct {
	IsUnderstaffed bool `json:"is_understaffed"`
	CountCategoryA int  `json:"count_category_a"`
	CountCategoryB int  `json:"count_category_b"`
	MissingA       int  `json:"missing_a"`
	MissingB       int  `json:"missing_b"`
}

// SessionStaffing 课时及其评估
type SessionStaffing struct {
	SessionID string         `json:"session_id"`
	Date      string         `json:"date"`
	StartTime string         `json:"start_time"`
	Staffing  StaffingResult `json:"staffing"`
}

// CriticalSession 人员不足的未来课时
type CriticalSession struct {
	CourseID    string         `json:"course_id"`
	CourseTitle string         `json:"course_title"`
	Location    string         `json:"location"`
	SessionID   string         `json:"session_id"`
	Date        string         `json:"date"`
	StartTime   string         `json:"start_time"`
	Staffing    StaffingResult `json:"staffing"`
}
