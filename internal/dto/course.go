package dto

import "swim-admin/internal/model"

// ── 课程模块 DTO ──

// ParticipantInput 学员
type ParticipantInput struct {
	ID           string `json:"id"`
	Name         string `json:"name"          binding:"required"`
	DateOfBirth  string `json:"date_of_birth"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	GuardianName string `json:"guardian_name"`
	Paid         bool   `json:"paid"`
	Notes        string `json:"notes"`
}

// SessionInput 课时
type SessionInput struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"             binding:"required"`
	StartTime       string   `json:"start_time"       binding:"required"`
	DurationMinutes int      `json:"duration_minutes" binding:"gte=0"`
	InstructorIDs   []string `json:"instructor_ids"`
	IsReplacement   bool     `json:"is_replacement"`
	Is5er           bool     `json:"is_5er"`
	Is7er           bool     `json:"is_7er"`
	IsConfirmed     bool     `json:"is_confirmed"`
}

// CourseRequest 新建/更新课程。更新时 Version 必须等于读取时的版本。
type CourseRequest struct {
	Title               string             `json:"title"`
	Location            string             `json:"location"`
	Price               float64            `json:"price"                binding:"gte=0"`
	Notes               string             `json:"notes"`
	Color               string             `json:"color"`
	Category            string             `json:"category"`
	RequiredInstructors int                `json:"required_instructors"`
	RequiredHelpers     int                `json:"required_helpers"`
	LeaderID            string             `json:"leader_id"`
	BilledDate          *string            `json:"billed_date"`
	PoolRent            float64            `json:"pool_rent"            binding:"gte=0"`
	AttendanceListSent  bool               `json:"attendance_list_sent"`
	Participants        []ParticipantInput `json:"participants"`
	Sessions            []SessionInput     `json:"sessions"`
	Version             int                `json:"version"`
}

// TimeOverride 复制课程时统一改写开始时间
type TimeOverride struct {
	Enabled bool   `json:"enabled"`
	NewTime string `json:"new_time"`
}

// DuplicateCourseRequest 复制课程请求
type DuplicateCourseRequest struct {
	Title        string       `json:"title"      binding:"required"`
	WeekShift    int          `json:"week_shift"`
	TimeOverride TimeOverride `json:"time_override"`
}

// CourseTitleRequest 新增标题建议
type CourseTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// SessionConfirmation 课时确认结果：单课时日历文件与通知邮件草稿
type SessionConfirmation struct {
	Course     model.Course `json:"course"`
	ICS        string       `json:"ics"`
	Filename   string       `json:"filename"`
	MailtoLink string       `json:"mailto_link"`
}

// MailDraft 邮件草稿
type MailDraft struct {
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	MailtoLink string   `json:"mailto_link"`
}

// ImportResult 学员批量导入结果
type ImportResult struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError 导入失败的行
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportTextRequest 文本批量导入：每行 "Name, Geburtsdatum, Erziehungsberechtigte:r, Telefon, E-Mail"
type ImportTextRequest struct {
	Text string `json:"text" binding:"required"`
}
