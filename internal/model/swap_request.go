package model

import "time"

// 换班申请状态
const (
	SwapStatusPending  = "PENDING"
	SwapStatusApproved = "APPROVED"
	SwapStatusRejected = "REJECTED"
)

// SwapRequest 换班申请表，对应 swap_requests
type SwapRequest struct {
	SwapRequestID          string     `gorm:"type:varchar(64);primaryKey"                  json:"swap_request_id"`
	CourseID               string     `gorm:"type:varchar(64);not null;index"              json:"course_id"`
	SessionID              string     `gorm:"type:varchar(64);not null"                    json:"session_id"`
	RequestingInstructorID string     `gorm:"type:varchar(64);not null"                    json:"requesting_instructor_id"`
	TargetInstructorID     string     `gorm:"type:varchar(64);not null"                    json:"target_instructor_id"`
	Status                 string     `gorm:"type:varchar(20);not null;default:'PENDING'"  json:"status"` // PENDING | APPROVED | REJECTED
	CreatedAt              time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"created_at"`
	ResolvedAt             *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy             *string    `gorm:"type:varchar(64)"                             json:"resolved_by,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// IsPending 是否仍待审批
func (r *SwapRequest) IsPending() bool { return r.Status == SwapStatusPending }
