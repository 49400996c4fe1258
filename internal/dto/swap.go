package dto

import "swim-admin/internal/model"

// ── 换班 ──

// CreateSwapRequest 发起换班申请（申请人取自当前登录用户）
type CreateSwapRequest struct {
	CourseID           string `json:"course_id"            binding:"required"`
	SessionID          string `json:"session_id"           binding:"required"`
	TargetInstructorID string `json:"target_instructor_id" binding:"required"`
}

// SwapRequestView 换班申请及其关联展示信息（关联可能已悬空）
type SwapRequestView struct {
	model.SwapRequest
	CourseTitle   string `json:"course_title,omitempty"`
	SessionDate   string `json:"session_date,omitempty"`
	SessionTime   string `json:"session_time,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	TargetName    string `json:"target_name,omitempty"`
}
