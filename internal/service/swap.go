package service

import (
	"swim-admin/internal/model"
)

// CanRequestSwap 申请人已被安排到该课时，且对同一课时没有待审批的申请
func CanRequestSwap(instructorID string, session *model.Session, requests []model.SwapRequest) bool {
	if !session.InstructorIDs.Contains(instructorID) {
		return false
	}
	for _, r := range requests {
		if r.IsPending() && r.SessionID == session.SessionID && r.RequestingInstructorID == instructorID {
			return false
		}
	}
	return true
}

// ApplySwap 在课时中移除申请人并加入替换人（已存在则不重复加入）
func ApplySwap(session *model.Session, requesterID, targetID string) {
	ids := make(model.StringArray, 0, len(session.InstructorIDs)+1)
	for _, id := range session.InstructorIDs {
		if id != requesterID {
			ids = append(ids, id)
		}
	}
	if !ids.Contains(targetID) {
		ids = append(ids, targetID)
	}
	session.InstructorIDs = ids
}

// CanDecideSwap 管理员或课程负责人可审批；课程无法解析时仅管理员可见
func CanDecideSwap(viewer *model.User, course *model.Course) bool {
	if viewer.HasAdminRights() {
		return true
	}
	return course != nil && course.LeaderID == viewer.UserID
}
