package service

import (
	"sort"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
)

// EvaluateStaffing 按人员类别统计课时的人员配置。
// 无法解析的 ID 直接忽略。
func EvaluateStaffing(course *model.Course, session *model.Session, users map[string]model.User) dto.StaffingResult {
	var countA, countB int
	for _, id := range session.InstructorIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		switch u.Category {
		case model.CategoryInstructor:
			countA++
		case model.CategoryHelper:
			countB++
		}
	}

	missingA := max(0, course.RequiredInstructors-countA)
	missingB := max(0, course.RequiredHelpers-countB)
	return dto.StaffingResult{
		IsUnderstaffed: missingA > 0 || missingB > 0,
		CountCategoryA: countA,
		CountCategoryB: countB,
		MissingA:       missingA,
		MissingB:       missingB,
	}
}

// CourseStaffing 课程全部课时的评估，按日期排序
func CourseStaffing(course *model.Course, users map[string]model.User) []dto.SessionStaffing {
	sessions := SortedSessions(course.Sessions)
	out := make([]dto.SessionStaffing, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.SessionStaffing{
			SessionID: sessions[i].SessionID,
			Date:      sessions[i].Date,
			StartTime: sessions[i].StartTime,
			Staffing:  EvaluateStaffing(course, &sessions[i], users),
		})
	}
	return out
}

// CriticalSessions 今天及以后人员不足的课时，按日期、开始时间升序
func CriticalSessions(courses []model.Course, users map[string]model.User, today string) []dto.CriticalSession {
	out := make([]dto.CriticalSession, 0)
	for ci := range courses {
		c := &courses[ci]
		for si := range c.Sessions {
			s := &c.Sessions[si]
			if s.Date < today {
				continue
			}
			res := EvaluateStaffing(c, s, users)
			if !res.IsUnderstaffed {
				continue
			}
			out = append(out, dto.CriticalSession{
				CourseID:    c.CourseID,
				CourseTitle: c.Title,
				Location:    c.Location,
				SessionID:   s.SessionID,
				Date:        s.Date,
				StartTime:   s.StartTime,
				Staffing:    res,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// SortedSessions 按日期、开始时间排序后的副本
func SortedSessions(sessions []model.Session) []model.Session {
	out := make([]model.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
