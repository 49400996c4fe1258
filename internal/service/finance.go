package service

import (
	"swim-admin/internal/dto"
	"swim-admin/internal/model"
)

// CourseRevenue 单价 × 已付款学员数
func CourseRevenue(course *model.Course) float64 {
	return course.Price * float64(paidCount(course))
}

// SessionCost 单个课时的人员费用。
// 5er 按 WagePerUnit、7er 按 WagePerUnit7 计，补课及无法解析的人员计 0。
func SessionCost(session *model.Session, users map[string]model.User) float64 {
	if session.IsReplacement {
		return 0
	}
	var total float64
	for _, id := range session.InstructorIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		switch {
		case session.Is5er:
			total += u.WagePerUnit
		case session.Is7er:
			total += u.WagePerUnit7
		}
	}
	return total
}

// CourseCost 全部课时费用之和
func CourseCost(course *model.Course, users map[string]model.User) float64 {
	var total float64
	for i := range course.Sessions {
		total += SessionCost(&course.Sessions[i], users)
	}
	return total
}

// CourseFinance 课程收支汇总，场地租金单独列出不计入利润
func CourseFinance(course *model.Course, users map[string]model.User) dto.CourseFinance {
	revenue := CourseRevenue(course)
	cost := CourseCost(course, users)
	return dto.CourseFinance{
		CourseID:         course.CourseID,
		Title:            course.Title,
		Participants:     len(course.Participants),
		PaidParticipants: paidCount(course),
		Revenue:          revenue,
		Cost:             cost,
		Profit:           revenue - cost,
		PoolRent:         course.PoolRent,
		BilledDate:       course.BilledDate,
	}
}

// FinanceOverview 全部课程汇总
func FinanceOverview(courses []model.Course, users map[string]model.User) dto.FinanceOverview {
	out := dto.FinanceOverview{Courses: make([]dto.CourseFinance, 0, len(courses))}
	for i := range courses {
		f := CourseFinance(&courses[i], users)
		out.Courses = append(out.Courses, f)
		out.TotalRevenue += f.Revenue
		out.TotalCost += f.Cost
		out.TotalProfit += f.Profit
	}
	return out
}

func paidCount(course *model.Course) int {
	n := 0
	for _, p := range course.Participants {
		if p.Paid {
			n++
		}
	}
	return n
}
