package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"swim-admin/internal/model"
)

var (
	ErrCourseNotFound       = errors.New("课程不存在")
	ErrSessionNotFound      = errors.New("课时不存在")
	ErrParticipantNotFound  = errors.New("学员不存在")
	ErrCourseTitleRequired  = errors.New("课程标题不能为空")
	ErrCourseLeaderRequired = errors.New("必须指定课程负责人")
	ErrInvalidRequirement   = errors.New("所需人数不能为负数")
	ErrInvalidDate          = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidTime          = errors.New("时间格式无效，应为 HH:MM")
	ErrInvalidDuration      = errors.New("课时时长必须大于 0")
	ErrUnitFlagConflict     = errors.New("5er 与 7er 不能同时设置")
	ErrReplacementWithUnit  = errors.New("补课课时不能设置 5er/7er")
	ErrSessionUnstaffed     = errors.New("请先为该课时安排有邮箱的人员")
	ErrParticipantNoEmail   = errors.New("学员未填写邮箱")
	ErrTitleRequired        = errors.New("标题不能为空")
)

// ValidateCourse 保存前校验
func ValidateCourse(c *model.Course) error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrCourseTitleRequired
	}
	if strings.TrimSpace(c.LeaderID) == "" {
		return ErrCourseLeaderRequired
	}
	if c.RequiredInstructors < 0 || c.RequiredHelpers < 0 {
		return ErrInvalidRequirement
	}
	for i := range c.Sessions {
		if err := validateSession(&c.Sessions[i]); err != nil {
			return fmt.Errorf("课时 %s: %w", c.Sessions[i].Date, err)
		}
	}
	return nil
}

func validateSession(s *model.Session) error {
	if _, err := ParseDate(s.Date); err != nil {
		return ErrInvalidDate
	}
	if !ValidTime(s.StartTime) {
		return ErrInvalidTime
	}
	if s.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if s.Is5er && s.Is7er {
		return ErrUnitFlagConflict
	}
	if s.IsReplacement && (s.Is5er || s.Is7er) {
		return ErrReplacementWithUnit
	}
	return nil
}

// GenerateCourseNumber 负责人姓名首字母 + 年份 + 两位序号。
// 序号为该负责人课程编号中包含该年份的课程数 + 1。
func GenerateCourseNumber(leader *model.User, courses []model.Course, year int) string {
	var initials strings.Builder
	for _, part := range strings.Fields(leader.Name) {
		r := []rune(part)
		initials.WriteRune(unicode.ToUpper(r[0]))
	}

	yearStr := fmt.Sprintf("%d", year)
	count := 1
	for _, c := range courses {
		if c.LeaderID == leader.UserID && strings.Contains(c.CourseNumber, yearStr) {
			count++
		}
	}
	return fmt.Sprintf("%s%s%02d", initials.String(), yearStr, count)
}
