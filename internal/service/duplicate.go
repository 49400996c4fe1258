package service

import (
	"fmt"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
)

// DuplicateCourse 复制课程：新 ID 与标题，学员清空，课时整体平移 weekShift 周。
// 课时的人员、单位标记、补课标记与确认状态原样复制。
func DuplicateCourse(src *model.Course, newTitle string, weekShift int, override dto.TimeOverride, newID func() string) (model.Course, error) {
	if override.Enabled && !ValidTime(override.NewTime) {
		return model.Course{}, fmt.Errorf("%w: %q", ErrInvalidTime, override.NewTime)
	}

	out := model.Course{
		CourseID:            newID(),
		Title:               newTitle,
		Location:            src.Location,
		Price:               src.Price,
		Notes:               src.Notes,
		Color:               src.Color,
		Category:            src.Category,
		RequiredInstructors: src.RequiredInstructors,
		RequiredHelpers:     src.RequiredHelpers,
		LeaderID:            src.LeaderID,
		CourseNumber:        src.CourseNumber,
		PoolRent:            0,
		AttendanceListSent:  false,
		VersionedModel:      model.VersionedModel{Version: 1},
		Participants:        []model.Participant{},
		Sessions:            make([]model.Session, 0, len(src.Sessions)),
	}

	for _, s := range src.Sessions {
		date, err := AddDays(s.Date, weekShift*7)
		if err != nil {
			return model.Course{}, err
		}
		start := s.StartTime
		if override.Enabled {
			start = override.NewTime
		}
		out.Sessions = append(out.Sessions, model.Session{
			SessionID:       newID(),
			CourseID:        out.CourseID,
			Date:            date,
			StartTime:       start,
			DurationMinutes: s.DurationMinutes,
			InstructorIDs:   s.InstructorIDs.Clone(),
			IsReplacement:   s.IsReplacement,
			Is5er:           s.Is5er,
			Is7er:           s.Is7er,
			IsConfirmed:     s.IsConfirmed,
		})
	}
	return out, nil
}
