package service

import (
	"sort"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
)

// NotificationLeadDays 出勤表在首个课时前几天发出
const NotificationLeadDays = 2

// EarliestSession 最早的课时日期，无课时返回 ok=false
func EarliestSession(course *model.Course) (string, bool) {
	if len(course.Sessions) == 0 {
		return "", false
	}
	earliest := course.Sessions[0].Date
	for _, s := range course.Sessions[1:] {
		if s.Date < earliest {
			earliest = s.Date
		}
	}
	return earliest, true
}

// CoursesDueForNotification 尚未发送出勤表、且最早课时恰好在 today+2 天的课程。
// 首个课时已过的课程不再触发。
func CoursesDueForNotification(courses []model.Course, today string) ([]model.Course, error) {
	target, err := AddDays(today, NotificationLeadDays)
	if err != nil {
		return nil, err
	}
	out := make([]model.Course, 0)
	for i := range courses {
		c := &courses[i]
		if c.AttendanceListSent {
			continue
		}
		if earliest, ok := EarliestSession(c); ok && earliest == target {
			out = append(out, *c)
		}
	}
	return out, nil
}

// TomorrowSessions 明天的课时：管理层可见全部，其他人仅可见自己被安排的课时。
// 按开始时间排序。
func TomorrowSessions(viewer *model.User, courses []model.Course, users map[string]model.User, today string) ([]dto.UpcomingSession, error) {
	tomorrow, err := AddDays(today, 1)
	if err != nil {
		return nil, err
	}
	management := viewer.IsManagement()

	out := make([]dto.UpcomingSession, 0)
	for ci := range courses {
		c := &courses[ci]
		for _, s := range c.Sessions {
			if s.Date != tomorrow {
				continue
			}
			if !management && !s.InstructorIDs.Contains(viewer.UserID) {
				continue
			}
			out = append(out, dto.UpcomingSession{
				CourseID:        c.CourseID,
				CourseTitle:     c.Title,
				Location:        c.Location,
				SessionID:       s.SessionID,
				Date:            s.Date,
				StartTime:       s.StartTime,
				DurationMinutes: s.DurationMinutes,
				IsReplacement:   s.IsReplacement,
				Instructors:     instructorNames(s.InstructorIDs, users),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// BuildRoster 出勤表：学员 × 按日期排序的课时，补课标注 "Ersatz dd.MM."
func BuildRoster(course *model.Course, users map[string]model.User) dto.Roster {
	sessions := SortedSessions(course.Sessions)
	cols := make([]string, 0, len(sessions))
	teamSet := make(map[string]struct{})
	team := make([]string, 0)
	for _, s := range sessions {
		label := GermanDayMonth(s.Date)
		if s.IsReplacement {
			label = "Ersatz " + label
		}
		cols = append(cols, label)
		for _, name := range instructorNames(s.InstructorIDs, users) {
			if _, seen := teamSet[name]; !seen {
				teamSet[name] = struct{}{}
				team = append(team, name)
			}
		}
	}

	names := make([]string, 0, len(course.Participants))
	for _, p := range course.Participants {
		names = append(names, p.Name)
	}

	leader := ""
	if u, ok := users[course.LeaderID]; ok {
		leader = u.Name
	}
	return dto.Roster{
		Title:        course.Title,
		CourseNumber: course.CourseNumber,
		Location:     course.Location,
		Leader:       leader,
		Team:         team,
		Columns:      cols,
		Participants: names,
	}
}

func instructorNames(ids model.StringArray, users map[string]model.User) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			names = append(names, u.Name)
		}
	}
	return names
}
