package service

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"swim-admin/internal/model"
)

const (
	icsProductID = "-//SwimAdmin//NONSGML v1.0//EN"
	icsUIDDomain = "swimadmin.local"
)

// CalendarOptions 日历导出参数
type CalendarOptions struct {
	Name     string
	Location *time.Location
	Now      time.Time
}

func newCalendar() *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProductID)
	return cal
}

// SessionNumbering 课时编号："Einheit i/n"，补课为 "ERSATZ"。
// 编号只在非补课课时中按日期计数。
func SessionNumbering(course *model.Course, sessionID string) string {
	regular := make([]model.Session, 0, len(course.Sessions))
	for _, s := range SortedSessions(course.Sessions) {
		if s.SessionID == sessionID && s.IsReplacement {
			return "ERSATZ"
		}
		if !s.IsReplacement {
			regular = append(regular, s)
		}
	}
	for i, s := range regular {
		if s.SessionID == sessionID {
			return fmt.Sprintf("Einheit %d/%d", i+1, len(regular))
		}
	}
	return "ERSATZ"
}

func addSessionEvent(cal *ics.Calendar, course *model.Course, s *model.Session, summary string, opts CalendarOptions) error {
	start, err := SessionStart(s.Date, s.StartTime, opts.Location)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(s.DurationMinutes) * time.Minute)

	notes := course.Notes
	if notes == "" {
		notes = "Keine"
	}

	event := cal.AddEvent(s.SessionID + "@" + icsUIDDomain)
	event.SetDtStampTime(opts.Now)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(summary)
	event.SetLocation(course.Location)
	event.SetDescription(fmt.Sprintf("Kategorie: %s\nOrt: %s\nNotizen: %s", course.Category, course.Location, notes))
	event.SetStatus(ics.ObjectStatusConfirmed)
	return nil
}

// CalendarICS 导出课时日历；instructorID 非空时仅包含该人员被安排的课时
func CalendarICS(courses []model.Course, instructorID string, opts CalendarOptions) (string, error) {
	cal := newCalendar()
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(opts.Name)
	if opts.Location != nil {
		cal.SetXWRTimezone(opts.Location.String())
	}

	for ci := range courses {
		c := &courses[ci]
		for _, s := range SortedSessions(c.Sessions) {
			if instructorID != "" && !s.InstructorIDs.Contains(instructorID) {
				continue
			}
			summary := fmt.Sprintf("Schwimmkurs: %s (%s)", c.Title, SessionNumbering(c, s.SessionID))
			if err := addSessionEvent(cal, c, &s, summary, opts); err != nil {
				return "", err
			}
		}
	}
	return cal.Serialize(), nil
}

// SessionICS 单课时日历（课时确认时附带）
func SessionICS(course *model.Course, session *model.Session, opts CalendarOptions) (string, error) {
	cal := newCalendar()
	if err := addSessionEvent(cal, course, session, "Bestätigter Termin: "+course.Title, opts); err != nil {
		return "", err
	}
	return cal.Serialize(), nil
}

// SessionICSFilename Termin_<date>_<title>.ics
func SessionICSFilename(course *model.Course, session *model.Session) string {
	return fmt.Sprintf("Termin_%s_%s.ics", session.Date, fileSafe(course.Title))
}

func fileSafe(s string) string {
	return strings.Join(strings.Fields(s), "_")
}
