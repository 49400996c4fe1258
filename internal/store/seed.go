package store

import (
	"fmt"

	"swim-admin/internal/model"
	"swim-admin/pkg/password"
)

// InitialCourseTitles 课程标题建议的初始列表
var InitialCourseTitles = []string{
	"Anfängerschwimmkurs 4 bis 6 Jahre",
	"Anfängerschwimmkurs 5 bis 6 Jahre",
	"Anfängerschwimmkurs ab 6 Jahren",
	"Fortgeschrittenenschwimmkurs",
	"Kraulkurs",
	"Erwachsenenschwimmkurs",
	"Kraulkurs für Fortgeschrittene",
}

// demoUsers 演示人员，初始口令按 3+3 规则由姓名生成
func demoUsers() []model.User {
	return []model.User{
		{UserID: "inst-oliver", Name: "Oliver Tschabrun", Email: "oliver@swim.de", Role: model.RoleInstructor, IsAdmin: true, Category: model.CategoryInstructor, WagePerUnit: 35, WagePerUnit7: 45},
		{UserID: "inst-cinzia", Name: "Cinzia Arena", Email: "cinzia@swim.de", Role: model.RoleLeader, Category: model.CategoryInstructor, WagePerUnit: 30, WagePerUnit7: 40},
		{UserID: "inst-enya", Name: "Enya Lins", Email: "enya@swim.de", Role: model.RoleInstructor, Category: model.CategoryHelper, WagePerUnit: 20, WagePerUnit7: 25},
		{UserID: "inst-1", Name: "Max Mustermann", Email: "max@swim.de", Role: model.RoleInstructor, Category: model.CategoryInstructor, WagePerUnit: 25, WagePerUnit7: 35},
		{UserID: "admin-1", Name: "Admin User", Email: "admin@swim.de", Role: model.RoleAdmin, IsAdmin: true, Category: model.CategoryInstructor, WagePerUnit: 30, WagePerUnit7: 40},
	}
}

// demoCourses 演示课程。s1-3 / s2-1 引用了不存在的 inst-2，用于展示悬空引用的处理。
func demoCourses() []model.Course {
	return []model.Course{
		{
			CourseID:            "course-1",
			Title:               "Anfängerkurs Stufe 1",
			Location:            "Jupident",
			Price:               149,
			Notes:               "Bitte Schwimmbrille und Handtuch mitbringen.",
			Color:               "#3b82f6",
			Category:            "Stufe 1",
			RequiredInstructors: 1,
			RequiredHelpers:     1,
			LeaderID:            "inst-oliver",
			CourseNumber:        "OT202501",
			VersionedModel:      model.VersionedModel{Version: 1},
			Participants: []model.Participant{
				{ParticipantID: "p1", CourseID: "course-1", Name: "Lukas Müller", DateOfBirth: "2018-05-12", Phone: "01511234567", Email: "mueller@example.com", GuardianName: "Stefan Müller", Paid: true, Notes: "Anfänger ohne Vorerfahrung"},
				{ParticipantID: "p2", CourseID: "course-1", Name: "Emma Schmidt", DateOfBirth: "2018-09-20", Phone: "01529876543", Email: "schmidt@example.com", GuardianName: "Maria Schmidt"},
			},
			Sessions: []model.Session{
				{SessionID: "s1-1", CourseID: "course-1", Date: "2025-06-02", StartTime: "15:00", DurationMinutes: 45, InstructorIDs: model.StringArray{"inst-1"}},
				{SessionID: "s1-2", CourseID: "course-1", Date: "2025-06-09", StartTime: "15:00", DurationMinutes: 45, InstructorIDs: model.StringArray{"inst-1"}},
				{SessionID: "s1-3", CourseID: "course-1", Date: "2025-06-16", StartTime: "15:00", DurationMinutes: 45, InstructorIDs: model.StringArray{"inst-1", "inst-2"}, IsReplacement: true},
			},
		},
		{
			CourseID:            "course-2",
			Title:               "Kraulkurs Technik",
			Location:            "Walgaubad",
			Price:               149,
			Notes:               "Voraussetzung: 100m am Stück schwimmen.",
			Color:               "#22c55e",
			Category:            "Kraulkurs",
			RequiredInstructors: 1,
			RequiredHelpers:     1,
			LeaderID:            "inst-cinzia",
			CourseNumber:        "CA202501",
			VersionedModel:      model.VersionedModel{Version: 1},
			Participants: []model.Participant{
				{ParticipantID: "p4", CourseID: "course-2", Name: "Sophie Weber", DateOfBirth: "2010-03-15", Phone: "01602233445", Email: "weber@example.com", GuardianName: "Anja Weber", Paid: true},
			},
			Sessions: []model.Session{
				{SessionID: "s2-1", CourseID: "course-2", Date: "2025-06-03", StartTime: "17:30", DurationMinutes: 60, InstructorIDs: model.StringArray{"inst-2"}},
			},
		},
	}
}

// hashedDemoUsers 为演示人员生成初始口令哈希
func hashedDemoUsers(h password.Hasher) ([]model.User, error) {
	users := demoUsers()
	for i := range users {
		hash, err := h.Hash(password.Default(users[i].Name))
		if err != nil {
			return nil, fmt.Errorf("生成演示口令失败: %w", err)
		}
		users[i].PasswordHash = hash
	}
	return users, nil
}

// DemoSnapshot 完整的演示数据集
func DemoSnapshot(h password.Hasher) (Snapshot, error) {
	users, err := hashedDemoUsers(h)
	if err != nil {
		return Snapshot{}, err
	}
	titles := make([]string, len(InitialCourseTitles))
	copy(titles, InitialCourseTitles)
	return Snapshot{
		Users:        users,
		Courses:      demoCourses(),
		SwapRequests: []model.SwapRequest{},
		CourseTitles: titles,
	}, nil
}
