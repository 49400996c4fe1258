package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/internal/store"
	"swim-admin/pkg/events"
)

// CourseService 课程业务接口
type CourseService interface {
	// List 管理层可见全部课程，其他人仅可见自己负责或被安排的课程
	List(ctx context.Context, viewer *model.User) []model.Course
	Get(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, req *dto.CourseRequest) (*model.Course, error)
	Update(ctx context.Context, id string, req *dto.CourseRequest) (*model.Course, error)
	// Delete 删除课程并级联删除其换班申请
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string, req *dto.DuplicateCourseRequest) (*model.Course, error)

	// ConfirmSession 确认课时，返回单课时日历与通知邮件草稿
	ConfirmSession(ctx context.Context, courseID, sessionID string) (*dto.SessionConfirmation, error)
	Staffing(ctx context.Context, id string) ([]dto.SessionStaffing, error)
	Finance(ctx context.Context, id string) (*dto.CourseFinance, error)
	PaymentConfirmation(ctx context.Context, courseID, participantID string) (*dto.MailDraft, error)
	ImportParticipants(ctx context.Context, courseID string, rows []ParticipantImportRow) (*dto.ImportResult, error)

	Titles(ctx context.Context) []string
	AddTitle(ctx context.Context, title string) []string
}

type courseService struct {
	*base
	newID func() string
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(b *base) CourseService {
	return &courseService{base: b, newID: uuid.NewString}
}

func (s *courseService) List(ctx context.Context, viewer *model.User) []model.Course {
	courses := s.store.Snapshot().Courses
	if viewer == nil || viewer.IsManagement() {
		return courses
	}
	out := make([]model.Course, 0)
	for _, c := range courses {
		if c.LeaderID == viewer.UserID || assignedTo(&c, viewer.UserID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *courseService) Get(ctx context.Context, id string) (*model.Course, error) {
	c, ok := s.store.Snapshot().CourseByID(id)
	if !ok {
		return nil, ErrCourseNotFound
	}
	return &c, nil
}

func (s *courseService) Create(ctx context.Context, req *dto.CourseRequest) (*model.Course, error) {
	course := s.fromRequest(s.newID(), req)
	if err := ValidateCourse(&course); err != nil {
		return nil, err
	}

	snap := s.store.Snapshot()
	if course.CourseNumber == "" {
		if leader, ok := snap.UserByID(course.LeaderID); ok {
			course.CourseNumber = GenerateCourseNumber(&leader, snap.Courses, s.now().In(s.loc).Year())
		}
	}

	created, err := s.store.CreateCourse(ctx, course)
	if err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("课程已创建",
		zap.String("course_id", created.CourseID),
		zap.String("course_number", created.CourseNumber),
	)
	return &created, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *dto.CourseRequest) (*model.Course, error) {
	snap := s.store.Snapshot()
	existing, ok := snap.CourseByID(id)
	if !ok {
		return nil, ErrCourseNotFound
	}

	course := s.fromRequest(id, req)
	course.CourseNumber = existing.CourseNumber
	if err := ValidateCourse(&course); err != nil {
		return nil, err
	}

	// 负责人变更时重新生成课程编号
	if course.LeaderID != existing.LeaderID {
		if leader, ok := snap.UserByID(course.LeaderID); ok {
			others := make([]model.Course, 0, len(snap.Courses))
			for _, c := range snap.Courses {
				if c.CourseID != id {
					others = append(others, c)
				}
			}
			course.CourseNumber = GenerateCourseNumber(&leader, others, s.now().In(s.loc).Year())
		}
	}

	return s.save(ctx, course)
}

func (s *courseService) save(ctx context.Context, course model.Course) (*model.Course, error) {
	updated, err := s.store.UpdateCourse(ctx, course)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Warn("更新课程失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	return &updated, nil
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	s.logger.Info("课程已删除", zap.String("course_id", id))
	return nil
}

func (s *courseService) Duplicate(ctx context.Context, id string, req *dto.DuplicateCourseRequest) (*model.Course, error) {
	snap := s.store.Snapshot()
	src, ok := snap.CourseByID(id)
	if !ok {
		return nil, ErrCourseNotFound
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrCourseTitleRequired
	}

	dup, err := DuplicateCourse(&src, title, req.WeekShift, req.TimeOverride, s.newID)
	if err != nil {
		return nil, err
	}
	dup.CourseNumber = ""
	if leader, ok := snap.UserByID(dup.LeaderID); ok {
		dup.CourseNumber = GenerateCourseNumber(&leader, snap.Courses, s.now().In(s.loc).Year())
	}

	created, err := s.store.CreateCourse(ctx, dup)
	if err != nil {
		return nil, err
	}
	s.logger.Info("课程已复制",
		zap.String("source_id", id),
		zap.String("course_id", created.CourseID),
		zap.Int("week_shift", req.WeekShift),
	)
	return &created, nil
}

// ════════════════════════════════════════════════════════════
// 课时确认
// ════════════════════════════════════════════════════════════

func (s *courseService) ConfirmSession(ctx context.Context, courseID, sessionID string) (*dto.SessionConfirmation, error) {
	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	idx := course.SessionIndex(sessionID)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}

	// 只有能解析到邮箱的人员才算有效安排
	var recipients []string
	for _, id := range course.Sessions[idx].InstructorIDs {
		if u, ok := snap.UserByID(id); ok && u.Email != "" {
			recipients = append(recipients, u.Email)
		}
	}
	if len(recipients) == 0 {
		return nil, ErrSessionUnstaffed
	}

	if !course.Sessions[idx].IsConfirmed {
		course.Sessions[idx].IsConfirmed = true
		updated, err := s.save(ctx, course)
		if err != nil {
			return nil, err
		}
		course = *updated
		idx = course.SessionIndex(sessionID)
		s.publish(ctx, events.SubjectSessionConfirmed, map[string]string{
			"course_id":  courseID,
			"session_id": sessionID,
		})
	}

	session := course.Sessions[idx]
	doc, err := SessionICS(&course, &session, CalendarOptions{Location: s.loc, Now: s.now()})
	if err != nil {
		return nil, err
	}
	draft := sessionConfirmedDraft(&course, &session, recipients)
	return &dto.SessionConfirmation{
		Course:     course,
		ICS:        doc,
		Filename:   SessionICSFilename(&course, &session),
		MailtoLink: draft.MailtoLink,
	}, nil
}

// ════════════════════════════════════════════════════════════
// 派生视图
// ════════════════════════════════════════════════════════════

func (s *courseService) Staffing(ctx context.Context, id string) ([]dto.SessionStaffing, error) {
	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(id)
	if !ok {
		return nil, ErrCourseNotFound
	}
	return CourseStaffing(&course, snap.UserMap()), nil
}

func (s *courseService) Finance(ctx context.Context, id string) (*dto.CourseFinance, error) {
	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(id)
	if !ok {
		return nil, ErrCourseNotFound
	}
	f := CourseFinance(&course, snap.UserMap())
	return &f, nil
}

func (s *courseService) PaymentConfirmation(ctx context.Context, courseID, participantID string) (*dto.MailDraft, error) {
	course, ok := s.store.Snapshot().CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	for i := range course.Participants {
		p := &course.Participants[i]
		if p.ParticipantID != participantID {
			continue
		}
		if strings.TrimSpace(p.Email) == "" {
			return nil, ErrParticipantNoEmail
		}
		draft := paymentConfirmationDraft(&course, p)
		return &draft, nil
	}
	return nil, ErrParticipantNotFound
}

// ════════════════════════════════════════════════════════════
// 课程标题
// ════════════════════════════════════════════════════════════

func (s *courseService) Titles(ctx context.Context) []string {
	return s.store.Snapshot().CourseTitles
}

func (s *courseService) AddTitle(ctx context.Context, title string) []string {
	title = strings.TrimSpace(title)
	if title != "" {
		s.store.AddCourseTitle(title)
	}
	return s.store.Snapshot().CourseTitles
}

// ── 内部辅助方法 ──

func (s *courseService) fromRequest(id string, req *dto.CourseRequest) model.Course {
	c := model.Course{
		CourseID:            id,
		Title:               strings.TrimSpace(req.Title),
		Location:            req.Location,
		Price:               req.Price,
		Notes:               req.Notes,
		Color:               req.Color,
		Category:            req.Category,
		RequiredInstructors: req.RequiredInstructors,
		RequiredHelpers:     req.RequiredHelpers,
		LeaderID:            strings.TrimSpace(req.LeaderID),
		BilledDate:          req.BilledDate,
		PoolRent:            req.PoolRent,
		AttendanceListSent:  req.AttendanceListSent,
		VersionedModel:      model.VersionedModel{Version: req.Version},
		Participants:        make([]model.Participant, 0, len(req.Participants)),
		Sessions:            make([]model.Session, 0, len(req.Sessions)),
	}
	for _, p := range req.Participants {
		pid := p.ID
		if pid == "" {
			pid = s.newID()
		}
		c.Participants = append(c.Participants, model.Participant{
			ParticipantID: pid,
			CourseID:      id,
			Name:          strings.TrimSpace(p.Name),
			DateOfBirth:   p.DateOfBirth,
			Phone:         p.Phone,
			Email:         strings.TrimSpace(p.Email),
			GuardianName:  p.GuardianName,
			Paid:          p.Paid,
			Notes:         p.Notes,
		})
	}
	for _, in := range req.Sessions {
		sid := in.ID
		if sid == "" {
			sid = s.newID()
		}
		c.Sessions = append(c.Sessions, model.Session{
			SessionID:       sid,
			CourseID:        id,
			Date:            in.Date,
			StartTime:       in.StartTime,
			DurationMinutes: in.DurationMinutes,
			InstructorIDs:   model.StringArray(in.InstructorIDs).Clone(),
			IsReplacement:   in.IsReplacement,
			Is5er:           in.Is5er,
			Is7er:           in.Is7er,
			IsConfirmed:     in.IsConfirmed,
		})
	}
	return c
}

func assignedTo(c *model.Course, userID string) bool {
	for _, s := range c.Sessions {
		if s.InstructorIDs.Contains(userID) {
			return true
		}
	}
	return false
}
