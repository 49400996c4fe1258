package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/pkg/events"
)

// ── 自动提醒业务错误 ──

var (
	ErrAttendanceAlreadySent = errors.New("出勤表已发送")
	ErrCourseLeaderMissing   = errors.New("课程未设置负责人")
	ErrLeaderNoEmail         = errors.New("课程负责人没有邮箱")
	ErrDispatchInProgress    = errors.New("出勤表正在发送中")
)

const dispatchLockTTL = 30 * time.Second

// DeliverFunc 在标记已发送之前处理出勤表（如写入文件）
type DeliverFunc func(result *dto.DispatchResult) error

// AutomationService 出勤表自动提醒
type AutomationService interface {
	// Due 今天应发送出勤表的课程
	Due(ctx context.Context) ([]dto.DueCourse, error)
	// Dispatch 生成出勤表与邮件草稿，并标记为已发送
	Dispatch(ctx context.Context, courseID string) (*dto.DispatchResult, error)
	// DispatchTo 同 Dispatch，但先交给 deliver 落地；deliver 失败时课程不标记为已发送
	DispatchTo(ctx context.Context, courseID string, deliver DeliverFunc) (*dto.DispatchResult, error)
	// Tomorrow 明日课时
	Tomorrow(ctx context.Context, viewer *model.User) ([]dto.UpcomingSession, error)
	// NotifyDue 为每个到期课程发布一条事件，返回到期课程
	NotifyDue(ctx context.Context) ([]dto.DueCourse, error)
}

type automationService struct {
	*base
	locker Locker
	export ExportService
}

// NewAutomationService 创建 AutomationService 实例，locker 可为 nil
func NewAutomationService(b *base, locker Locker, export ExportService) AutomationService {
	return &automationService{base: b, locker: locker, export: export}
}

func (s *automationService) Due(ctx context.Context) ([]dto.DueCourse, error) {
	snap := s.store.Snapshot()
	due, err := CoursesDueForNotification(snap.Courses, s.today())
	if err != nil {
		return nil, err
	}
	users := snap.UserMap()
	out := make([]dto.DueCourse, 0, len(due))
	for i := range due {
		c := &due[i]
		start, _ := EarliestSession(c)
		item := dto.DueCourse{
			CourseID:     c.CourseID,
			Title:        c.Title,
			CourseNumber: c.CourseNumber,
			LeaderID:     c.LeaderID,
			StartDate:    start,
		}
		if u, ok := users[c.LeaderID]; ok {
			item.LeaderName = u.Name
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *automationService) Dispatch(ctx context.Context, courseID string) (*dto.DispatchResult, error) {
	return s.DispatchTo(ctx, courseID, nil)
}

func (s *automationService) DispatchTo(ctx context.Context, courseID string, deliver DeliverFunc) (*dto.DispatchResult, error) {
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, "dispatch:"+courseID, dispatchLockTTL)
		switch {
		case err != nil:
			// Redis 不可用时不阻塞发送
			s.logger.Warn("获取派发锁失败", zap.String("course_id", courseID), zap.Error(err))
		case !ok:
			return nil, ErrDispatchInProgress
		default:
			defer func() {
				if err := s.locker.Unlock(context.WithoutCancel(ctx), "dispatch:"+courseID); err != nil {
					s.logger.Warn("释放派发锁失败", zap.String("course_id", courseID), zap.Error(err))
				}
			}()
		}
	}

	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	if course.AttendanceListSent {
		return nil, ErrAttendanceAlreadySent
	}
	if strings.TrimSpace(course.LeaderID) == "" {
		return nil, ErrCourseLeaderMissing
	}
	leader, ok := snap.UserByID(course.LeaderID)
	if !ok {
		return nil, ErrCourseLeaderMissing
	}
	if strings.TrimSpace(leader.Email) == "" {
		return nil, ErrLeaderNoEmail
	}

	roster := BuildRoster(&course, snap.UserMap())
	draft := attendanceReminderDraft(&course, &leader, roster)
	workbook, filename, err := s.export.AttendanceWorkbook(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := &dto.DispatchResult{
		CourseID: courseID,
		Mail:     draft,
		Filename: filename,
		Roster:   roster,
		Workbook: workbook.Bytes(),
	}
	if deliver != nil {
		if err := deliver(result); err != nil {
			s.logger.Warn("出勤表落地失败，课程保持未发送", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
	}

	course.AttendanceListSent = true
	if _, err := s.store.UpdateCourse(ctx, course); err != nil {
		s.logger.Warn("标记出勤表已发送失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("出勤表已派发",
		zap.String("course_id", courseID),
		zap.String("leader", leader.Email),
		zap.Int("participants", len(course.Participants)),
	)
	s.publish(ctx, events.SubjectAttendanceSent, map[string]string{
		"course_id": courseID,
		"leader_id": leader.UserID,
	})

	return result, nil
}

func (s *automationService) Tomorrow(ctx context.Context, viewer *model.User) ([]dto.UpcomingSession, error) {
	snap := s.store.Snapshot()
	return TomorrowSessions(viewer, snap.Courses, snap.UserMap(), s.today())
}

func (s *automationService) NotifyDue(ctx context.Context) ([]dto.DueCourse, error) {
	due, err := s.Due(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range due {
		s.publish(ctx, events.SubjectNotificationDue, d)
	}
	s.logger.Info("到期提醒已检查", zap.String("today", s.today()), zap.Int("due", len(due)))
	return due, nil
}
