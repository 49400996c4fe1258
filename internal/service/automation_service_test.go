package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"swim-admin/internal/dto"
	"swim-admin/pkg/events"
)

func setupAutomation(t *testing.T, locker Locker) (AutomationService, *base, *recordingPublisher) {
	t.Helper()
	b, pub := newTestBase(t)
	return NewAutomationService(b, locker, NewExportService(b, "")), b, pub
}

func TestAutomationService_DueThenDispatch(t *testing.T) {
	svc, b, pub := setupAutomation(t, newFakeLocker())
	ctx := context.Background()

	due, err := svc.Due(ctx)
	if err != nil {
		t.Fatalf("Due 不应报错: %v", err)
	}
	if len(due) != 1 || due[0].CourseID != "course-1" || due[0].StartDate != "2025-06-02" {
		t.Fatalf("期望 course-1 到期，实际 %+v", due)
	}
	if due[0].LeaderName != "Oliver Tschabrun" {
		t.Errorf("应带出负责人姓名，实际 %q", due[0].LeaderName)
	}

	res, err := svc.Dispatch(ctx, "course-1")
	if err != nil {
		t.Fatalf("Dispatch 应成功: %v", err)
	}
	if res.Mail.Subject != "AUTOMATISCHE ERINNERUNG - Anwesenheitsliste: Anfängerkurs Stufe 1" {
		t.Errorf("邮件主题错误: %s", res.Mail.Subject)
	}
	if len(res.Mail.To) != 1 || res.Mail.To[0] != "oliver@swim.de" {
		t.Errorf("收件人应为负责人: %v", res.Mail.To)
	}
	if !strings.HasPrefix(res.Mail.MailtoLink, "mailto:oliver@swim.de?subject=") {
		t.Errorf("mailto 链接错误: %s", res.Mail.MailtoLink)
	}
	if res.Filename != "Anwesenheit_Anfängerkurs_Stufe_1.xlsx" || len(res.Workbook) == 0 {
		t.Errorf("出勤表文件错误: %s (%d bytes)", res.Filename, len(res.Workbook))
	}
	if res.Roster.Columns[2] != "Ersatz 16.06." {
		t.Errorf("补课列标签错误: %v", res.Roster.Columns)
	}
	if !mustCourse(t, b, "course-1").AttendanceListSent {
		t.Error("派发后应标记为已发送")
	}
	if pub.count(events.SubjectAttendanceSent) != 1 {
		t.Error("应发布一次出勤表已发送事件")
	}

	due, _ = svc.Due(ctx)
	if len(due) != 0 {
		t.Errorf("已派发的课程不应再次到期: %+v", due)
	}
	if _, err := svc.Dispatch(ctx, "course-1"); !errors.Is(err, ErrAttendanceAlreadySent) {
		t.Errorf("重复派发期望 ErrAttendanceAlreadySent，实际: %v", err)
	}
}

func TestAutomationService_DispatchToDeliverFailure(t *testing.T) {
	svc, b, pub := setupAutomation(t, nil)
	ctx := context.Background()
	errDisk := errors.New("disk full")

	var got *dto.DispatchResult
	_, err := svc.DispatchTo(ctx, "course-1", func(r *dto.DispatchResult) error {
		got = r
		return errDisk
	})
	if !errors.Is(err, errDisk) {
		t.Fatalf("应返回落地错误，实际: %v", err)
	}
	if got == nil || len(got.Workbook) == 0 {
		t.Fatal("deliver 应收到出勤表内容")
	}
	if mustCourse(t, b, "course-1").AttendanceListSent {
		t.Error("落地失败时课程不应标记为已发送")
	}
	if pub.count(events.SubjectAttendanceSent) != 0 {
		t.Error("落地失败时不应发布事件")
	}
	if due, _ := svc.Due(ctx); len(due) != 1 {
		t.Errorf("落地失败的课程应仍然到期，实际 %+v", due)
	}

	var delivered int
	if _, err := svc.DispatchTo(ctx, "course-1", func(*dto.DispatchResult) error {
		delivered++
		return nil
	}); err != nil {
		t.Fatalf("重试应成功: %v", err)
	}
	if delivered != 1 || !mustCourse(t, b, "course-1").AttendanceListSent {
		t.Error("落地成功后应标记为已发送")
	}
}

func TestAutomationService_DispatchLeaderChecks(t *testing.T) {
	svc, b, _ := setupAutomation(t, nil)
	ctx := context.Background()

	c := mustCourse(t, b, "course-2")
	c.LeaderID = "inst-2"
	if _, err := b.store.UpdateCourse(ctx, c); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}
	if _, err := svc.Dispatch(ctx, "course-2"); !errors.Is(err, ErrCourseLeaderMissing) {
		t.Errorf("负责人不存在期望 ErrCourseLeaderMissing，实际: %v", err)
	}

	u := *mustUser(t, b, "inst-cinzia")
	u.Email = ""
	if err := b.store.SaveUser(ctx, u); err != nil {
		t.Fatalf("保存人员失败: %v", err)
	}
	c = mustCourse(t, b, "course-2")
	c.LeaderID = "inst-cinzia"
	if _, err := b.store.UpdateCourse(ctx, c); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}
	if _, err := svc.Dispatch(ctx, "course-2"); !errors.Is(err, ErrLeaderNoEmail) {
		t.Errorf("负责人无邮箱期望 ErrLeaderNoEmail，实际: %v", err)
	}
	if mustCourse(t, b, "course-2").AttendanceListSent {
		t.Error("失败的派发不应修改状态")
	}

	if _, err := svc.Dispatch(ctx, "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestAutomationService_DispatchLocked(t *testing.T) {
	locker := newFakeLocker()
	locker.held["dispatch:course-1"] = true
	svc, b, _ := setupAutomation(t, locker)

	if _, err := svc.Dispatch(context.Background(), "course-1"); !errors.Is(err, ErrDispatchInProgress) {
		t.Errorf("期望 ErrDispatchInProgress，实际: %v", err)
	}
	if mustCourse(t, b, "course-1").AttendanceListSent {
		t.Error("加锁失败时不应修改状态")
	}
}

func TestAutomationService_DispatchLockerDown(t *testing.T) {
	locker := newFakeLocker()
	locker.err = errors.New("redis: connection refused")
	svc, _, _ := setupAutomation(t, locker)

	if _, err := svc.Dispatch(context.Background(), "course-1"); err != nil {
		t.Errorf("Redis 不可用时仍应派发: %v", err)
	}
}

func TestAutomationService_NotifyDuePublishes(t *testing.T) {
	svc, _, pub := setupAutomation(t, nil)
	pub.fail = errors.New("nats: no servers")

	due, err := svc.NotifyDue(context.Background())
	if err != nil {
		t.Fatalf("事件发布失败不应影响结果: %v", err)
	}
	if len(due) != 1 || pub.count(events.SubjectNotificationDue) != 1 {
		t.Errorf("应为每个到期课程发布一次事件，due=%d events=%d", len(due), pub.count(events.SubjectNotificationDue))
	}
}

func TestAutomationService_Tomorrow(t *testing.T) {
	svc, b, _ := setupAutomation(t, nil)
	// testNow 为 2025-05-31，明天没有课时；改为 2025-06-01
	b.now = func() time.Time { return testNow.AddDate(0, 0, 1) }

	got, err := svc.Tomorrow(context.Background(), mustUser(t, b, "inst-1"))
	if err != nil {
		t.Fatalf("不应报错: %v", err)
	}
	if len(got) != 1 || got[0].SessionID != "s1-1" || got[0].Instructors[0] != "Max Mustermann" {
		t.Errorf("期望 s1-1，实际 %+v", got)
	}

	got, _ = svc.Tomorrow(context.Background(), mustUser(t, b, "inst-enya"))
	if len(got) != 0 {
		t.Errorf("未被安排的人员不应看到课时: %+v", got)
	}
}
