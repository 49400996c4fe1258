package service

import (
	"context"
	"errors"
	"testing"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	pkgerrors "swim-admin/pkg/errors"
	"swim-admin/pkg/events"
)

func setupSwap(t *testing.T) (SwapService, *base, *recordingPublisher) {
	t.Helper()
	b, pub := newTestBase(t)
	return NewSwapService(b), b, pub
}

func TestSwapService_RequestApprove(t *testing.T) {
	svc, b, pub := setupSwap(t)
	ctx := context.Background()

	req, err := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"})
	if err != nil {
		t.Fatalf("申请应成功: %v", err)
	}
	if req.Status != model.SwapStatusPending || req.SwapRequestID == "" {
		t.Fatalf("新申请应为 PENDING 且有 ID: %+v", req)
	}

	approved, err := svc.Approve(ctx, req.SwapRequestID, mustUser(t, b, "inst-oliver"))
	if err != nil {
		t.Fatalf("审批应成功: %v", err)
	}
	if approved.Status != model.SwapStatusApproved || approved.ResolvedBy == nil || *approved.ResolvedBy != "inst-oliver" {
		t.Errorf("申请应为 APPROVED 并记录审批人: %+v", approved)
	}

	c := mustCourse(t, b, "course-1")
	ids := c.Sessions[c.SessionIndex("s1-1")].InstructorIDs
	if ids.Contains("inst-1") || !ids.Contains("inst-enya") {
		t.Errorf("课时人员应替换为 inst-enya，实际 %v", ids)
	}
	if pub.count(events.SubjectSwapApproved) != 1 {
		t.Error("应发布一次换班通过事件")
	}
}

func TestSwapService_ApproveIsIdempotent(t *testing.T) {
	svc, b, _ := setupSwap(t)
	ctx := context.Background()
	admin := mustUser(t, b, "admin-1")

	req, _ := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-2", TargetInstructorID: "inst-enya"})
	if _, err := svc.Approve(ctx, req.SwapRequestID, admin); err != nil {
		t.Fatalf("首次审批应成功: %v", err)
	}
	versionAfterFirst := mustCourse(t, b, "course-1").Version

	again, err := svc.Approve(ctx, req.SwapRequestID, admin)
	if err != nil {
		t.Fatalf("重复审批不应报错: %v", err)
	}
	if again.Status != model.SwapStatusApproved {
		t.Error("状态应保持 APPROVED")
	}

	c := mustCourse(t, b, "course-1")
	if c.Version != versionAfterFirst {
		t.Error("重复审批不应再次修改课程")
	}
	n := 0
	for _, id := range c.Sessions[c.SessionIndex("s1-2")].InstructorIDs {
		if id == "inst-enya" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("替换人应恰好出现一次，实际 %d 次", n)
	}
}

func TestSwapService_RejectLeavesSessionUnchanged(t *testing.T) {
	svc, b, _ := setupSwap(t)
	ctx := context.Background()

	req, _ := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"})
	before := mustCourse(t, b, "course-1").Sessions[0].InstructorIDs

	rejected, err := svc.Reject(ctx, req.SwapRequestID, mustUser(t, b, "inst-oliver"))
	if err != nil {
		t.Fatalf("驳回应成功: %v", err)
	}
	if rejected.Status != model.SwapStatusRejected {
		t.Errorf("期望 REJECTED，实际 %s", rejected.Status)
	}
	after := mustCourse(t, b, "course-1").Sessions[0].InstructorIDs
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("驳回不应改变课时人员: %v → %v", before, after)
	}

	// 终态不可再审批
	again, _ := svc.Approve(ctx, req.SwapRequestID, mustUser(t, b, "inst-oliver"))
	if again.Status != model.SwapStatusRejected {
		t.Error("已驳回的申请不能再通过")
	}
}

func TestSwapService_UnknownRequestIsNoop(t *testing.T) {
	svc, b, _ := setupSwap(t)
	r, err := svc.Approve(context.Background(), "missing", mustUser(t, b, "admin-1"))
	if r != nil || err != nil {
		t.Errorf("不存在的申请应静默忽略，实际 %v %v", r, err)
	}
	r, err = svc.Reject(context.Background(), "missing", mustUser(t, b, "admin-1"))
	if r != nil || err != nil {
		t.Errorf("不存在的申请应静默忽略，实际 %v %v", r, err)
	}
}

func TestSwapService_RequestValidation(t *testing.T) {
	svc, _, _ := setupSwap(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		requester string
		req       dto.CreateSwapRequest
		want      error
	}{
		{"与自己换班", "inst-1", dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-1"}, ErrSwapSelfTarget},
		{"课程不存在", "inst-1", dto.CreateSwapRequest{CourseID: "nope", SessionID: "s1-1", TargetInstructorID: "inst-enya"}, ErrCourseNotFound},
		{"课时不存在", "inst-1", dto.CreateSwapRequest{CourseID: "course-1", SessionID: "nope", TargetInstructorID: "inst-enya"}, ErrSessionNotFound},
		{"替换人不存在", "inst-1", dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-2"}, ErrSwapTargetGone},
		{"未被安排", "inst-enya", dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-1"}, ErrSwapNotEligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tt.requester, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}

	if _, err := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"}); err != nil {
		t.Fatalf("首次申请应成功: %v", err)
	}
	_, err := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-cinzia"})
	if !errors.Is(err, ErrSwapNotEligible) {
		t.Errorf("重复申请期望 ErrSwapNotEligible，实际: %v", err)
	}
}

func TestSwapService_DecisionRights(t *testing.T) {
	svc, b, _ := setupSwap(t)
	ctx := context.Background()

	req, _ := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"})

	// course-1 的负责人是 inst-oliver，inst-cinzia 只负责 course-2
	if _, err := svc.Approve(ctx, req.SwapRequestID, mustUser(t, b, "inst-cinzia")); !errors.Is(err, ErrSwapForbidden) {
		t.Errorf("非本课程负责人审批期望 ErrSwapForbidden，实际: %v", err)
	}
	if got := svc.PendingFor(ctx, mustUser(t, b, "inst-cinzia")); len(got) != 0 {
		t.Errorf("inst-cinzia 不应看到该申请: %v", got)
	}
	pending := svc.PendingFor(ctx, mustUser(t, b, "inst-oliver"))
	if len(pending) != 1 || pending[0].RequesterName != "Max Mustermann" || pending[0].SessionDate != "2025-06-02" {
		t.Errorf("inst-oliver 应看到 1 条带展示信息的申请: %+v", pending)
	}
	if mine := svc.ListMine(ctx, "inst-1"); len(mine) != 1 {
		t.Errorf("申请人应看到自己的申请: %v", mine)
	}
}

func TestSwapService_DeletedCourseKeepsPending(t *testing.T) {
	svc, b, _ := setupSwap(t)
	ctx := context.Background()

	req, _ := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-3", TargetInstructorID: "inst-enya"})

	// 课时被移除后申请保持待审批
	c := mustCourse(t, b, "course-1")
	c.Sessions = c.Sessions[:2]
	if _, err := b.store.UpdateCourse(ctx, c); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}
	r, err := svc.Approve(ctx, req.SwapRequestID, mustUser(t, b, "admin-1"))
	if err != nil || r.Status != model.SwapStatusPending {
		t.Errorf("课时不存在时应保持 PENDING，实际 %v %v", r, err)
	}

	// 删除课程级联删除申请
	if err := b.store.DeleteCourse(ctx, "course-1"); err != nil {
		t.Fatalf("删除课程失败: %v", err)
	}
	if _, ok := b.store.Snapshot().SwapRequestByID(req.SwapRequestID); ok {
		t.Error("删除课程后其换班申请应被删除")
	}
}

func TestSwapService_ApproveWritesCourseBeforeRequest(t *testing.T) {
	b, repos := newRemoteTestBase(t)
	svc := NewSwapService(b)
	ctx := context.Background()

	req, err := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"})
	if err != nil {
		t.Fatalf("申请应成功: %v", err)
	}
	repos.log.reset()

	if _, err := svc.Approve(ctx, req.SwapRequestID, mustUser(t, b, "inst-oliver")); err != nil {
		t.Fatalf("审批应成功: %v", err)
	}

	got := repos.log.list()
	want := []string{"course.update", "swap.save:" + model.SwapStatusApproved}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("写入顺序应为 %v，实际 %v", want, got)
	}
}

func TestSwapService_ReapproveAfterRequestSaveFailed(t *testing.T) {
	b, repos := newRemoteTestBase(t)
	svc := NewSwapService(b)
	ctx := context.Background()
	approver := mustUser(t, b, "inst-oliver")

	req, err := svc.Request(ctx, "inst-1", &dto.CreateSwapRequest{CourseID: "course-1", SessionID: "s1-1", TargetInstructorID: "inst-enya"})
	if err != nil {
		t.Fatalf("申请应成功: %v", err)
	}

	// 课程已写入，申请状态写入失败
	repos.swaps.failSave = pkgerrors.ErrOptimisticLock
	if _, err := svc.Approve(ctx, req.SwapRequestID, approver); err == nil {
		t.Fatal("申请状态写入失败时审批应报错")
	}
	if b.store.IsDemoMode() {
		t.Fatal("不应降级为演示模式")
	}
	remoteCourse := repos.courses.courses["course-1"]
	if ids := remoteCourse.Sessions[remoteCourse.SessionIndex("s1-1")].InstructorIDs; !ids.Contains("inst-enya") || ids.Contains("inst-1") {
		t.Fatalf("课程应已完成替换，实际 %v", ids)
	}
	if repos.swaps.requests[req.SwapRequestID].Status != model.SwapStatusPending {
		t.Fatal("申请应仍为 PENDING")
	}

	repos.swaps.failSave = nil
	repos.log.reset()
	approved, err := svc.Approve(ctx, req.SwapRequestID, approver)
	if err != nil {
		t.Fatalf("重新审批应成功: %v", err)
	}
	if approved.Status != model.SwapStatusApproved {
		t.Errorf("状态应为 APPROVED，实际 %s", approved.Status)
	}
	if repos.swaps.requests[req.SwapRequestID].Status != model.SwapStatusApproved {
		t.Error("远端申请应为 APPROVED")
	}
	if got := repos.log.list(); len(got) != 2 || got[0] != "course.update" || got[1] != "swap.save:"+model.SwapStatusApproved {
		t.Errorf("重新审批的写入顺序不对: %v", got)
	}

	for name, c := range map[string]model.Course{
		"远端": repos.courses.courses["course-1"],
		"快照": mustCourse(t, b, "course-1"),
	} {
		ids := c.Sessions[c.SessionIndex("s1-1")].InstructorIDs
		n := 0
		for _, id := range ids {
			if id == "inst-enya" {
				n++
			}
		}
		if n != 1 || ids.Contains("inst-1") {
			t.Errorf("%s课时中替换人应恰好出现一次且申请人已移除，实际 %v", name, ids)
		}
	}
}
