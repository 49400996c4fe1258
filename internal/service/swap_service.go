package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/internal/store"
	"swim-admin/pkg/events"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapSelfTarget  = errors.New("不能与自己换班")
	ErrSwapNotEligible = errors.New("未被安排到该课时，或已有待审批的申请")
	ErrSwapTargetGone  = errors.New("替换人员不存在")
	ErrSwapForbidden   = errors.New("只有管理员或课程负责人可以审批")
)

// SwapService 换班业务接口
//
// 状态流转：PENDING → APPROVED | REJECTED，终态不再变化。
// 审批、驳回找不到申请时不做任何事并返回 nil。
type SwapService interface {
	Request(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*model.SwapRequest, error)
	Approve(ctx context.Context, requestID string, approver *model.User) (*model.SwapRequest, error)
	Reject(ctx context.Context, requestID string, approver *model.User) (*model.SwapRequest, error)
	// PendingFor 该用户有权审批的待处理申请
	PendingFor(ctx context.Context, viewer *model.User) []dto.SwapRequestView
	// ListMine 该用户发起的全部申请
	ListMine(ctx context.Context, instructorID string) []dto.SwapRequestView
}

type swapService struct {
	*base
	newID func() string
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(b *base) SwapService {
	return &swapService{base: b, newID: uuid.NewString}
}

func (s *swapService) Request(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*model.SwapRequest, error) {
	if req.TargetInstructorID == requesterID {
		return nil, ErrSwapSelfTarget
	}

	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(req.CourseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	idx := course.SessionIndex(req.SessionID)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}
	if _, ok := snap.UserByID(req.TargetInstructorID); !ok {
		return nil, ErrSwapTargetGone
	}
	if !CanRequestSwap(requesterID, &course.Sessions[idx], snap.SwapRequests) {
		return nil, ErrSwapNotEligible
	}

	r := model.SwapRequest{
		SwapRequestID:          s.newID(),
		CourseID:               req.CourseID,
		SessionID:              req.SessionID,
		RequestingInstructorID: requesterID,
		TargetInstructorID:     req.TargetInstructorID,
		Status:                 model.SwapStatusPending,
		CreatedAt:              s.now(),
	}
	if err := s.store.SaveSwapRequest(ctx, r); err != nil {
		s.logger.Error("保存换班申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("换班申请已提交",
		zap.String("swap_request_id", r.SwapRequestID),
		zap.String("session_id", r.SessionID),
	)
	return &r, nil
}

func (s *swapService) Approve(ctx context.Context, requestID string, approver *model.User) (*model.SwapRequest, error) {
	snap := s.store.Snapshot()
	r, ok := snap.SwapRequestByID(requestID)
	if !ok {
		return nil, nil
	}
	if !r.IsPending() {
		return &r, nil
	}

	course, courseOK := snap.CourseByID(r.CourseID)
	var coursePtr *model.Course
	if courseOK {
		coursePtr = &course
	}
	if !CanDecideSwap(approver, coursePtr) {
		return nil, ErrSwapForbidden
	}
	if !courseOK {
		s.logger.Warn("换班申请引用的课程不存在，保持待审批", zap.String("swap_request_id", requestID))
		return &r, nil
	}
	idx := course.SessionIndex(r.SessionID)
	if idx < 0 {
		s.logger.Warn("换班申请引用的课时不存在，保持待审批", zap.String("swap_request_id", requestID))
		return &r, nil
	}

	// 先写课程，再更新申请状态
	ApplySwap(&course.Sessions[idx], r.RequestingInstructorID, r.TargetInstructorID)
	if _, err := s.store.UpdateCourse(ctx, course); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &r, nil
		}
		return nil, err
	}

	s.resolve(&r, model.SwapStatusApproved, approver.UserID)
	if err := s.store.SaveSwapRequest(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("换班申请已通过",
		zap.String("swap_request_id", requestID),
		zap.String("approved_by", approver.UserID),
	)
	s.publish(ctx, events.SubjectSwapApproved, r)
	return &r, nil
}

func (s *swapService) Reject(ctx context.Context, requestID string, approver *model.User) (*model.SwapRequest, error) {
	snap := s.store.Snapshot()
	r, ok := snap.SwapRequestByID(requestID)
	if !ok {
		return nil, nil
	}
	if !r.IsPending() {
		return &r, nil
	}

	var coursePtr *model.Course
	if course, ok := snap.CourseByID(r.CourseID); ok {
		coursePtr = &course
	}
	if !CanDecideSwap(approver, coursePtr) {
		return nil, ErrSwapForbidden
	}

	s.resolve(&r, model.SwapStatusRejected, approver.UserID)
	if err := s.store.SaveSwapRequest(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("换班申请已驳回",
		zap.String("swap_request_id", requestID),
		zap.String("rejected_by", approver.UserID),
	)
	return &r, nil
}

func (s *swapService) resolve(r *model.SwapRequest, status, by string) {
	now := s.now()
	r.Status = status
	r.ResolvedAt = &now
	r.ResolvedBy = &by
}

func (s *swapService) PendingFor(ctx context.Context, viewer *model.User) []dto.SwapRequestView {
	snap := s.store.Snapshot()
	out := make([]dto.SwapRequestView, 0)
	for _, r := range snap.SwapRequests {
		if !r.IsPending() {
			continue
		}
		var coursePtr *model.Course
		if c, ok := snap.CourseByID(r.CourseID); ok {
			coursePtr = &c
		}
		if CanDecideSwap(viewer, coursePtr) {
			out = append(out, toSwapView(&snap, r))
		}
	}
	sortViews(out)
	return out
}

func (s *swapService) ListMine(ctx context.Context, instructorID string) []dto.SwapRequestView {
	snap := s.store.Snapshot()
	out := make([]dto.SwapRequestView, 0)
	for _, r := range snap.SwapRequests {
		if r.RequestingInstructorID == instructorID {
			out = append(out, toSwapView(&snap, r))
		}
	}
	sortViews(out)
	return out
}

func toSwapView(snap *store.Snapshot, r model.SwapRequest) dto.SwapRequestView {
	v := dto.SwapRequestView{SwapRequest: r}
	if c, ok := snap.CourseByID(r.CourseID); ok {
		v.CourseTitle = c.Title
		if i := c.SessionIndex(r.SessionID); i >= 0 {
			v.SessionDate = c.Sessions[i].Date
			v.SessionTime = c.Sessions[i].StartTime
		}
	}
	if u, ok := snap.UserByID(r.RequestingInstructorID); ok {
		v.RequesterName = u.Name
	}
	if u, ok := snap.UserByID(r.TargetInstructorID); ok {
		v.TargetName = u.Name
	}
	return v
}

func sortViews(v []dto.SwapRequestView) {
	sort.SliceStable(v, func(i, j int) bool { return v[i].CreatedAt.Before(v[j].CreatedAt) })
}
