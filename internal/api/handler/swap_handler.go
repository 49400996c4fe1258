package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/internal/service"
	"swim-admin/pkg/response"
)

// SwapHandler 换班模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// CreateRequest 发起换班申请（申请人为当前用户）
// POST /api/v1/swaps
func (h *SwapHandler) CreateRequest(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.swapSvc.Request(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, result)
}

// ListMine 我发起的申请
// GET /api/v1/swaps/mine
func (h *SwapHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.swapSvc.ListMine(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// ListPending 当前用户可审批的待处理申请
// GET /api/v1/swaps/pending
func (h *SwapHandler) ListPending(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	list := h.swapSvc.PendingFor(c.Request.Context(), viewer)
	response.List(c, list, len(list))
}

// Approve 通过申请；申请不存在时返回 200 且 data 为空
// POST /api/v1/swaps/:id/approve
func (h *SwapHandler) Approve(c *gin.Context) {
	h.decide(c, h.swapSvc.Approve)
}

// Reject 驳回申请
// POST /api/v1/swaps/:id/reject
func (h *SwapHandler) Reject(c *gin.Context) {
	h.decide(c, h.swapSvc.Reject)
}

type decideFunc func(ctx context.Context, requestID string, approver *model.User) (*model.SwapRequest, error)

func (h *SwapHandler) decide(c *gin.Context, fn decideFunc) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *SwapHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapSelfTarget):
		response.BadRequest(c, 14001, "不能与自己换班")
	case errors.Is(err, service.ErrSwapNotEligible):
		response.BadRequest(c, 14002, "未被安排到该课时，或已有待审批的申请")
	case errors.Is(err, service.ErrSwapTargetGone):
		response.BadRequest(c, 14003, "替换人员不存在")
	case errors.Is(err, service.ErrSwapForbidden):
		response.Forbidden(c, 14004, "只有管理员或课程负责人可以审批")
	default:
		handleCourseError(c, err)
	}
}
