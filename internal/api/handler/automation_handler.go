package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/service"
	"swim-admin/pkg/response"
)

// AutomationHandler 出勤表自动提醒 HTTP 处理器
type AutomationHandler struct {
	automationSvc service.AutomationService
}

// NewAutomationHandler 创建 AutomationHandler
func NewAutomationHandler(automationSvc service.AutomationService) *AutomationHandler {
	return &AutomationHandler{automationSvc: automationSvc}
}

// ListDue 今天应发送出勤表的课程
// GET /api/v1/automation/due
func (h *AutomationHandler) ListDue(c *gin.Context) {
	due, err := h.automationSvc.Due(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.List(c, due, len(due))
}

// Dispatch 生成出勤表邮件草稿并标记为已发送
// POST /api/v1/courses/:id/attendance/dispatch
func (h *AutomationHandler) Dispatch(c *gin.Context) {
	result, err := h.automationSvc.Dispatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttendanceAlreadySent):
			response.Conflict(c, 15001, "出勤表已发送")
		case errors.Is(err, service.ErrCourseLeaderMissing):
			response.BadRequest(c, 15002, "课程未设置负责人")
		case errors.Is(err, service.ErrLeaderNoEmail):
			response.BadRequest(c, 15003, "课程负责人没有邮箱")
		case errors.Is(err, service.ErrDispatchInProgress):
			response.Conflict(c, 15004, "出勤表正在发送中")
		default:
			handleCourseError(c, err)
		}
		return
	}
	response.OK(c, result)
}

// Tomorrow 明日课时
// GET /api/v1/automation/tomorrow
func (h *AutomationHandler) Tomorrow(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	list, err := h.automationSvc.Tomorrow(c.Request.Context(), viewer)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.List(c, list, len(list))
}
