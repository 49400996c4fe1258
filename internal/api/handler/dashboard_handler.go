package handler

import (
	"github.com/gin-gonic/gin"

	"swim-admin/internal/service"
	"swim-admin/pkg/response"
)

// DashboardHandler 管理层看板 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// CriticalSessions 人员不足的未来课时
// GET /api/v1/dashboard/critical-sessions
func (h *DashboardHandler) CriticalSessions(c *gin.Context) {
	list := h.dashboardSvc.CriticalSessions(c.Request.Context())
	response.List(c, list, len(list))
}

// Finance 财务概览
// GET /api/v1/dashboard/finance
func (h *DashboardHandler) Finance(c *gin.Context) {
	response.OK(c, h.dashboardSvc.FinanceOverview(c.Request.Context()))
}
