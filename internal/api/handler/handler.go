package handler

import "swim-admin/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Course     *CourseHandler
	Swap       *SwapHandler
	Automation *AutomationHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course),
		Swap:       NewSwapHandler(svc.Swap),
		Automation: NewAutomationHandler(svc.Automation),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Export:     NewExportHandler(svc.Export),
	}
}
