package service

import (
	"context"

	"swim-admin/internal/dto"
)

// DashboardService 管理层看板：人员监控与财务概览
type DashboardService interface {
	CriticalSessions(ctx context.Context) []dto.CriticalSession
	FinanceOverview(ctx context.Context) dto.FinanceOverview
}

type dashboardService struct {
	*base
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(b *base) DashboardService {
	return &dashboardService{base: b}
}

func (s *dashboardService) CriticalSessions(ctx context.Context) []dto.CriticalSession {
	snap := s.store.Snapshot()
	return CriticalSessions(snap.Courses, snap.UserMap(), s.today())
}

func (s *dashboardService) FinanceOverview(ctx context.Context) dto.FinanceOverview {
	snap := s.store.Snapshot()
	return FinanceOverview(snap.Courses, snap.UserMap())
}
