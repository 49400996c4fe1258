package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"swim-admin/config"
	"swim-admin/internal/store"
	"swim-admin/pkg/events"
	"swim-admin/pkg/jwt"
	"swim-admin/pkg/password"
)

// TokenBlacklist 注销时吊销 Token（Redis 可选）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Locker 短期互斥键（Redis 可选）
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Deps 构造 Service 所需的外部依赖。Blacklist / Locker 可为 nil。
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	JWT       *jwt.Manager
	Hasher    password.Hasher
	Events    events.Publisher
	Blacklist TokenBlacklist
	Locker    Locker
	Logger    *zap.Logger
	Now       func() time.Time
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Course     CourseService
	Swap       SwapService
	Automation AutomationService
	Dashboard  DashboardService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	b := newBase(d)
	var calendarName string
	if d.Config != nil {
		calendarName = d.Config.Automation.CalendarName
	}
	export := NewExportService(b, calendarName)
	return &Service{
		Auth:       NewAuthService(b, d.JWT, d.Hasher, d.Blacklist),
		User:       NewUserService(b, d.Hasher),
		Course:     NewCourseService(b),
		Swap:       NewSwapService(b),
		Automation: NewAutomationService(b, d.Locker, export),
		Dashboard:  NewDashboardService(b),
		Export:     export,
	}
}

// base 各 Service 共享的状态与时钟
type base struct {
	store  *store.Store
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
}

func newBase(d Deps) *base {
	b := &base{
		store:  d.Store,
		events: d.Events,
		logger: d.Logger,
		now:    d.Now,
		loc:    time.UTC,
	}
	if b.events == nil {
		b.events = events.NopPublisher{}
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if d.Config != nil {
		b.loc = d.Config.Automation.Location()
	}
	return b
}

// today 配置时区下的当前日期
func (b *base) today() string {
	return DateOf(b.now(), b.loc)
}

// publish 发布事件，失败只记录日志
func (b *base) publish(ctx context.Context, subject string, payload interface{}) {
	if err := b.events.Publish(ctx, subject, payload); err != nil {
		b.logger.Warn("事件发布失败", zap.String("subject", subject), zap.Error(err))
	}
}
