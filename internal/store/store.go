// Package store 维护应用状态，并在远端数据库与内存之间做持久化适配。
//
// 远端写入成功后会重新拉取完整状态；远端出现非业务错误时，Store 记录告警并
// 永久切换为演示模式，此后所有变更只作用于内存。
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swim-admin/internal/model"
	"swim-admin/internal/repository"
	pkgerrors "swim-admin/pkg/errors"
	"swim-admin/pkg/password"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// Store 应用状态对象
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	repo   *repository.Repository
	hasher password.Hasher
	demo   atomic.Bool
	logger *zap.Logger
	now    func() time.Time

	bootstrapUsers bool
}

// Option Store 构造选项
type Option func(*Store)

// WithUserBootstrap 远端人员表为空时是否写入演示账号（默认写入）
func WithUserBootstrap(enabled bool) Option {
	return func(s *Store) { s.bootstrapUsers = enabled }
}

// New 创建 Store。repo 为 nil 时直接以演示模式运行。
func New(repo *repository.Repository, hasher password.Hasher, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		repo:           repo,
		hasher:         hasher,
		logger:         logger,
		now:            time.Now,
		bootstrapUsers: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if repo == nil {
		s.demo.Store(true)
	}
	return s
}

// IsDemoMode 是否处于演示模式（仅内存）
func (s *Store) IsDemoMode() bool {
	return s.demo.Load()
}

// Snapshot 返回当前状态的独立副本
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Load 初始化状态：演示模式加载演示数据，否则从远端拉取
func (s *Store) Load(ctx context.Context) error {
	if s.IsDemoMode() {
		return s.seedDemo()
	}
	return s.Refresh(ctx)
}

// Refresh 从远端重新拉取完整状态。
// 远端人员为空且允许初始化时写入演示人员作为初始账号。失败则切换为演示模式。
func (s *Store) Refresh(ctx context.Context) error {
	if s.IsDemoMode() {
		return nil
	}

	users, err := s.repo.User.List(ctx)
	if err == nil && len(users) == 0 {
		users, err = s.bootstrap(ctx)
	}
	if err != nil {
		return s.degrade("refresh", err)
	}
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		return s.degrade("refresh", err)
	}
	swaps, err := s.repo.SwapRequest.List(ctx)
	if err != nil {
		return s.degrade("refresh", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	titles := s.snap.CourseTitles
	if len(titles) == 0 {
		titles = append([]string(nil), InitialCourseTitles...)
	}
	s.snap = Snapshot{
		Users:        users,
		Courses:      courses,
		SwapRequests: swaps,
		CourseTitles: titles,
	}
	if s.snap.SwapRequests == nil {
		s.snap.SwapRequests = []model.SwapRequest{}
	}
	return nil
}

// bootstrap 写入演示账号。其口令按姓名规则生成、可被猜到，因此逐个告警管理员账号。
func (s *Store) bootstrap(ctx context.Context) ([]model.User, error) {
	if !s.bootstrapUsers {
		s.logger.Warn("远端人员表为空且未启用初始账号，当前无人可以登录")
		return []model.User{}, nil
	}
	users, err := hashedDemoUsers(s.hasher)
	if err != nil {
		return nil, err
	}
	if err := s.repo.User.BatchSave(ctx, users); err != nil {
		return nil, err
	}
	var admins []string
	for _, u := range users {
		if u.IsAdmin || u.Role == model.RoleAdmin {
			admins = append(admins, u.Email)
		}
	}
	s.logger.Warn("远端人员为空，已写入演示账号；口令按姓名规则生成，请立即重置管理员口令",
		zap.Int("count", len(users)),
		zap.Strings("admin_accounts", admins),
	)
	return users, nil
}

func (s *Store) seedDemo() error {
	snap, err := DemoSnapshot(s.hasher)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

// degrade 切换为演示模式。状态尚为空时装入演示数据。
func (s *Store) degrade(op string, cause error) error {
	if s.demo.CompareAndSwap(false, true) {
		s.logger.Warn("远端存储不可用，切换到演示模式",
			zap.String("op", op),
			zap.Error(cause),
		)
	}
	s.mu.RLock()
	empty := len(s.snap.Users) == 0 && len(s.snap.Courses) == 0
	s.mu.RUnlock()
	if empty {
		return s.seedDemo()
	}
	return nil
}

// mutate 执行一次变更：先写远端，业务错误直接返回；
// 远端不可用时降级，随后在内存副本上执行 local 并替换快照。
func (s *Store) mutate(ctx context.Context, op string, remote func(ctx context.Context) error, local func(next *Snapshot) error) error {
	if !s.IsDemoMode() {
		err := remote(ctx)
		switch {
		case err == nil:
			if s.Refresh(ctx) == nil && !s.IsDemoMode() {
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotFound
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return pkgerrors.ErrOptimisticLock
		default:
			if derr := s.degrade(op, err); derr != nil {
				return derr
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap.Clone()
	if err := local(&next); err != nil {
		return err
	}
	s.snap = next
	return nil
}

// ════════════════════════════════════════════════════════════
// 人员
// ════════════════════════════════════════════════════════════

// SaveUser 新增或覆盖人员
func (s *Store) SaveUser(ctx context.Context, u model.User) error {
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return s.mutate(ctx, "save_user",
		func(ctx context.Context) error {
			remote := u
			return s.repo.User.Save(ctx, &remote)
		},
		func(next *Snapshot) error {
			next.upsertUser(u)
			return nil
		},
	)
}

// DeleteUser 删除人员，课时中的引用保持不变
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_user",
		func(ctx context.Context) error {
			return s.repo.User.Delete(ctx, id)
		},
		func(next *Snapshot) error {
			if !next.removeUser(id) {
				return ErrNotFound
			}
			return nil
		},
	)
}

// ════════════════════════════════════════════════════════════
// 课程
// ════════════════════════════════════════════════════════════

// CreateCourse 新增课程，返回写入后的课程
func (s *Store) CreateCourse(ctx context.Context, c model.Course) (model.Course, error) {
	now := s.now()
	c.Version = 1
	c.CreatedAt, c.UpdatedAt = now, now
	err := s.mutate(ctx, "create_course",
		func(ctx context.Context) error {
			remote := c.Clone()
			return s.repo.Course.Create(ctx, &remote)
		},
		func(next *Snapshot) error {
			next.Courses = append(next.Courses, c.Clone())
			return nil
		},
	)
	if err != nil {
		return model.Course{}, err
	}
	return s.courseAfterWrite(c), nil
}

// UpdateCourse 以 version 做乐观锁更新课程，返回新版本
func (s *Store) UpdateCourse(ctx context.Context, c model.Course) (model.Course, error) {
	err := s.mutate(ctx, "update_course",
		func(ctx context.Context) error {
			remote := c.Clone()
			return s.repo.Course.Update(ctx, &remote)
		},
		func(next *Snapshot) error {
			i := next.courseIndex(c.CourseID)
			if i < 0 {
				return ErrNotFound
			}
			if next.Courses[i].Version != c.Version {
				return pkgerrors.ErrOptimisticLock
			}
			updated := c.Clone()
			updated.Version = c.Version + 1
			updated.CreatedAt = next.Courses[i].CreatedAt
			updated.UpdatedAt = s.now()
			next.Courses[i] = updated
			return nil
		},
	)
	if err != nil {
		return model.Course{}, err
	}
	return s.courseAfterWrite(c), nil
}

// DeleteCourse 删除课程，并级联删除其换班申请
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_course",
		func(ctx context.Context) error {
			if err := s.repo.SwapRequest.DeleteByCourse(ctx, id); err != nil {
				return err
			}
			return s.repo.Course.Delete(ctx, id)
		},
		func(next *Snapshot) error {
			if !next.removeCourse(id) {
				return ErrNotFound
			}
			return nil
		},
	)
}

func (s *Store) courseAfterWrite(fallback model.Course) model.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.snap.CourseByID(fallback.CourseID); ok {
		return c
	}
	return fallback
}

// ════════════════════════════════════════════════════════════
// 换班申请
// ════════════════════════════════════════════════════════════

// SaveSwapRequest 新增或更新换班申请
func (s *Store) SaveSwapRequest(ctx context.Context, r model.SwapRequest) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	return s.mutate(ctx, "save_swap_request",
		func(ctx context.Context) error {
			remote := r
			return s.repo.SwapRequest.Save(ctx, &remote)
		},
		func(next *Snapshot) error {
			next.upsertSwapRequest(r)
			return nil
		},
	)
}

// ════════════════════════════════════════════════════════════
// 课程标题
// ════════════════════════════════════════════════════════════

// AddCourseTitle 添加标题建议（仅内存，不区分大小写去重），返回是否新增
func (s *Store) AddCourseTitle(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap.Clone()
	added := next.addTitle(title)
	s.snap = next
	return added
}
