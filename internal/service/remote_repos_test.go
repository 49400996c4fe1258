package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swim-admin/internal/model"
	"swim-admin/internal/repository"
	"swim-admin/internal/store"
	pkgerrors "swim-admin/pkg/errors"
)

// ── 记录写入顺序的内存仓储 ──

type journal struct {
	mu  sync.Mutex
	ops []string
}

func (j *journal) add(op string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
}

func (j *journal) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = nil
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ops...)
}

type journalUserRepo struct {
	users map[string]model.User
}

func (r *journalUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *journalUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *journalUserRepo) Save(_ context.Context, u *model.User) error {
	r.users[u.UserID] = *u
	return nil
}

func (r *journalUserRepo) BatchSave(_ context.Context, users []model.User) error {
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return nil
}

func (r *journalUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

type journalCourseRepo struct {
	log     *journal
	courses map[string]model.Course
}

func (r *journalCourseRepo) List(_ context.Context) ([]model.Course, error) {
	out := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (r *journalCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = c.Clone()
	return &c, nil
}

func (r *journalCourseRepo) Create(_ context.Context, c *model.Course) error {
	r.log.add("course.create")
	r.courses[c.CourseID] = c.Clone()
	return nil
}

func (r *journalCourseRepo) Update(_ context.Context, c *model.Course) error {
	old, ok := r.courses[c.CourseID]
	if !ok || old.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	r.log.add("course.update")
	c.Version++
	r.courses[c.CourseID] = c.Clone()
	return nil
}

func (r *journalCourseRepo) Delete(_ context.Context, id string) error {
	r.log.add("course.delete")
	delete(r.courses, id)
	return nil
}

type journalSwapRepo struct {
	log      *journal
	requests map[string]model.SwapRequest
	// failSave 非空时 Save 直接返回该错误
	failSave error
}

func (r *journalSwapRepo) List(_ context.Context) ([]model.SwapRequest, error) {
	out := make([]model.SwapRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SwapRequestID < out[j].SwapRequestID })
	return out, nil
}

func (r *journalSwapRepo) Save(_ context.Context, req *model.SwapRequest) error {
	if r.failSave != nil {
		r.log.add("swap.save.failed:" + req.Status)
		return r.failSave
	}
	r.log.add("swap.save:" + req.Status)
	r.requests[req.SwapRequestID] = *req
	return nil
}

func (r *journalSwapRepo) DeleteByCourse(_ context.Context, courseID string) error {
	r.log.add("swap.delete_by_course")
	for id, req := range r.requests {
		if req.CourseID == courseID {
			delete(r.requests, id)
		}
	}
	return nil
}

type journalRepos struct {
	log     *journal
	users   *journalUserRepo
	courses *journalCourseRepo
	swaps   *journalSwapRepo
}

// newRemoteTestBase 远端模式的 Store，课程取自演示数据，人员由 Store 初始化写入
func newRemoteTestBase(t *testing.T) (*base, *journalRepos) {
	t.Helper()
	seed, err := store.DemoSnapshot(testHasher())
	if err != nil {
		t.Fatalf("生成演示数据失败: %v", err)
	}
	log := &journal{}
	repos := &journalRepos{
		log:     log,
		users:   &journalUserRepo{users: map[string]model.User{}},
		courses: &journalCourseRepo{log: log, courses: map[string]model.Course{}},
		swaps:   &journalSwapRepo{log: log, requests: map[string]model.SwapRequest{}},
	}
	for _, c := range seed.Courses {
		repos.courses.courses[c.CourseID] = c.Clone()
	}

	st := store.New(&repository.Repository{
		User:        repos.users,
		Course:      repos.courses,
		SwapRequest: repos.swaps,
	}, testHasher(), zap.NewNop())
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("加载远端数据失败: %v", err)
	}
	if st.IsDemoMode() {
		t.Fatal("不应降级为演示模式")
	}
	b := newBase(Deps{
		Store:  st,
		Events: &recordingPublisher{},
		Logger: zap.NewNop(),
		Now:    func() time.Time { return testNow },
	})
	return b, repos
}
