package store

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"swim-admin/internal/model"
	"swim-admin/internal/repository"
	pkgerrors "swim-admin/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]model.User
	fail  error
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) Save(_ context.Context, user *model.User) error {
	if m.fail != nil {
		return m.fail
	}
	m.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) BatchSave(_ context.Context, users []model.User) error {
	if m.fail != nil {
		return m.fail
	}
	for _, u := range users {
		m.users[u.UserID] = u
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]model.Course
	fail    error
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = c.Clone()
	return &c, nil
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if m.fail != nil {
		return m.fail
	}
	m.courses[course.CourseID] = course.Clone()
	return nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	if m.fail != nil {
		return m.fail
	}
	old, ok := m.courses[course.CourseID]
	if !ok || old.Version != course.Version {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version++
	m.courses[course.CourseID] = course.Clone()
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, id)
	return nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRepo struct {
	requests map[string]model.SwapRequest
	fail     error
}

func (m *mockSwapRepo) List(_ context.Context) ([]model.SwapRequest, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]model.SwapRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SwapRequestID < out[j].SwapRequestID })
	return out, nil
}

func (m *mockSwapRepo) Save(_ context.Context, req *model.SwapRequest) error {
	if m.fail != nil {
		return m.fail
	}
	m.requests[req.SwapRequestID] = *req
	return nil
}

func (m *mockSwapRepo) DeleteByCourse(_ context.Context, courseID string) error {
	if m.fail != nil {
		return m.fail
	}
	for id, r := range m.requests {
		if r.CourseID == courseID {
			delete(m.requests, id)
		}
	}
	return nil
}

type mockRepos struct {
	users   *mockUserRepo
	courses *mockCourseRepo
	swaps   *mockSwapRepo
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		users:   &mockUserRepo{users: map[string]model.User{}},
		courses: &mockCourseRepo{courses: map[string]model.Course{}},
		swaps:   &mockSwapRepo{requests: map[string]model.SwapRequest{}},
	}
}

func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		User:        m.users,
		Course:      m.courses,
		SwapRequest: m.swaps,
	}
}

func (m *mockRepos) failAll(err error) {
	m.users.fail = err
	m.courses.fail = err
	m.swaps.fail = err
}
