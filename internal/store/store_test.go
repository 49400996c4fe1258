package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"swim-admin/internal/model"
	pkgerrors "swim-admin/pkg/errors"
	"swim-admin/pkg/password"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func testHasher() password.Hasher { return password.NewBcryptHasher(4) }

func newDemoStore(t *testing.T) *Store {
	t.Helper()
	s := New(nil, testHasher(), zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func newRemoteStore(t *testing.T, repos *mockRepos) *Store {
	t.Helper()
	s := New(repos.repository(), testHasher(), zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func sampleCourse(id string) model.Course {
	return model.Course{
		CourseID:            id,
		Title:               "Kraulkurs",
		LeaderID:            "inst-oliver",
		RequiredInstructors: 1,
		Sessions: []model.Session{
			{SessionID: id + "-s1", Date: "2026-05-04", StartTime: "16:00", DurationMinutes: 45, InstructorIDs: model.StringArray{"inst-1"}},
		},
	}
}

// ════════════════════════════════════════════════════════════
// 演示模式
// ════════════════════════════════════════════════════════════

func TestStore_NilRepoStartsInDemoMode(t *testing.T) {
	s := newDemoStore(t)

	assert.True(t, s.IsDemoMode())
	snap := s.Snapshot()
	assert.Len(t, snap.Users, 5)
	assert.Len(t, snap.Courses, 2)
	assert.Equal(t, InitialCourseTitles, snap.CourseTitles)

	u, ok := snap.UserByEmail("OLIVER@swim.de")
	require.True(t, ok)
	assert.NoError(t, testHasher().Verify(u.PasswordHash, "OliTsc"))
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	s := newDemoStore(t)

	snap := s.Snapshot()
	snap.Courses[0].Sessions[0].InstructorIDs[0] = "hijacked"
	snap.Users[0].Name = "changed"

	again := s.Snapshot()
	assert.Equal(t, "inst-1", again.Courses[0].Sessions[0].InstructorIDs[0])
	assert.NotEqual(t, "changed", again.Users[0].Name)
}

func TestStore_DemoUpdateChecksVersion(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	c, ok := s.Snapshot().CourseByID("course-1")
	require.True(t, ok)
	stale := c.Clone()

	c.Title = "Neu"
	updated, err := s.UpdateCourse(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Neu", updated.Title)

	stale.Title = "Alt"
	_, err = s.UpdateCourse(ctx, stale)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
}

func TestStore_DeleteCourseCascadesSwapRequests(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSwapRequest(ctx, model.SwapRequest{
		SwapRequestID: "swap-1", CourseID: "course-1", SessionID: "s1-1",
		RequestingInstructorID: "inst-1", TargetInstructorID: "inst-enya", Status: model.SwapStatusPending,
	}))
	require.NoError(t, s.SaveSwapRequest(ctx, model.SwapRequest{
		SwapRequestID: "swap-2", CourseID: "course-2", SessionID: "s2-1",
		RequestingInstructorID: "inst-2", TargetInstructorID: "inst-enya", Status: model.SwapStatusPending,
	}))

	require.NoError(t, s.DeleteCourse(ctx, "course-1"))

	snap := s.Snapshot()
	_, ok := snap.CourseByID("course-1")
	assert.False(t, ok)
	_, ok = snap.SwapRequestByID("swap-1")
	assert.False(t, ok)
	_, ok = snap.SwapRequestByID("swap-2")
	assert.True(t, ok)

	assert.ErrorIs(t, s.DeleteCourse(ctx, "course-1"), ErrNotFound)
}

func TestStore_DeleteUserKeepsAssignments(t *testing.T) {
	s := newDemoStore(t)

	require.NoError(t, s.DeleteUser(context.Background(), "inst-1"))

	snap := s.Snapshot()
	_, ok := snap.UserByID("inst-1")
	assert.False(t, ok)
	c, _ := snap.CourseByID("course-1")
	assert.True(t, c.Sessions[0].InstructorIDs.Contains("inst-1"))
}

func TestStore_AddCourseTitleDeduplicates(t *testing.T) {
	s := newDemoStore(t)

	assert.True(t, s.AddCourseTitle("Babyschwimmen"))
	assert.False(t, s.AddCourseTitle("babyschwimmen"))
	assert.False(t, s.AddCourseTitle("Kraulkurs"))
	assert.Len(t, s.Snapshot().CourseTitles, len(InitialCourseTitles)+1)
}

// ════════════════════════════════════════════════════════════
// 远端模式
// ════════════════════════════════════════════════════════════

func TestStore_RemoteBootstrapsUsers(t *testing.T) {
	repos := newMockRepos()
	s := newRemoteStore(t, repos)

	assert.False(t, s.IsDemoMode())
	assert.Len(t, repos.users.users, 5)
	assert.Len(t, s.Snapshot().Users, 5)
	assert.Empty(t, s.Snapshot().Courses)
}

func TestStore_RemoteBootstrapWarnsAdminAccounts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repos := newMockRepos()
	s := New(repos.repository(), testHasher(), zap.New(core))
	require.NoError(t, s.Load(context.Background()))

	entries := logs.FilterField(zap.Strings("admin_accounts", []string{"oliver@swim.de", "admin@swim.de"})).All()
	require.Len(t, entries, 1, "写入演示账号时应告警并列出管理员账号")
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestStore_RemoteBootstrapDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repos := newMockRepos()
	s := New(repos.repository(), testHasher(), zap.New(core), WithUserBootstrap(false))
	require.NoError(t, s.Load(context.Background()))

	assert.False(t, s.IsDemoMode())
	assert.Empty(t, repos.users.users, "关闭初始化后不应写入任何账号")
	assert.Empty(t, s.Snapshot().Users)
	assert.Equal(t, 1, logs.Len())
}

func TestStore_RemoteWriteThenRefresh(t *testing.T) {
	repos := newMockRepos()
	s := newRemoteStore(t, repos)
	ctx := context.Background()

	created, err := s.CreateCourse(ctx, sampleCourse("c-remote"))
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.Contains(t, repos.courses.courses, "c-remote")

	created.Title = "Geändert"
	updated, err := s.UpdateCourse(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Geändert", repos.courses.courses["c-remote"].Title)

	_, err = s.UpdateCourse(ctx, created)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	assert.False(t, s.IsDemoMode(), "乐观锁冲突不应触发降级")
}

func TestStore_RemoteNotFoundIsNotDegrade(t *testing.T) {
	repos := newMockRepos()
	s := newRemoteStore(t, repos)

	err := s.DeleteUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.IsDemoMode())
}

func TestStore_RemoteFailureDegradesPermanently(t *testing.T) {
	repos := newMockRepos()
	s := newRemoteStore(t, repos)
	ctx := context.Background()

	repos.failAll(errConnRefused)

	created, err := s.CreateCourse(ctx, sampleCourse("c-local"))
	require.NoError(t, err, "降级后变更应在内存中完成")
	assert.True(t, s.IsDemoMode())
	assert.Equal(t, "c-local", created.CourseID)
	_, ok := s.Snapshot().CourseByID("c-local")
	assert.True(t, ok)

	// 远端恢复后仍停留在演示模式
	repos.failAll(nil)
	created.Title = "Nur lokal"
	_, err = s.UpdateCourse(ctx, created)
	require.NoError(t, err)
	assert.True(t, s.IsDemoMode())
	assert.NotContains(t, repos.courses.courses, "c-local")
}

func TestStore_LoadFailureSeedsDemoData(t *testing.T) {
	repos := newMockRepos()
	repos.failAll(errConnRefused)

	s := New(repos.repository(), testHasher(), zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	assert.True(t, s.IsDemoMode())
	assert.Len(t, s.Snapshot().Courses, 2)
}
