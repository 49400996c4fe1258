package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"swim-admin/internal/model"
	"swim-admin/internal/store"
	"swim-admin/pkg/password"
)

// ── 测试辅助 ──

// 演示数据中 course-1 的首个课时为 2025-06-02
var testNow = time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)

func testHasher() password.Hasher { return password.NewBcryptHasher(4) }

// newTestBase 演示模式的 Store + 固定时钟
func newTestBase(t *testing.T) (*base, *recordingPublisher) {
	t.Helper()
	st := store.New(nil, testHasher(), zap.NewNop())
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("加载演示数据失败: %v", err)
	}
	pub := &recordingPublisher{}
	b := newBase(Deps{
		Store:  st,
		Events: pub,
		Logger: zap.NewNop(),
		Now:    func() time.Time { return testNow },
	})
	return b, pub
}

func mustCourse(t *testing.T, b *base, id string) model.Course {
	t.Helper()
	c, ok := b.store.Snapshot().CourseByID(id)
	if !ok {
		t.Fatalf("课程 %s 不存在", id)
	}
	return c
}

func mustUser(t *testing.T, b *base, id string) *model.User {
	t.Helper()
	u, ok := b.store.Snapshot().UserByID(id)
	if !ok {
		t.Fatalf("人员 %s 不存在", id)
	}
	return &u
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('a'+n-1))
	}
}

// ── 测试替身 ──

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	fail     error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.fail
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fakeLocker struct {
	held map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(l.held, key)
	return nil
}

type fakeBlacklist struct {
	jtis map[string]time.Duration
}

func (b *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.jtis[jti] = ttl
	return nil
}
