package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swim-admin/config"
	"swim-admin/pkg/jwt"
	"swim-admin/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

type fakeChecker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeLimiter struct {
	calls int
	limit int
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	f.calls++
	return f.calls <= f.limit, nil
}

type fakeMode bool

func (m fakeMode) IsDemoMode() bool { return bool(m) }

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func jtiOf(t *testing.T, m *jwt.Manager, token string) string {
	t.Helper()
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	return claims.ID
}

// ════════════════════════════════════════════════════════════
// JWTAuth
// ════════════════════════════════════════════════════════════

func TestJWTAuth_SetsClaims(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAccessToken("inst-oliver", "INSTRUCTOR", true)

	var gotID string
	var gotAdmin bool
	var gotExp time.Time
	r := gin.New()
	r.GET("/p", JWTAuth(m, nil, zap.NewNop()), func(c *gin.Context) {
		gotID = c.GetString("user_id")
		gotAdmin = c.GetBool("is_admin")
		gotExp = c.GetTime("token_exp")
		c.Status(http.StatusOK)
	})

	w := doRequest(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "inst-oliver" || !gotAdmin {
		t.Errorf("上下文信息错误: id=%q admin=%v", gotID, gotAdmin)
	}
	if gotExp.IsZero() {
		t.Error("token_exp 未设置")
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	m := newTestManager()
	refresh, _ := m.GenerateRefreshToken("inst-1", "INSTRUCTOR", false)

	r := gin.New()
	r.GET("/p", JWTAuth(m, nil, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for name, token := range map[string]string{"missing": "", "garbage": "abc", "refresh": refresh} {
		if w := doRequest(r, token); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAccessToken("inst-1", "INSTRUCTOR", false)
	checker := &fakeChecker{revoked: map[string]bool{jtiOf(t, m, token): true}}

	r := gin.New()
	r.GET("/p", JWTAuth(m, checker, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := doRequest(r, token); w.Code != http.StatusUnauthorized {
		t.Errorf("已注销 Token 应返回 401, got %d", w.Code)
	}

	// Redis 不可用时放行
	checker.err = errors.New("redis down")
	checker.revoked = nil
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("黑名单检查失败应降级放行, got %d", w.Code)
	}
}

// ════════════════════════════════════════════════════════════
// RoleAuth
// ════════════════════════════════════════════════════════════

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		isAdmin bool
		want    int
	}{
		{"allowed role", "LEADER", false, http.StatusOK},
		{"other role", "INSTRUCTOR", false, http.StatusForbidden},
		{"admin flag overrides role", "INSTRUCTOR", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", func(c *gin.Context) {
				c.Set("role", tt.role)
				c.Set("is_admin", tt.isAdmin)
			}, RoleAuth("ADMIN", "LEADER"), func(c *gin.Context) { c.Status(http.StatusOK) })

			if w := doRequest(r, ""); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════
// RateLimit / DemoMode
// ════════════════════════════════════════════════════════════

func TestRateLimit(t *testing.T) {
	lim := &fakeLimiter{limit: 2}
	r := gin.New()
	r.GET("/p", RateLimit(lim, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := doRequest(r, ""); w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求应放行, got %d", i+1, w.Code)
		}
	}
	if w := doRequest(r, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestRateLimit_NilPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/p", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := doRequest(r, ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}
}

func TestDemoMode_MarksResponse(t *testing.T) {
	for _, demo := range []bool{true, false} {
		r := gin.New()
		r.GET("/p", DemoMode(fakeMode(demo)), func(c *gin.Context) { response.OK(c, "x") })

		w := doRequest(r, "")
		var resp response.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("响应解析失败: %v", err)
		}
		if resp.DemoMode != demo {
			t.Errorf("demo=%v: got demo_mode=%v", demo, resp.DemoMode)
		}
	}
}

// ════════════════════════════════════════════════════════════
// RequestID / BodyLimit / CORS
// ════════════════════════════════════════════════════════════

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	tests := []struct {
		name  string
		in    string
		keeps bool
	}{
		{"caller id", "abc-123_x.y", true},
		{"missing", "", false},
		{"log injection", "abc\nlevel=error", false},
		{"too long", string(bytes.Repeat([]byte("a"), 65)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/p", nil)
			if tt.in != "" {
				req.Header.Set("X-Request-ID", tt.in)
			}
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if got != w.Body.String() {
				t.Errorf("响应头与上下文不一致: %q vs %q", got, w.Body.String())
			}
			if tt.keeps && got != tt.in {
				t.Errorf("应沿用调用方 ID %q, got %q", tt.in, got)
			}
			if !tt.keeps && (got == tt.in || len(got) != 36) {
				t.Errorf("应生成 UUID, got %q", got)
			}
		})
	}
}

func TestBodyLimit_RejectsDeclaredLength(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", bytes.NewReader([]byte("0123456789"))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", bytes.NewReader([]byte("0123"))))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求应返回 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("允许的来源未回显")
	}
	if w.Header().Get("Access-Control-Expose-Headers") == "" {
		t.Error("Content-Disposition 未暴露")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未允许的来源不应设置 CORS 头")
	}
}
