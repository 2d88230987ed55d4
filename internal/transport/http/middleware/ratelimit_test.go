package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rrhh/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func send(h http.Handler, method, path, remote, body string, user *auth.UserContext) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = remote
	if user != nil {
		req = req.WithContext(WithUser(context.Background(), *user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitKeysByUserAcrossAddresses(t *testing.T) {
	h := RateLimit(1, time.Minute)(noContent)
	admin := auth.UserContext{UserID: 11, Role: auth.RoleAdmin}

	if rec := send(h, http.MethodGet, "/api/employees", "198.51.100.11:2222", "", &admin); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := send(h, http.MethodGet, "/api/employees", "198.51.100.12:3333", "", &admin); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same user from another address to be limited, got %d", rec.Code)
	}
	other := auth.UserContext{UserID: 12, Role: auth.RoleEmployee}
	if rec := send(h, http.MethodGet, "/api/employees", "198.51.100.12:3333", "", &other); rec.Code != http.StatusNoContent {
		t.Fatalf("expected a different user to have its own bucket, got %d", rec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	h := RateLimit(1, time.Minute)(noContent)
	if rec := send(h, http.MethodGet, "/", "203.0.113.10:4444", "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := send(h, http.MethodGet, "/", "203.0.113.10:5555", "", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request from the same ip to be limited, got %d", rec.Code)
	}
}

func TestRateLimitRefills(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)}
	h := RateLimit(2, time.Minute, withClock(clock.Now))(noContent)

	for i := 0; i < 2; i++ {
		if rec := send(h, http.MethodGet, "/", "192.0.2.20:1", "", nil); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected pass, got %d", i+1, rec.Code)
		}
	}
	rec := send(h, http.MethodGet, "/", "192.0.2.20:1", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected burst to be exhausted, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}

	clock.Advance(30 * time.Second)
	if rec := send(h, http.MethodGet, "/", "192.0.2.20:1", "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected one token after half a window, got %d", rec.Code)
	}
	if rec := send(h, http.MethodGet, "/", "192.0.2.20:1", "", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected only one token to have refilled, got %d", rec.Code)
	}
}

func TestRateLimitHeaders(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)}
	h := RateLimit(4, time.Minute, withClock(clock.Now))(noContent)

	rec := send(h, http.MethodGet, "/", "192.0.2.30:1", "", nil)
	if rec.Header().Get("X-RateLimit-Limit") != "4" || rec.Header().Get("X-RateLimit-Remaining") != "3" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}
	if rec.Header().Get("X-RateLimit-Reset") != "15" {
		t.Fatalf("expected reset in 15s, got %q", rec.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute)(noContent)
	for n := 0; n < 5; n++ {
		if rec := send(h, http.MethodGet, "/", "192.0.2.40:1", "", nil); rec.Code != http.StatusNoContent {
			t.Fatalf("expected no limit, got %d", rec.Code)
		}
	}
}

func TestSensitiveScopeMatching(t *testing.T) {
	cases := []struct {
		method, path string
		want         sensitiveScope
	}{
		{http.MethodPost, "/api/auth/login", scopeLogin},
		{http.MethodPost, "/api/auth/register", scopeActor},
		{http.MethodPut, "/api/payroll/14/mark-paid", scopeActor},
		{http.MethodPut, "/api/requests/3/approve", scopeActor},
		{http.MethodPut, "/api/requests/3/reject", scopeActor},
		{http.MethodPost, "/api/jobs/vacation-sync/run", scopeActor},
		{http.MethodGet, "/api/payroll/14/payslip", scopeNone},
		{http.MethodGet, "/api/auth/login", scopeNone},
		{http.MethodPost, "/api/auth/login/extra", scopeNone},
		{http.MethodPut, "/api/payroll/14", scopeNone},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := scopeOf(req); got != tc.want {
			t.Errorf("%s %s: expected scope %d, got %d", tc.method, tc.path, tc.want, got)
		}
	}
}

func TestSensitiveMutationsLimitedPerActor(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	for i := 0; i < 6; i++ {
		if rec := send(h, http.MethodGet, "/api/dashboard/admin", "198.51.100.40:1", "", nil); rec.Code != http.StatusNoContent {
			t.Fatalf("read %d should not be limited, got %d", i+1, rec.Code)
		}
	}

	admin := auth.UserContext{UserID: 12, Role: auth.RoleAdmin}
	for i := 0; i < 3; i++ {
		rec := send(h, http.MethodPost, "/api/payroll/calculate", "198.51.100.41:1", "", &admin)
		want := http.StatusNoContent
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("calculate %d: expected %d, got %d", i+1, want, rec.Code)
		}
	}
}

func TestSensitiveLoginKeyedByUsername(t *testing.T) {
	h := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	if rec := send(h, http.MethodPost, "/api/auth/login", "192.0.2.1:1", `{"username":"Admin"}`, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", rec.Code)
	}
	if rec := send(h, http.MethodPost, "/api/auth/login", "192.0.2.2:1", `{"username":"admin"}`, nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second login for the same username to be limited, got %d", rec.Code)
	}
	if rec := send(h, http.MethodPost, "/api/auth/login", "192.0.2.3:1", `{"username":"ana"}`, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected another username from a new address to pass, got %d", rec.Code)
	}
}

func TestPeekJSONFieldRestoresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":" Ana ","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	if got := peekJSONField(req, "username"); got != "Ana" {
		t.Fatalf("expected Ana, got %q", got)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, req.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"password":"x"`) {
		t.Fatalf("body not restored: %q", buf.String())
	}
}
