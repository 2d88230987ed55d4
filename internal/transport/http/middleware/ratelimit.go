package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/shared"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*keyedLimiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(k *keyedLimiter) {
		if fn != nil {
			k.keyFn = fn
		}
	}
}

func withClock(now func() time.Time) RateLimitOption {
	return func(k *keyedLimiter) { k.now = now }
}

// keyedLimiter keeps one token bucket per key. A key may spend limit requests
// at once and regains one every window/limit. Buckets idle for two windows
// are dropped.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   int
	refill  rate.Limit
	window  time.Duration
	keyFn   RateLimitKeyFunc
	now     func() time.Time
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newKeyedLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc, opts ...RateLimitOption) *keyedLimiter {
	k := &keyedLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
	if limit > 0 && window > 0 {
		k.refill = rate.Every(window / time.Duration(limit))
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.keyFn == nil {
		k.keyFn = actorOrIPKey
	}
	return k
}

func (k *keyedLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	idle := 2 * k.window
	if now.Sub(k.swept) > idle {
		for name, b := range k.buckets {
			if now.Sub(b.seen) > idle {
				delete(k.buckets, name)
			}
		}
		k.swept = now
	}
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.refill, k.limit)}
		k.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// allow spends one token for the request's key and writes the rate headers.
// It answers 429 and returns false once the bucket is empty.
func (k *keyedLimiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if k.limit <= 0 {
		return true
	}
	key := k.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	now := k.now()
	lim := k.bucketFor(key, now)

	res := lim.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	if wait > 0 {
		res.CancelAt(now)
	}
	tokens := lim.TokensAt(now)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(k.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(tokens), 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(k.secondsUntilFull(tokens)))

	if wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(ceilSeconds(wait)))
		slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", k.limit, "window", k.window.String())
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func (k *keyedLimiter) secondsUntilFull(tokens float64) int {
	missing := float64(k.limit) - tokens
	if missing <= 0 || k.refill <= 0 {
		return 0
	}
	return int(math.Ceil(missing/float64(k.refill) - 1e-9))
}

func ceilSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}

// RateLimit allows limit requests per window for each caller, keyed by user
// when authenticated and by client IP otherwise.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	k := newKeyedLimiter(limit, window, actorOrIPKey, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if k.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	scopeLogin
	scopeActor
)

type sensitiveRoute struct {
	method string
	prefix string
	suffix string
	scope  sensitiveScope
}

var sensitiveRoutes = []sensitiveRoute{
	{method: http.MethodPost, prefix: "/auth/login", scope: scopeLogin},
	{method: http.MethodPost, prefix: "/auth/register", scope: scopeActor},
	{method: http.MethodPut, prefix: "/auth/change-password", scope: scopeActor},
	{method: http.MethodPost, prefix: "/payroll/calculate", scope: scopeActor},
	{method: http.MethodPut, prefix: "/payroll/", suffix: "/mark-paid", scope: scopeActor},
	{method: http.MethodPut, prefix: "/requests/", suffix: "/approve", scope: scopeActor},
	{method: http.MethodPut, prefix: "/requests/", suffix: "/reject", scope: scopeActor},
	{method: http.MethodPost, prefix: "/jobs/", suffix: "/run", scope: scopeActor},
}

func scopeOf(r *http.Request) sensitiveScope {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	for _, route := range sensitiveRoutes {
		if r.Method != route.method || !strings.HasPrefix(path, route.prefix) {
			continue
		}
		if route.suffix == "" && path != route.prefix {
			continue
		}
		if route.suffix != "" && !strings.HasSuffix(path, route.suffix) {
			continue
		}
		return route.scope
	}
	return scopeNone
}

// SensitiveMutationRateLimit adds tighter limits on login and on mutations
// that move money, grant access or change leave balances. Login is limited
// per IP and per submitted username; the rest per acting user.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	actorLimit := max(baseLimit/2, 1)
	loginByIP := newKeyedLimiter(loginLimit, window, clientIPKey)
	loginByName := newKeyedLimiter(loginLimit, window, AuthFieldOrIPKey("username"))
	byActor := newKeyedLimiter(actorLimit, window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch scopeOf(r) {
			case scopeLogin:
				if !loginByIP.allow(w, r) || !loginByName.allow(w, r) {
					return
				}
			case scopeActor:
				if !byActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthFieldOrIPKey keys requests by a JSON body field, lower-cased, so one
// account cannot be sprayed from many addresses.
func AuthFieldOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "username"
	}
	return func(r *http.Request) string {
		if value := peekJSONField(r, field); value != "" {
			return field + ":" + strings.ToLower(value)
		}
		return clientIPKey(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID > 0 {
		return "user:" + strconv.FormatInt(user.UserID, 10)
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

// peekJSONField reads one string field from a JSON body and restores the body
// for the next handler.
func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}
