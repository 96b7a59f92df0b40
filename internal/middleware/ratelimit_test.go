package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/reqctx"
)

func testRateLimiterConfig(generalBurst, loginBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalBurst) / 60.0),
		GeneralBurst:    generalBurst,
		LoginRate:       rate.Limit(float64(loginBurst) / 60.0),
		LoginBurst:      loginBurst,
		CleanupInterval: time.Hour,
	}
}

func requestFrom(remoteAddr string, user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/glb/auth/me", nil)
	req.RemoteAddr = remoteAddr
	if user != nil {
		req = req.WithContext(reqctx.WithUser(req.Context(), user))
	}
	return req
}

func TestNewRateLimiterConfig_PerMinute(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 10)

	if cfg.GeneralRate != rate.Limit(2) {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 || cfg.LoginBurst != 10 {
		t.Errorf("bursts = %d/%d, want 120/10", cfg.GeneralBurst, cfg.LoginBurst)
	}
}

func TestRateLimiter_General_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:1234", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:1234", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After should be set")
	}
	body := decodeEnvelope(t, w)
	if body["errorCode"] != "TooManyRequests" {
		t.Errorf("errorCode = %v", body["errorCode"])
	}
}

func TestRateLimiter_General_KeysByUserBeforeIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler)
	alice := &model.User{ID: "alice"}
	bob := &model.User{ID: "bob"}

	// Same IP, different users: separate buckets.
	for _, u := range []*model.User{alice, bob} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:1", u))
		if w.Code != http.StatusOK {
			t.Errorf("user %s: status = %d, want 200", u.ID, w.Code)
		}
	}

	// Anonymous caller on the same IP has its own bucket too.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:2", nil))
	if w.Code != http.StatusOK {
		t.Errorf("anonymous: status = %d, want 200", w.Code)
	}

	// Alice from another IP shares her bucket.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.9:1", alice))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("alice again: status = %d, want 429", w.Code)
	}

	if got := rl.GeneralLimiterCount(); got != 3 {
		t.Errorf("GeneralLimiterCount = %d, want 3", got)
	}
}

func TestRateLimiter_LoginTierIsIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(10, 1))
	defer rl.Stop()

	login := rl.LoginMiddleware()(okHandler)
	general := rl.GeneralMiddleware()(okHandler)

	w := httptest.NewRecorder()
	login.ServeHTTP(w, requestFrom("10.0.0.2:1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first login: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	login.ServeHTTP(w, requestFrom("10.0.0.2:1", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second login: status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}

	w = httptest.NewRecorder()
	general.ServeHTTP(w, requestFrom("10.0.0.2:1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("general after login limit: status = %d, want 200", w.Code)
	}
	if got := rl.LoginLimiterCount(); got != 1 {
		t.Errorf("LoginLimiterCount = %d, want 1", got)
	}
}

func TestRateLimiter_CleanupEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 5))
	defer rl.Stop()
	rl.config.CleanupInterval = time.Millisecond

	rl.GeneralMiddleware()(okHandler).ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.3:1", nil))
	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("expected one tracked key")
	}

	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	if got := rl.GeneralLimiterCount(); got != 0 {
		t.Errorf("GeneralLimiterCount after cleanup = %d, want 0", got)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.1:5555"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("clientIP = %q", got)
	}

	req.RemoteAddr = "192.0.2.1"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("clientIP without port = %q", got)
	}
}
