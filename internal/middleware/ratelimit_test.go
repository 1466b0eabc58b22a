package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(2),
		GeneralBurst:    2,
		MutationRate:    rate.Limit(1),
		MutationBurst:   1,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_General_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
		req.RemoteAddr = "192.0.2.1:40000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_General_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
		req.RemoteAddr = "192.0.2.1:40000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
	req.RemoteAddr = "192.0.2.1:40000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

// 制限がIPごとに独立していることを検証
func TestRateLimiter_General_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// 1つ目のIPの枠を使い切る
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
		req.RemoteAddr = "192.0.2.1:40000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
	req.RemoteAddr = "192.0.2.2:40000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("limiter count = %d, want 2", got)
	}
}

// 同一IPでもポートが異なれば同じリミッターが使われることを検証
func TestRateLimiter_KeyIgnoresPort(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.MutationMiddleware()(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/task/", nil)
	first.RemoteAddr = "192.0.2.1:40000"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/task/", nil)
	second.RemoteAddr = "192.0.2.1:50000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, second)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if got := rl.MutationLimiterCount(); got != 1 {
		t.Errorf("limiter count = %d, want 1", got)
	}
}

// 書き込み系の制限がAPI全般の制限と独立に動作することを検証
func TestRateLimiter_MutationIndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	mutation := rl.MutationMiddleware()(okHandler())

	// 書き込み枠を使い切る
	post := httptest.NewRequest(http.MethodPost, "/api/task/", nil)
	post.RemoteAddr = "192.0.2.1:40000"
	mutation.ServeHTTP(httptest.NewRecorder(), post)

	post2 := httptest.NewRequest(http.MethodPost, "/api/task/", nil)
	post2.RemoteAddr = "192.0.2.1:40000"
	w := httptest.NewRecorder()
	mutation.ServeHTTP(w, post2)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("mutation status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// 読み取りは引き続き許可される
	get := httptest.NewRequest(http.MethodGet, "/api/task/", nil)
	get.RemoteAddr = "192.0.2.1:40000"
	w2 := httptest.NewRecorder()
	general.ServeHTTP(w2, get)
	if w2.Code != http.StatusOK {
		t.Errorf("general status = %d, want %d", w2.Code, http.StatusOK)
	}
}
