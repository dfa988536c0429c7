package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowBurstThenReject(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 60, Burst: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected inside burst", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other client should have its own bucket")
	}
	if rl.Rejected() != 1 {
		t.Fatalf("rejected = %d", rl.Rejected())
	}
	if rl.ActiveClients() != 2 {
		t.Fatalf("clients = %d", rl.ActiveClients())
	}
}

func TestCleanupDropsIdleClients(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 60, IdleTTL: time.Millisecond, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.dropIdle()
	if rl.ActiveClients() != 0 {
		t.Fatalf("clients = %d, want 0", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 60, Burst: 1})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	codes := []int{http.StatusNoContent, http.StatusTooManyRequests}
	for i, want := range codes {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != want {
			t.Fatalf("request %d: status %d, want %d", i, rr.Code, want)
		}
		if want == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "1" {
			t.Fatalf("Retry-After = %q", rr.Header().Get("Retry-After"))
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
}
