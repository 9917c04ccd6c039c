package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	defer rl.close()
	rl.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if got := rl.allow("a"); got != want {
			t.Errorf("request %d: allow = %v, want %v", i, got, want)
		}
	}
	if !rl.allow("b") {
		t.Error("other clients have their own window")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("a") {
		t.Error("window should reset")
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(5, time.Minute)
	defer rl.close()
	rl.now = func() time.Time { return now }

	rl.allow("idle")
	now = now.Add(3 * time.Minute)
	rl.allow("busy")
	rl.prune()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["idle"]; ok {
		t.Error("idle visitor not pruned")
	}
	if _, ok := rl.visitors["busy"]; !ok {
		t.Error("busy visitor pruned")
	}
}

func TestRateLimiter_CloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(1, time.Millisecond)
	rl.close()
	rl.close()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.9", "203.0.113.9"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
