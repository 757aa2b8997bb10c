package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Window(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request in the window should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if got := rl.RetryAfter("10.0.0.1"); got != 31 {
		t.Errorf("RetryAfter() = %d, want 31", got)
	}

	now = now.Add(30 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("a new window should allow requests again")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(3 * time.Minute)
	rl.Allow("10.0.0.2")

	if _, ok := rl.buckets["10.0.0.1"]; ok {
		t.Error("idle bucket should have been swept")
	}
	if got := rl.RetryAfter("10.0.0.9"); got != 0 {
		t.Errorf("RetryAfter(unknown) = %d, want 0", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		xff    string
		want   string
	}{
		{"192.0.2.1:1234", "", "192.0.2.1"},
		{"[2001:db8::1]:443", "", "2001:db8::1"},
		{"192.0.2.1:1234", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"pipe", "", "pipe"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if tt.xff != "" {
			r.Header.Set("X-Forwarded-For", tt.xff)
		}
		if got := clientIP(r); got != tt.want {
			t.Errorf("clientIP(%q, %q) = %q, want %q", tt.remote, tt.xff, got, tt.want)
		}
	}
}
