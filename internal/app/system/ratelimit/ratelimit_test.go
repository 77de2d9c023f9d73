package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_BurstThenRefuse(t *testing.T) {
	l := New(60, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("fourth request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other keys have their own bucket")
	}
}

func TestAllow_Refills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(60, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || l.Allow("k") {
		t.Fatal("expected one request then refusal")
	}
	now = now.Add(time.Second)
	if !l.Allow("k") {
		t.Error("one token per second should have refilled")
	}
}

func TestReset(t *testing.T) {
	l := New(1, 1)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected refusal")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("reset key should be allowed again")
	}
}

func TestSweepDropsIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(60, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(l.idle + time.Second)
	l.Allow("new")

	if _, ok := l.buckets["old"]; ok {
		t.Error("idle bucket should have been swept")
	}
}

func TestMiddleware(t *testing.T) {
	l := New(60, 1)
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
		if i == 1 && rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After on refusal")
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Errorf("ClientIP = %q", got)
	}
	req.RemoteAddr = "203.0.113.9"
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Errorf("ClientIP without port = %q", got)
	}
}
