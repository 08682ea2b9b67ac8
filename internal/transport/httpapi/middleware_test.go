package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"newsobserver/internal/logging"
)

func TestRequestIDAssignedAndPropagated(t *testing.T) {
	t.Parallel()

	var seen string
	handler := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected generated uuid, got %q", seen)
	}
	if rr.Header().Get(requestIDHeader) != seen {
		t.Fatalf("response header must echo the id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "req-42" || rr.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("incoming id must be kept, got %q", seen)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(1, 2, false)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	handler := limiter.middleware(logging.NewWithWriter(io.Discard, "error"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("burst request %d: expected 200, got %d", i, code)
		}
	}
	if code := call("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %d", code)
	}
	if code := call("10.0.0.2:5000"); code != http.StatusOK {
		t.Fatalf("other clients must not be limited, got %d", code)
	}

	now = now.Add(time.Second)
	if code := call("10.0.0.1:5000"); code != http.StatusOK {
		t.Fatalf("expected token refill after 1s, got %d", code)
	}
}

func TestRateLimitSweepForgetsIdleClients(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(5, 10, false)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.allow("a")
	now = now.Add(10 * time.Minute)
	limiter.allow("b")
	limiter.sweep(5 * time.Minute)

	if _, ok := limiter.clients["a"]; ok {
		t.Fatalf("idle client must be removed")
	}
	if _, ok := limiter.clients["b"]; !ok {
		t.Fatalf("active client must be kept")
	}
}

func TestDisabledRateLimitAllowsAll(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(0, 0, false)
	if limiter != nil {
		t.Fatalf("non-positive rps must disable the limiter")
	}
	if !limiter.allow("anyone") {
		t.Fatalf("nil limiter must allow")
	}
}

func TestClientKeyIgnoresForwardedForByDefault(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := clientKey(req, false); got != "192.0.2.1" {
		t.Fatalf("unexpected key %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientKey(req, false); got != "192.0.2.1" {
		t.Fatalf("untrusted X-Forwarded-For must be ignored, got %q", got)
	}
}

func TestClientKeyTrustedProxy(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientKey(req, true); got != "10.0.0.1" {
		t.Fatalf("expected peer address without the header, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := clientKey(req, true); got != "203.0.113.7" {
		t.Fatalf("unexpected forwarded key %q", got)
	}
}

func TestRateLimitForgedForwardedForDoesNotBypass(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(1, 1, false)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	handler := limiter.middleware(logging.NewWithWriter(io.Discard, "error"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, forged := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.9:4000"
		req.Header.Set("X-Forwarded-For", forged)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For must not reset the bucket, got %v", codes)
	}
}
