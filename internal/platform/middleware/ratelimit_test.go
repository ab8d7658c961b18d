package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type stepClock struct{ t time.Time }

func (s *stepClock) now() time.Time          { return s.t }
func (s *stepClock) advance(d time.Duration) { s.t = s.t.Add(d) }

func limitedRequest(e *echo.Echo, mw echo.MiddlewareFunc, path, actor string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.7:5000"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	if actor != "" {
		c.Set("actor", actor)
	}
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, err
}

func TestRateLimit_PerActorBuckets(t *testing.T) {
	e := echo.New()
	clock := &stepClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	mw := rateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, clock.now)

	for i := 0; i < 2; i++ {
		if _, err := limitedRequest(e, mw, "/api/v1/appointments", "frontdesk"); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	rec, err := limitedRequest(e, mw, "/api/v1/appointments", "frontdesk")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}

	// same client IP, different actor: own bucket
	if _, err := limitedRequest(e, mw, "/api/v1/appointments", "dr.smith"); err != nil {
		t.Errorf("other actor should not be limited: %v", err)
	}

	clock.advance(time.Second)
	if _, err := limitedRequest(e, mw, "/api/v1/appointments", "frontdesk"); err != nil {
		t.Errorf("expected a refilled token after one second: %v", err)
	}
}

func TestRateLimit_AnonymousKeyedByIP(t *testing.T) {
	e := echo.New()
	clock := &stepClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	mw := rateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clock.now)

	if _, err := limitedRequest(e, mw, "/api/v1/patients", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := limitedRequest(e, mw, "/api/v1/patients", ""); err == nil {
		t.Error("expected second anonymous request from the same IP to be limited")
	}
}

func TestRateLimit_PublicPathsAndDisabled(t *testing.T) {
	e := echo.New()
	clock := &stepClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	mw := rateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clock.now)
	for i := 0; i < 5; i++ {
		if _, err := limitedRequest(e, mw, "/health", ""); err != nil {
			t.Fatalf("health request %d limited: %v", i, err)
		}
	}

	off := RateLimit(RateLimitConfig{})
	for i := 0; i < 5; i++ {
		if _, err := limitedRequest(e, off, "/api/v1/patients", "frontdesk"); err != nil {
			t.Fatalf("disabled limiter rejected request %d: %v", i, err)
		}
	}
}

func TestBucketStore_SweepsIdleBuckets(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newBucketStore(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clock.now)
	s.take("actor:a")
	s.take("actor:b")

	clock.advance(idleBucketTTL + time.Minute)
	s.take("actor:c")
	if len(s.buckets) != 1 {
		t.Errorf("expected idle buckets dropped, have %d", len(s.buckets))
	}
}
