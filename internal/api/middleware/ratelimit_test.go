package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func hit(e *echo.Echo, h echo.HandlerFunc, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if code := hit(e, h, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := hit(e, h, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := hit(e, h, "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other IPs must have their own bucket, got %d", code)
	}
}

func TestRateLimiter_CleanupEvictsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("10.0.0.1")
	now = now.Add(visitorIdle + time.Second)
	rl.limiter("10.0.0.2")
	rl.cleanup()

	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor must be evicted")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("active visitor must be kept")
	}
}
