package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dailymood/mood-tracker/internal/api/middleware"
	"github.com/dailymood/mood-tracker/internal/infrastructure/realtime"
)

func newTestRouter(limiter *middleware.RateLimiter) *echo.Echo {
	return NewRouter(Deps{
		Log:         zerolog.Nop(),
		JWTSecret:   "secret",
		Hub:         realtime.NewHub(),
		AuthLimiter: limiter,
		Registerer:  prometheus.NewRegistry(),
	})
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	rec := serve(newTestRouter(nil), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected a request ID header")
	}
}

func TestRouter_SecuredRoutesRequireToken(t *testing.T) {
	e := newTestRouter(nil)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/users/me"},
		{http.MethodPut, "/v1/records/day"},
		{http.MethodGet, "/v1/records/day"},
		{http.MethodGet, "/v1/records"},
		{http.MethodPatch, "/v1/records/abc"},
		{http.MethodPost, "/v1/records/day/activities/reading/toggle"},
		{http.MethodGet, "/v1/progress"},
		{http.MethodGet, "/v1/ws"},
	}
	for _, r := range routes {
		rec := serve(e, r.method, r.path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", r.method, r.path, rec.Code)
			continue
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Errorf("%s %s: expected error envelope, got %q", r.method, r.path, rec.Body.String())
		}
	}
}

func TestRouter_AuthRoutesAreRateLimited(t *testing.T) {
	e := newTestRouter(middleware.NewRateLimiter(0.001, 1))

	// A malformed body is rejected before the auth service is reached.
	first := serve(e, http.MethodPost, "/v1/auth/login", `{"email":`)
	if first.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", first.Code)
	}
	second := serve(e, http.MethodPost, "/v1/auth/login", `{"email":`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(nil), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
