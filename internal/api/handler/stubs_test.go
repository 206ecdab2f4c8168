package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailymood/mood-tracker/internal/api/middleware"
	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
)

var testZone = time.FixedZone("UTC-5", -5*60*60)

type stubRecordService struct {
	today      time.Time
	upsertFn   func(ctx context.Context, userID string, day time.Time, u domain.RecordUpdate) (*ports.UpsertResult, error)
	getFn      func(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, bool, error)
	rangeFn    func(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error)
	updateByFn func(ctx context.Context, userID, id string, u domain.RecordUpdate) (*ports.UpsertResult, error)
	toggleFn   func(ctx context.Context, userID string, day time.Time, a domain.Activity) (*ports.UpsertResult, error)
	progressFn func(ctx context.Context, userID string, day time.Time) (*domain.ProgressSummary, error)
}

func (s *stubRecordService) UpsertDailyRecord(ctx context.Context, userID string, day time.Time, u domain.RecordUpdate) (*ports.UpsertResult, error) {
	return s.upsertFn(ctx, userID, day, u)
}

func (s *stubRecordService) GetRecordForDay(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, bool, error) {
	return s.getFn(ctx, userID, day)
}

func (s *stubRecordService) GetRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error) {
	return s.rangeFn(ctx, userID, from, to)
}

func (s *stubRecordService) UpdateRecordByID(ctx context.Context, userID, id string, u domain.RecordUpdate) (*ports.UpsertResult, error) {
	return s.updateByFn(ctx, userID, id, u)
}

func (s *stubRecordService) ToggleActivity(ctx context.Context, userID string, day time.Time, a domain.Activity) (*ports.UpsertResult, error) {
	return s.toggleFn(ctx, userID, day, a)
}

func (s *stubRecordService) WeeklyProgress(ctx context.Context, userID string, day time.Time) (*domain.ProgressSummary, error) {
	return s.progressFn(ctx, userID, day)
}

func (s *stubRecordService) Today() time.Time { return s.today }

func (s *stubRecordService) Location() *time.Location { return testZone }

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds a request context; a non-empty userID simulates the
// Auth middleware.
func newContext(e *echo.Echo, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.ContextUserID, userID)
	}
	return c, rec
}

func testDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, testZone)
}

func testRecord(id string, day time.Time) *domain.DailyRecord {
	r := domain.NewDailyRecord("user-1", day, day.Add(9*time.Hour))
	r.ID = id
	return r
}
