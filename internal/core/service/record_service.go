package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
	"github.com/dailymood/mood-tracker/internal/pkg/metrics"
)

// maxRangeDays caps GetRecordsInRange so a single query cannot scan years of data.
const maxRangeDays = 366

var tracer = otel.Tracer("github.com/dailymood/mood-tracker/internal/core/service")

// RecordService is the daily record aggregator. It guarantees at most one
// record per (user, reference-timezone day) and derives progress figures.
type RecordService struct {
	repo     ports.RecordRepository
	locker   ports.DayLocker
	cache    ports.ProgressCache
	notifier ports.RecordNotifier
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// RecordServiceOption configures optional collaborators.
type RecordServiceOption func(*RecordService)

// WithDayLocker serializes same-day writers through l.
func WithDayLocker(l ports.DayLocker) RecordServiceOption {
	return func(s *RecordService) { s.locker = l }
}

// WithProgressCache caches weekly summaries in c.
func WithProgressCache(c ports.ProgressCache) RecordServiceOption {
	return func(s *RecordService) { s.cache = c }
}

// WithNotifier publishes a RecordEvent after every successful write.
func WithNotifier(n ports.RecordNotifier) RecordServiceOption {
	return func(s *RecordService) { s.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RecordServiceOption {
	return func(s *RecordService) { s.now = now }
}

// NewRecordService returns a RecordService whose days are calendar days in loc.
// A nil loc means UTC.
func NewRecordService(repo ports.RecordRepository, loc *time.Location, log zerolog.Logger, opts ...RecordServiceOption) *RecordService {
	if loc == nil {
		loc = time.UTC
	}
	s := &RecordService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the reference timezone.
func (s *RecordService) Location() *time.Location { return s.loc }

// Today returns midnight of the current day in the reference timezone.
func (s *RecordService) Today() time.Time {
	return domain.StartOfDay(s.now(), s.loc)
}

// UpsertDailyRecord creates the record for (userID, day) or merges update
// into the existing one.
func (s *RecordService) UpsertDailyRecord(ctx context.Context, userID string, day time.Time, update domain.RecordUpdate) (*ports.UpsertResult, error) {
	if err := update.Validate(); err != nil {
		metrics.RecordUpsertErrorsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	return s.upsert(ctx, "UpsertDailyRecord", userID, day, func(r *domain.DailyRecord) error {
		update.ApplyTo(r)
		return nil
	})
}

// ToggleActivity flips one activity on the day's record, creating the record
// with defaults first when absent.
func (s *RecordService) ToggleActivity(ctx context.Context, userID string, day time.Time, activity domain.Activity) (*ports.UpsertResult, error) {
	if !activity.IsValid() {
		metrics.RecordUpsertErrorsTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: unknown activity %q", domain.ErrValidation, activity)
	}
	return s.upsert(ctx, "ToggleActivity", userID, day, func(r *domain.DailyRecord) error {
		if r.Activities == nil {
			r.Activities = make(map[domain.Activity]bool)
		}
		r.Activities[activity] = !r.Activities[activity]
		return nil
	})
}

// UpdateRecordByID merges update into a record the caller already knows by
// ID. Records owned by someone else are reported as not found.
func (s *RecordService) UpdateRecordByID(ctx context.Context, userID, recordID string, update domain.RecordUpdate) (*ports.UpsertResult, error) {
	if strings.TrimSpace(recordID) == "" {
		return nil, fmt.Errorf("%w: record id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if err := update.Validate(); err != nil {
		metrics.RecordUpsertErrorsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, userID, recordID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			metrics.RecordUpsertErrorsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, fmt.Errorf("update record %s: %w", recordID, err)
	}

	return s.upsert(ctx, "UpdateRecordByID", userID, existing.Day, func(r *domain.DailyRecord) error {
		update.ApplyTo(r)
		return nil
	})
}

// GetRecordForDay returns the record for (userID, day). A missing record is
// reported through found, never as an error.
func (s *RecordService) GetRecordForDay(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	day = s.normalize(day)

	rec, err := s.repo.FindByUserAndDay(ctx, userID, day)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record for day: %w", err)
	}
	return rec, true, nil
}

// GetRecordsInRange returns records with from <= day < to, newest first.
func (s *RecordService) GetRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to are required", domain.ErrValidation)
	}
	from = domain.StartOfDay(from, s.loc)
	to = domain.StartOfDay(to, s.loc)
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}
	if to.After(domain.AddDays(from, maxRangeDays, s.loc)) {
		return nil, fmt.Errorf("%w: range must not exceed %d days", domain.ErrValidation, maxRangeDays)
	}

	recs, err := s.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get records in range: %w", err)
	}
	return recs, nil
}

// WeeklyProgress summarizes the seven calendar days ending with day.
func (s *RecordService) WeeklyProgress(ctx context.Context, userID string, day time.Time) (*domain.ProgressSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	day = s.normalize(day)

	// The generation is read before the store so that a write landing while
	// this summary is computed moves readers to a newer generation.
	gen, cacheOK := s.progressGeneration(ctx, userID)
	if cacheOK {
		cached, err := s.cache.Get(ctx, userID, gen, day)
		switch {
		case err != nil:
			metrics.ProgressCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("user_id", userID).Msg("progress cache read failed")
		case cached != nil:
			metrics.ProgressCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ProgressCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	start := domain.AddDays(day, -(domain.WeekLength - 1), s.loc)
	end := domain.AddDays(day, 1, s.loc)

	count, err := s.repo.CountRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("weekly progress: %w", err)
	}

	summary := &domain.ProgressSummary{
		Day:             day,
		WindowStart:     start,
		RecordsInWindow: int(count),
		WeeklyProgress:  domain.ComputeWeeklyProgress(int(count)),
	}

	rec, found, err := s.GetRecordForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if found {
		summary.HasRecordForDay = true
		summary.ActivityCompletion = rec.ActivityCompletion()
	}
	summary.WeeklyProgressDisplay = domain.RoundPercent(summary.WeeklyProgress)
	summary.ActivityCompletionDisplay = domain.RoundPercent(summary.ActivityCompletion)

	if cacheOK {
		if err := s.cache.Set(ctx, userID, gen, day, summary); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("progress cache write failed")
		}
	}
	return summary, nil
}

// upsert is the single read-merge-write path. mutate is applied either to a
// fresh default record or to a copy of the stored one.
func (s *RecordService) upsert(ctx context.Context, op, userID string, day time.Time, mutate func(*domain.DailyRecord) error) (*ports.UpsertResult, error) {
	if strings.TrimSpace(userID) == "" {
		metrics.RecordUpsertErrorsTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	day = s.normalize(day)
	dayKey := domain.DayKey(day, s.loc)

	ctx, span := tracer.Start(ctx, "RecordService."+op, trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("day", dayKey),
	))
	defer span.End()

	started := time.Now()
	res, err := s.lockedUpsert(ctx, userID, day, mutate)
	if err != nil {
		metrics.RecordUpsertDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
		metrics.RecordUpsertErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error().Err(err).Str("user_id", userID).Str("day", dayKey).Str("op", op).Msg("daily record upsert failed")
		return nil, fmt.Errorf("upsert daily record: %w", err)
	}

	result := "updated"
	kind := domain.RecordUpdated
	if res.Created {
		result = "created"
		kind = domain.RecordCreated
	}
	metrics.RecordUpsertDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
	metrics.RecordsUpsertedTotal.WithLabelValues(result).Inc()
	span.SetAttributes(attribute.String("record_id", res.Record.ID), attribute.String("result", result))

	s.invalidateProgress(ctx, userID)
	if s.notifier != nil {
		s.notifier.Notify(domain.NewRecordEvent(kind, res.Record, s.now()))
	}

	s.log.Info().
		Str("user_id", userID).
		Str("day", dayKey).
		Str("record_id", res.Record.ID).
		Str("result", result).
		Msg("daily record saved")

	return res, nil
}

func (s *RecordService) lockedUpsert(ctx context.Context, userID string, day time.Time, mutate func(*domain.DailyRecord) error) (*ports.UpsertResult, error) {
	ctx, unlock := s.lock(ctx, userID, day)
	defer unlock()

	existing, err := s.repo.FindByUserAndDay(ctx, userID, day)
	switch {
	case err == nil:
		return s.merge(ctx, existing, mutate)
	case errors.Is(err, domain.ErrRecordNotFound):
		return s.create(ctx, userID, day, mutate)
	default:
		return nil, err
	}
}

func (s *RecordService) create(ctx context.Context, userID string, day time.Time, mutate func(*domain.DailyRecord) error) (*ports.UpsertResult, error) {
	rec := domain.NewDailyRecord(userID, day, s.now())
	if err := mutate(rec); err != nil {
		return nil, err
	}

	err := s.repo.Create(ctx, rec)
	if errors.Is(err, domain.ErrDuplicateRecord) {
		// Another writer created the day first; merge into its record instead.
		metrics.RecordConflictsTotal.Inc()
		s.log.Warn().Str("user_id", userID).Str("day", domain.DayKey(day, s.loc)).Msg("concurrent create detected, merging into existing record")

		winner, ferr := s.repo.FindByUserAndDay(ctx, userID, day)
		if ferr != nil {
			return nil, ferr
		}
		return s.merge(ctx, winner, mutate)
	}
	if err != nil {
		return nil, err
	}
	return &ports.UpsertResult{Record: rec, Created: true}, nil
}

func (s *RecordService) merge(ctx context.Context, existing *domain.DailyRecord, mutate func(*domain.DailyRecord) error) (*ports.UpsertResult, error) {
	rec := existing.Clone()
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return &ports.UpsertResult{Record: rec}, nil
}

// lock acquires the day lock when configured and returns the context the
// locked section must run under. A lock failure is logged and the write
// proceeds on ctx; the unique index still prevents a second record.
func (s *RecordService) lock(ctx context.Context, userID string, day time.Time) (context.Context, func()) {
	if s.locker == nil {
		return ctx, func() {}
	}
	lockCtx, unlock, err := s.locker.Lock(ctx, userID, day)
	if err != nil {
		metrics.DayLockFailuresTotal.Inc()
		s.log.Warn().Err(err).Str("user_id", userID).Str("day", domain.DayKey(day, s.loc)).Msg("day lock unavailable, proceeding unlocked")
		return ctx, func() {}
	}
	return lockCtx, unlock
}

// progressGeneration reports false when there is no cache or its generation
// cannot be read; WeeklyProgress then neither reads nor fills the cache.
func (s *RecordService) progressGeneration(ctx context.Context, userID string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, userID)
	if err != nil {
		metrics.ProgressCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("user_id", userID).Msg("progress cache generation unavailable")
		return 0, false
	}
	return gen, true
}

// invalidateProgress advances the user's cache generation. It runs after the
// store write, so any summary cached under the old generation is retired.
func (s *RecordService) invalidateProgress(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("progress cache invalidation failed")
	}
}

func (s *RecordService) normalize(day time.Time) time.Time {
	if day.IsZero() {
		day = s.now()
	}
	return domain.StartOfDay(day, s.loc)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store"
	default:
		return "other"
	}
}
