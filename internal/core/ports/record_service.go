package ports

import (
	"context"
	"time"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// UpsertResult is the post-merge record plus whether it was newly created.
type UpsertResult struct {
	Record  *domain.DailyRecord
	Created bool
}

// RecordService is the daily record aggregator. A zero day means "today" in
// the reference timezone; every other day is normalized to its midnight.
type RecordService interface {
	UpsertDailyRecord(ctx context.Context, userID string, day time.Time, update domain.RecordUpdate) (*UpsertResult, error)
	GetRecordForDay(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, bool, error)
	GetRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error)
	UpdateRecordByID(ctx context.Context, userID, recordID string, update domain.RecordUpdate) (*UpsertResult, error)
	ToggleActivity(ctx context.Context, userID string, day time.Time, activity domain.Activity) (*UpsertResult, error)
	WeeklyProgress(ctx context.Context, userID string, day time.Time) (*domain.ProgressSummary, error)
	// Today returns the current day in the reference timezone.
	Today() time.Time
	Location() *time.Location
}
