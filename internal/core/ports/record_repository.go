package ports

import (
	"context"
	"time"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// RecordRepository defines persistence for daily records. Every method that
// fails at the driver level returns an error wrapping domain.ErrStoreUnavailable.
type RecordRepository interface {
	// FindByUserAndDay returns domain.ErrRecordNotFound when no record exists.
	FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, error)
	// FindByID only matches records owned by userID.
	FindByID(ctx context.Context, userID, id string) (*domain.DailyRecord, error)
	// Create inserts r and sets r.ID. Returns domain.ErrDuplicateRecord when
	// (user_id, day) already exists.
	Create(ctx context.Context, r *domain.DailyRecord) error
	// Update overwrites the mutable fields (mood, activities, metrics, updated_at).
	Update(ctx context.Context, r *domain.DailyRecord) error
	// ListRange returns records with from <= day < to, newest day first.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error)
	// CountRange counts records with from <= day < to.
	CountRange(ctx context.Context, userID string, from, to time.Time) (int64, error)
}
