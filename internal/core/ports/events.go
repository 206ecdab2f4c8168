package ports

import (
	"context"
	"time"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// EventSink receives record events from the dispatcher workers.
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, ev domain.RecordEvent) error
}

// RecordNotifier accepts events for asynchronous delivery. Notify must not block.
type RecordNotifier interface {
	Notify(ev domain.RecordEvent)
}

// DayLocker serializes writers of the same (user, day).
type DayLocker interface {
	// Lock blocks until the lock is held or ctx/timeout expires. The returned
	// context is done before the lock can expire; work done under the lock
	// must use it. unlock releases the lock and cancels that context.
	Lock(ctx context.Context, userID string, day time.Time) (lockCtx context.Context, unlock func(), err error)
}

// ProgressCache stores computed weekly summaries under a per-user generation.
// A write advances the generation, so a summary computed against an older
// generation is never served again even if it is stored after the write.
type ProgressCache interface {
	// Generation returns the user's current generation; 0 if none was recorded.
	Generation(ctx context.Context, userID string) (int64, error)
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, userID string, gen int64, day time.Time) (*domain.ProgressSummary, error)
	Set(ctx context.Context, userID string, gen int64, day time.Time, s *domain.ProgressSummary) error
	// Invalidate advances the user's generation.
	Invalidate(ctx context.Context, userID string) error
}
