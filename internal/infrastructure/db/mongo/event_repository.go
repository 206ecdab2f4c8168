package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

const recordEventsCollection = "record_events"

// EventRepository appends record events to the record_events audit
// collection. It is registered as a dispatcher sink.
type EventRepository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(recordEventsCollection), now: time.Now}
}

func (r *EventRepository) Name() string { return "audit" }

// Deliver persists ev to the audit trail.
func (r *EventRepository) Deliver(ctx context.Context, ev domain.RecordEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"kind":                string(ev.Kind),
		"record_id":           ev.RecordID,
		"user_id":             ev.UserID,
		"day":                 ev.Day.UTC(),
		"mood":                string(ev.Mood),
		"activity_completion": ev.ActivityCompletion,
		"occurred_at":         ev.OccurredAt.UTC(),
		"stored_at":           r.now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return storeErr("insert record event", err)
	}
	return nil
}

// EnsureIndexes indexes the audit trail by user and time.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return storeErr("ensure record event indexes", err)
	}
	return nil
}
