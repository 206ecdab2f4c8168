package domain

import "time"

// RecordEventKind identifies what happened to a DailyRecord.
type RecordEventKind string

const (
	RecordCreated RecordEventKind = "daily_record.created"
	RecordUpdated RecordEventKind = "daily_record.updated"
)

// RecordEvent is emitted after every successful upsert and delivered
// asynchronously to the audit trail, the message broker and live dashboards.
type RecordEvent struct {
	Kind               RecordEventKind `json:"kind"`
	RecordID           string          `json:"record_id"`
	UserID             string          `json:"user_id"`
	Day                time.Time       `json:"day"`
	Mood               Mood            `json:"mood"`
	ActivityCompletion float64         `json:"activity_completion"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

// NewRecordEvent snapshots r into an event of the given kind.
func NewRecordEvent(kind RecordEventKind, r *DailyRecord, at time.Time) RecordEvent {
	return RecordEvent{
		Kind:               kind,
		RecordID:           r.ID,
		UserID:             r.UserID,
		Day:                r.Day,
		Mood:               r.Mood,
		ActivityCompletion: r.ActivityCompletion(),
		OccurredAt:         at,
	}
}
