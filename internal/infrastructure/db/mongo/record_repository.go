package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

const recordsCollection = "daily_records"

// RecordRepository implements ports.RecordRepository on the daily_records
// collection. Day is stored as the UTC instant of the reference-timezone
// midnight, so equality on day is exact.
type RecordRepository struct {
	col *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{col: db.Collection(recordsCollection)}
}

type metricsDocument struct {
	SleepHours  float64 `bson:"sleep_hours"`
	StressLevel int     `bson:"stress_level"`
	WaterIntake float64 `bson:"water_intake"`
	MealQuality int     `bson:"meal_quality"`
	Notes       string  `bson:"notes"`
}

type recordDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Day        time.Time          `bson:"day"`
	Mood       string             `bson:"mood"`
	Activities map[string]bool    `bson:"activities"`
	Metrics    metricsDocument    `bson:"metrics"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// Create inserts r and sets r.ID from the generated ObjectID.
func (r *RecordRepository) Create(ctx context.Context, rec *domain.DailyRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toRecordDocument(rec)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRecord
		}
		return storeErr("insert daily record", err)
	}
	rec.ID = doc.ID.Hex()
	return nil
}

// Update sets only the mutable fields; user_id, day and created_at are never rewritten.
func (r *RecordRepository) Update(ctx context.Context, rec *domain.DailyRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return domain.ErrRecordNotFound
	}

	doc := toRecordDocument(rec)
	filter := bson.M{"_id": oid, "user_id": rec.UserID}
	update := bson.M{"$set": bson.M{
		"mood":       doc.Mood,
		"activities": doc.Activities,
		"metrics":    doc.Metrics,
		"updated_at": doc.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeErr("update daily record", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.DailyRecord, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "day": day.UTC()})
}

// FindByID only matches records owned by userID.
func (r *RecordRepository) FindByID(ctx context.Context, userID, id string) (*domain.DailyRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRecordNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "user_id": userID})
}

// ListRange returns records with from <= day < to, newest day first.
func (r *RecordRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day", Value: -1}})
	cur, err := r.col.Find(ctx, rangeFilter(userID, from, to), opts)
	if err != nil {
		return nil, storeErr("list daily records", err)
	}
	defer cur.Close(ctx)

	var docs []recordDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode daily records", err)
	}

	out := make([]*domain.DailyRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *RecordRepository) CountRange(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, rangeFilter(userID, from, to))
	if err != nil {
		return 0, storeErr("count daily records", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique (user_id, day) index that backs the
// one-record-per-day rule.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_day"),
		},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return storeErr("ensure daily record indexes", err)
	}
	return nil
}

func (r *RecordRepository) findOne(ctx context.Context, filter bson.M) (*domain.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc recordDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, storeErr("find daily record", err)
	}
	return doc.toDomain(), nil
}

func rangeFilter(userID string, from, to time.Time) bson.M {
	return bson.M{
		"user_id": userID,
		"day":     bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	}
}

func toRecordDocument(rec *domain.DailyRecord) recordDocument {
	acts := make(map[string]bool, len(rec.Activities))
	for k, v := range rec.Activities {
		acts[string(k)] = v
	}
	return recordDocument{
		UserID:     rec.UserID,
		Day:        rec.Day.UTC(),
		Mood:       string(rec.Mood),
		Activities: acts,
		Metrics: metricsDocument{
			SleepHours:  rec.Metrics.SleepHours,
			StressLevel: rec.Metrics.StressLevel,
			WaterIntake: rec.Metrics.WaterIntake,
			MealQuality: rec.Metrics.MealQuality,
			Notes:       rec.Metrics.Notes,
		},
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

func (d recordDocument) toDomain() *domain.DailyRecord {
	acts := make(map[domain.Activity]bool, len(d.Activities))
	for k, v := range d.Activities {
		acts[domain.Activity(k)] = v
	}
	return &domain.DailyRecord{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Day:        d.Day.UTC(),
		Mood:       domain.Mood(d.Mood),
		Activities: acts,
		Metrics: domain.Metrics{
			SleepHours:  d.Metrics.SleepHours,
			StressLevel: d.Metrics.StressLevel,
			WaterIntake: d.Metrics.WaterIntake,
			MealQuality: d.Metrics.MealQuality,
			Notes:       d.Metrics.Notes,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
