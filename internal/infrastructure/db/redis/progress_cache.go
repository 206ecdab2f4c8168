package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

const (
	progressTTL = 10 * time.Minute
	// genTTL must outlive progressTTL: once the counter expires it restarts
	// at 0, which is only safe when no entry of an older generation remains.
	genTTL = 24 * time.Hour
)

// ProgressCache stores weekly progress summaries as JSON, keyed by a per-user
// generation that every write advances.
// Key format:
//
//	progress:<user_id>:gen                     generation counter
//	progress:<user_id>:g<gen>:<yyyy-mm-dd>     summary
type ProgressCache struct {
	client *redis.Client
	loc    *time.Location
	ttl    time.Duration
}

// NewProgressCache creates a ProgressCache; loc formats the day part of the key.
func NewProgressCache(client *redis.Client, loc *time.Location) *ProgressCache {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressCache{client: client, loc: loc, ttl: progressTTL}
}

// Generation returns 0 when the user has no counter yet.
func (c *ProgressCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("progress cache generation: %w", err)
	}
	return gen, nil
}

// Get returns (nil, nil) on a miss.
func (c *ProgressCache) Get(ctx context.Context, userID string, gen int64, day time.Time) (*domain.ProgressSummary, error) {
	data, err := c.client.Get(ctx, c.key(userID, gen, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress cache get: %w", err)
	}

	var s domain.ProgressSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("progress cache decode: %w", err)
	}
	s.Day = s.Day.In(c.loc)
	s.WindowStart = s.WindowStart.In(c.loc)
	return &s, nil
}

func (c *ProgressCache) Set(ctx context.Context, userID string, gen int64, day time.Time, s *domain.ProgressSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("progress cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID, gen, day), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("progress cache set: %w", err)
	}
	return nil
}

// Invalidate advances the user's generation. Entries of older generations are
// left to expire.
func (c *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	key := c.genKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, genTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress cache invalidate: %w", err)
	}
	return nil
}

func (c *ProgressCache) genKey(userID string) string {
	return fmt.Sprintf("progress:%s:gen", userID)
}

func (c *ProgressCache) key(userID string, gen int64, day time.Time) string {
	return fmt.Sprintf("progress:%s:g%d:%s", userID, gen, domain.DayKey(day, c.loc))
}
