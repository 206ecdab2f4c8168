package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/pkg/ulids"
)

const (
	lockTTL = 10 * time.Second
	// lockMargin is taken off lockTTL for the context handed to the holder, so
	// its store calls are cancelled before another writer can take the lock.
	lockMargin     = time.Second
	lockWait       = 2 * time.Second
	lockRetryEvery = 25 * time.Millisecond
	releaseTimeout = time.Second
)

// ErrLockTimeout is returned when the day lock is still held after lockWait.
var ErrLockTimeout = errors.New("day lock wait timed out")

// releaseScript deletes the lock only if it still carries our token, so an
// expired lock re-acquired by another writer is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DayLocker serializes writes to one (user, day) pair across API instances.
// Key format: lock:record:<user_id>:<yyyy-mm-dd>
type DayLocker struct {
	client *redis.Client
	loc    *time.Location
	ttl    time.Duration
	margin time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewDayLocker creates a DayLocker; loc formats the day part of the key.
func NewDayLocker(client *redis.Client, loc *time.Location) *DayLocker {
	if loc == nil {
		loc = time.UTC
	}
	return &DayLocker{
		client: client,
		loc:    loc,
		ttl:    lockTTL,
		margin: lockMargin,
		wait:   lockWait,
		retry:  lockRetryEvery,
	}
}

// Lock polls SET NX until it wins, ctx ends, or the wait elapses. The returned
// context is derived from ctx and ends lockMargin before the key expires.
func (l *DayLocker) Lock(ctx context.Context, userID string, day time.Time) (context.Context, func(), error) {
	key := l.key(userID, day)
	token := ulids.New()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		acquired := time.Now()
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("acquire day lock: %w", err)
		}
		if ok {
			lockCtx, cancelLock := context.WithDeadline(ctx, acquired.Add(l.ttl-l.margin))
			return lockCtx, func() {
				cancelLock()
				l.release(key, token)
			}, nil
		}

		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, nil, ErrLockTimeout
			}
			return nil, nil, waitCtx.Err()
		case <-ticker.C:
		}
	}
}

func (l *DayLocker) release(key, token string) {
	// The request context may already be gone; release on a fresh one.
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *DayLocker) key(userID string, day time.Time) string {
	return fmt.Sprintf("lock:record:%s:%s", userID, domain.DayKey(day, l.loc))
}
