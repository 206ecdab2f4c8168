package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

var lockDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

const lockKey = "lock:record:u1:2026-03-10"

func TestDayLocker_LockAndUnlock(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewDayLocker(client, time.UTC)

	before := time.Now()
	lockCtx, unlock, err := l.Lock(context.Background(), "u1", lockDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mr.Exists(lockKey) {
		t.Fatal("lock key not set")
	}
	if got := mr.TTL(lockKey); got != lockTTL {
		t.Errorf("lock TTL: want %v, got %v", lockTTL, got)
	}

	deadline, ok := lockCtx.Deadline()
	if !ok {
		t.Fatal("lock context must carry a deadline")
	}
	if deadline.Before(before.Add(lockTTL-lockMargin)) || deadline.After(time.Now().Add(lockTTL-lockMargin)) {
		t.Errorf("lock context deadline %v is not lockTTL-lockMargin after acquisition", deadline)
	}

	unlock()
	if mr.Exists(lockKey) {
		t.Error("unlock must delete the key")
	}
	if !errors.Is(lockCtx.Err(), context.Canceled) {
		t.Errorf("unlock must cancel the lock context, got %v", lockCtx.Err())
	}
}

func TestDayLocker_TTLOutlivesLockContext(t *testing.T) {
	// The store calls of one upsert are bounded by the lock context, which
	// must end while the key still exists.
	if lockMargin <= 0 || lockMargin >= lockTTL {
		t.Fatalf("lockMargin %v must be within (0, lockTTL %v)", lockMargin, lockTTL)
	}
	if lockWait >= lockTTL {
		t.Errorf("lockWait %v should be shorter than lockTTL %v", lockWait, lockTTL)
	}
}

func TestDayLocker_Contention(t *testing.T) {
	tests := []struct {
		name         string
		wait         time.Duration
		releaseAfter time.Duration // 0 keeps the first lock held
		wantErr      error
	}{
		{name: "holder releases within wait", wait: time.Second, releaseAfter: 100 * time.Millisecond},
		{name: "holder keeps lock", wait: 150 * time.Millisecond, wantErr: ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := newTestRedis(t)
			holder := NewDayLocker(client, time.UTC)
			_, unlockHolder, err := holder.Lock(context.Background(), "u1", lockDay)
			if err != nil {
				t.Fatalf("first lock: %v", err)
			}
			if tt.releaseAfter > 0 {
				time.AfterFunc(tt.releaseAfter, unlockHolder)
			} else {
				defer unlockHolder()
			}

			waiter := NewDayLocker(client, time.UTC)
			waiter.wait = tt.wait
			commandsBefore := mr.CommandCount()
			started := time.Now()
			_, unlock, err := waiter.Lock(context.Background(), "u1", lockDay)
			elapsed := time.Since(started)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				if elapsed < tt.wait {
					t.Errorf("gave up after %v, before the %v wait", elapsed, tt.wait)
				}
				if attempts := mr.CommandCount() - commandsBefore; attempts < 2 {
					t.Errorf("expected repeated SET NX attempts, got %d", attempts)
				}
				return
			}
			defer unlock()
			if elapsed < tt.releaseAfter {
				t.Errorf("acquired after %v, before the holder released at %v", elapsed, tt.releaseAfter)
			}
		})
	}
}

func TestDayLocker_ContextEndsWait(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		wantErr error
	}{
		{
			name: "cancelled before lock",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			wantErr: context.Canceled,
		},
		{
			name: "cancelled while waiting",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(50*time.Millisecond, cancel)
				return ctx, cancel
			},
			wantErr: context.Canceled,
		},
		{
			name: "caller deadline before wait",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 50*time.Millisecond)
			},
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestRedis(t)
			holder := NewDayLocker(client, time.UTC)
			_, unlockHolder, err := holder.Lock(context.Background(), "u1", lockDay)
			if err != nil {
				t.Fatalf("first lock: %v", err)
			}
			defer unlockHolder()

			waiter := NewDayLocker(client, time.UTC)
			waiter.wait = time.Second
			ctx, cancel := tt.ctx()
			defer cancel()

			started := time.Now()
			_, _, err = waiter.Lock(ctx, "u1", lockDay)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if errors.Is(err, ErrLockTimeout) {
				t.Error("a caller-side stop must not be reported as a lock timeout")
			}
			if elapsed := time.Since(started); elapsed >= waiter.wait {
				t.Errorf("caller context should end the wait early, took %v", elapsed)
			}
		})
	}
}

func TestDayLocker_UnlockAfterExpiryKeepsNewHolder(t *testing.T) {
	mr, client := newTestRedis(t)
	first := NewDayLocker(client, time.UTC)
	second := NewDayLocker(client, time.UTC)

	_, unlockFirst, err := first.Lock(context.Background(), "u1", lockDay)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	firstToken, _ := mr.Get(lockKey)

	mr.FastForward(lockTTL + time.Millisecond)
	if mr.Exists(lockKey) {
		t.Fatal("lock should have expired")
	}

	_, unlockSecond, err := second.Lock(context.Background(), "u1", lockDay)
	if err != nil {
		t.Fatalf("second lock after expiry: %v", err)
	}
	secondToken, _ := mr.Get(lockKey)
	if secondToken == firstToken {
		t.Fatal("each acquisition must use its own token")
	}

	unlockFirst()
	if got, _ := mr.Get(lockKey); got != secondToken {
		t.Fatalf("stale unlock removed the new holder's lock (key now %q)", got)
	}

	unlockSecond()
	if mr.Exists(lockKey) {
		t.Error("the holder's own unlock must delete the key")
	}
}

func TestDayLocker_StoreDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, _, err := NewDayLocker(client, time.UTC).Lock(context.Background(), "u1", lockDay)
	if err == nil || errors.Is(err, ErrLockTimeout) {
		t.Fatalf("want a connection error, got %v", err)
	}
}
