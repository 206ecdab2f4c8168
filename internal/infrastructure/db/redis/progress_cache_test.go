package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

var cacheZone = time.FixedZone("UTC-5", -5*3600)

func testSummary(day time.Time) *domain.ProgressSummary {
	return &domain.ProgressSummary{
		Day:                   day,
		WindowStart:           day.AddDate(0, 0, -6),
		RecordsInWindow:       3,
		WeeklyProgress:        3.0 / 7.0 * 100,
		WeeklyProgressDisplay: 43,
		HasRecordForDay:       true,
	}
}

func TestProgressCache_Get(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, cacheZone)

	tests := []struct {
		name    string
		seed    func(mr *miniredis.Miniredis)
		wantHit bool
		wantErr bool
	}{
		{name: "miss", seed: func(*miniredis.Miniredis) {}},
		{
			name: "hit",
			seed: func(mr *miniredis.Miniredis) {
				data, _ := json.Marshal(testSummary(day))
				_ = mr.Set("progress:u1:g0:2026-03-10", string(data))
			},
			wantHit: true,
		},
		{
			name: "other generation",
			seed: func(mr *miniredis.Miniredis) {
				data, _ := json.Marshal(testSummary(day))
				_ = mr.Set("progress:u1:g1:2026-03-10", string(data))
			},
		},
		{
			name: "corrupt entry",
			seed: func(mr *miniredis.Miniredis) {
				_ = mr.Set("progress:u1:g0:2026-03-10", "not json")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := newTestRedis(t)
			tt.seed(mr)

			got, err := NewProgressCache(client, cacheZone).Get(context.Background(), "u1", 0, day)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if (got != nil) != tt.wantHit {
				t.Errorf("wantHit=%v, got %+v", tt.wantHit, got)
			}
		})
	}
}

func TestProgressCache_SetGetRestoresZone(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewProgressCache(client, cacheZone)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, cacheZone)
	want := testSummary(day)

	if err := cache.Set(ctx, "u1", 0, day, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := mr.TTL("progress:u1:g0:2026-03-10"); got != progressTTL {
		t.Errorf("entry TTL: want %v, got %v", progressTTL, got)
	}

	got, err := cache.Get(ctx, "u1", 0, day)
	if err != nil || got == nil {
		t.Fatalf("expected a hit, got %+v, %v", got, err)
	}
	if !got.Day.Equal(want.Day) || !got.WindowStart.Equal(want.WindowStart) {
		t.Errorf("days: want %v/%v, got %v/%v", want.Day, want.WindowStart, got.Day, got.WindowStart)
	}
	if got.Day.Location() != cacheZone || got.WindowStart.Location() != cacheZone {
		t.Errorf("days must come back in the reference zone, got %v", got.Day.Location())
	}
	if got.RecordsInWindow != 3 || got.WeeklyProgressDisplay != 43 || !got.HasRecordForDay {
		t.Errorf("fields lost in round trip: %+v", got)
	}
}

func TestProgressCache_InvalidateRetiresGeneration(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewProgressCache(client, cacheZone)
	ctx := context.Background()
	days := []time.Time{
		time.Date(2026, 3, 10, 0, 0, 0, 0, cacheZone),
		time.Date(2026, 3, 12, 0, 0, 0, 0, cacheZone),
	}

	gen, err := cache.Generation(ctx, "u1")
	if err != nil || gen != 0 {
		t.Fatalf("fresh user: want generation 0, got %d, %v", gen, err)
	}
	for _, d := range days {
		if err := cache.Set(ctx, "u1", gen, d, testSummary(d)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	_ = cache.Set(ctx, "u2", 0, days[0], testSummary(days[0]))

	if err := cache.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	next, err := cache.Generation(ctx, "u1")
	if err != nil || next != gen+1 {
		t.Fatalf("want generation %d, got %d, %v", gen+1, next, err)
	}
	if got := mr.TTL("progress:u1:gen"); got != genTTL {
		t.Errorf("generation TTL: want %v, got %v", genTTL, got)
	}

	// A summary computed before the write is stored late under the old
	// generation; readers of the new one must not see it.
	_ = cache.Set(ctx, "u1", gen, days[0], testSummary(days[0]))
	for _, d := range days {
		if got, _ := cache.Get(ctx, "u1", next, d); got != nil {
			t.Errorf("%s: served a summary from a retired generation", d.Format(domain.DayLayout))
		}
	}

	if got, _ := cache.Get(ctx, "u2", 0, days[0]); got == nil {
		t.Error("another user's entry must survive")
	}
}

func TestProgressCache_StoreDown(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewProgressCache(client, cacheZone)
	mr.Close()
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, cacheZone)

	if _, err := cache.Generation(ctx, "u1"); err == nil {
		t.Error("Generation: expected an error")
	}
	if _, err := cache.Get(ctx, "u1", 0, day); err == nil {
		t.Error("Get: expected an error")
	}
	if err := cache.Set(ctx, "u1", 0, day, testSummary(day)); err == nil {
		t.Error("Set: expected an error")
	}
	if err := cache.Invalidate(ctx, "u1"); err == nil {
		t.Error("Invalidate: expected an error")
	}
}
