package redis

import (
	"testing"
	"time"
)

func TestKeys_UseReferenceZoneDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2026-03-10 20:00 UTC is already 2026-03-11 in UTC+9.
	instant := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	locker := NewDayLocker(nil, loc)
	if got := locker.key("u1", instant); got != "lock:record:u1:2026-03-11" {
		t.Errorf("lock key: got %q", got)
	}

	cache := NewProgressCache(nil, loc)
	if got := cache.key("u1", 3, instant); got != "progress:u1:g3:2026-03-11" {
		t.Errorf("progress key: got %q", got)
	}
	if got := cache.genKey("u1"); got != "progress:u1:gen" {
		t.Errorf("generation key: got %q", got)
	}
}

func TestNewDayLocker_DefaultsToUTC(t *testing.T) {
	l := NewDayLocker(nil, nil)
	if got := l.key("u1", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)); got != "lock:record:u1:2026-03-10" {
		t.Errorf("got %q", got)
	}
}
