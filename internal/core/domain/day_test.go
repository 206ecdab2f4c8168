package domain

import (
	"errors"
	"testing"
	"time"
)

func TestStartOfDay_SameCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2026, 3, 10, 23, 59, 0, 0, loc)
	early := time.Date(2026, 3, 10, 0, 1, 0, 0, loc)

	a := StartOfDay(late, loc)
	b := StartOfDay(early, loc)

	if !a.Equal(b) {
		t.Fatalf("23:59 and 00:01 of the same day must normalize equally: %v vs %v", a, b)
	}
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	if !a.Equal(want) {
		t.Errorf("want %v, got %v", want, a)
	}
}

func TestStartOfDay_UsesReferenceZone(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 20:00 UTC on the 10th is already the 11th in UTC+9.
	instant := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	got := StartOfDay(instant, loc)

	if DayKey(got, loc) != "2026-03-11" {
		t.Errorf("want 2026-03-11, got %s", DayKey(got, loc))
	}
}

func TestStartOfDay_NilLocationIsUTC(t *testing.T) {
	got := StartOfDay(time.Date(2026, 3, 10, 15, 4, 5, 6, time.UTC), nil)
	if !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected %v", got)
	}
}

func TestAddDays(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)

	if got := AddDays(day, -6, loc); DayKey(got, loc) != "2026-02-23" {
		t.Errorf("minus 6: got %s", DayKey(got, loc))
	}
	if got := AddDays(day, 1, loc); DayKey(got, loc) != "2026-03-02" {
		t.Errorf("plus 1: got %s", DayKey(got, loc))
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)

	got, err := ParseDay("2026-03-10", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)) {
		t.Errorf("date: got %v", got)
	}

	got, err = ParseDay("2026-03-11T02:00:00Z", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if DayKey(got, loc) != "2026-03-10" {
		t.Errorf("rfc3339 should map to the reference-zone date, got %s", DayKey(got, loc))
	}

	got, err = ParseDay("  ", loc)
	if err != nil || !got.IsZero() {
		t.Errorf("blank must yield zero time, got %v %v", got, err)
	}

	if _, err := ParseDay("10/03/2026", loc); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
