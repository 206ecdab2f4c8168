package domain

import (
	"math"
	"time"
)

// WeekLength is the number of calendar days in the weekly progress window.
const WeekLength = 7

// ComputeActivityCompletion returns the percentage of entries in acts that
// are true. The denominator is the number of keys present, so an empty map
// is 0%.
func ComputeActivityCompletion(acts map[Activity]bool) float64 {
	if len(acts) == 0 {
		return 0
	}
	done := 0
	for _, v := range acts {
		if v {
			done++
		}
	}
	return float64(done) / float64(len(acts)) * 100
}

// ComputeWeeklyProgress returns recordCount / 7 as a percentage clamped to
// [0, 100]. Record completeness is not considered.
func ComputeWeeklyProgress(recordCount int) float64 {
	if recordCount <= 0 {
		return 0
	}
	p := float64(recordCount) / WeekLength * 100
	if p > 100 {
		return 100
	}
	return p
}

// RoundPercent rounds half away from zero for display (42.857 -> 43).
func RoundPercent(p float64) int {
	return int(math.Round(p))
}

// ProgressSummary is the dashboard view for one day.
type ProgressSummary struct {
	Day                       time.Time `json:"day"`
	WindowStart               time.Time `json:"window_start"`
	RecordsInWindow           int       `json:"records_in_window"`
	WeeklyProgress            float64   `json:"weekly_progress"`
	WeeklyProgressDisplay     int       `json:"weekly_progress_display"`
	ActivityCompletion        float64   `json:"activity_completion"`
	ActivityCompletionDisplay int       `json:"activity_completion_display"`
	HasRecordForDay           bool      `json:"has_record_for_day"`
}
