package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mood is the self-reported mood label for a day. The zero value means unset.
type Mood string

const (
	MoodUnset    Mood = ""
	MoodVeryGood Mood = "very_good"
	MoodGood     Mood = "good"
	MoodNeutral  Mood = "neutral"
	MoodBad      Mood = "bad"
	MoodVeryBad  Mood = "very_bad"
)

var validMoods = map[Mood]struct{}{
	MoodUnset:    {},
	MoodVeryGood: {},
	MoodGood:     {},
	MoodNeutral:  {},
	MoodBad:      {},
	MoodVeryBad:  {},
}

// IsValid reports whether m is a known label or unset.
func (m Mood) IsValid() bool {
	_, ok := validMoods[m]
	return ok
}

// Activity names one of the tracked daily habits.
type Activity string

const (
	ActivityExercise   Activity = "exercise"
	ActivityReading    Activity = "reading"
	ActivityMeditation Activity = "meditation"
	ActivityJournaling Activity = "journaling"
)

// Activities lists the fixed activity set in display order.
var Activities = []Activity{ActivityExercise, ActivityReading, ActivityMeditation, ActivityJournaling}

// IsValid reports whether a belongs to the fixed activity set.
func (a Activity) IsValid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// Metric defaults applied to a freshly created record.
const (
	DefaultSleepHours  = 7.0
	DefaultStressLevel = 3
	DefaultWaterIntake = 4.0
	DefaultMealQuality = 3
)

// Metric bounds.
const (
	MaxSleepHours = 24.0
	MinStress     = 1
	MaxStress     = 5
	MinMeal       = 1
	MaxMeal       = 5
)

// Metrics holds the lifestyle measurements for a day.
type Metrics struct {
	SleepHours  float64 `json:"sleep_hours"`
	StressLevel int     `json:"stress_level"`
	WaterIntake float64 `json:"water_intake"`
	MealQuality int     `json:"meal_quality"`
	Notes       string  `json:"notes"`
}

// DefaultMetrics returns the metrics every new record starts with.
func DefaultMetrics() Metrics {
	return Metrics{
		SleepHours:  DefaultSleepHours,
		StressLevel: DefaultStressLevel,
		WaterIntake: DefaultWaterIntake,
		MealQuality: DefaultMealQuality,
	}
}

// DailyRecord is the single per-user, per-day mood/activity/metrics document.
// Day is midnight of the calendar day in the reference timezone.
type DailyRecord struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Day        time.Time         `json:"day"`
	Mood       Mood              `json:"mood"`
	Activities map[Activity]bool `json:"activities"`
	Metrics    Metrics           `json:"metrics"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewDailyRecord returns an unsaved record for (userID, day) seeded with the
// documented defaults.
func NewDailyRecord(userID string, day, now time.Time) *DailyRecord {
	acts := make(map[Activity]bool, len(Activities))
	for _, a := range Activities {
		acts[a] = false
	}
	return &DailyRecord{
		UserID:     userID,
		Day:        day,
		Mood:       MoodUnset,
		Activities: acts,
		Metrics:    DefaultMetrics(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of r.
func (r *DailyRecord) Clone() *DailyRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Activities = make(map[Activity]bool, len(r.Activities))
	for k, v := range r.Activities {
		c.Activities[k] = v
	}
	return &c
}

// ActivityCompletion is the share of this record's activities marked done.
func (r *DailyRecord) ActivityCompletion() float64 {
	return ComputeActivityCompletion(r.Activities)
}

// MetricsUpdate carries the metric fields a caller wants to change. Nil
// fields are left untouched.
type MetricsUpdate struct {
	SleepHours  *float64
	StressLevel *int
	WaterIntake *float64
	MealQuality *int
	Notes       *string
}

// IsEmpty reports whether no metric field is set.
func (m MetricsUpdate) IsEmpty() bool {
	return m.SleepHours == nil && m.StressLevel == nil && m.WaterIntake == nil &&
		m.MealQuality == nil && m.Notes == nil
}

// RecordUpdate is a partial write against a DailyRecord.
//
// Activities replaces the stored map wholesale when non-nil: keys missing
// from the update are dropped, they are not merged per key.
type RecordUpdate struct {
	Mood       *Mood
	Activities map[Activity]bool
	Metrics    MetricsUpdate
}

// Validate checks every provided field and returns an error wrapping
// ErrValidation describing all problems found.
func (u RecordUpdate) Validate() error {
	var problems []string

	if u.Mood != nil && !u.Mood.IsValid() {
		problems = append(problems, fmt.Sprintf("mood %q is not one of: %s", *u.Mood, moodList()))
	}
	for a := range u.Activities {
		if !a.IsValid() {
			problems = append(problems, fmt.Sprintf("activity %q is not one of: %s", a, activityList()))
		}
	}

	m := u.Metrics
	if m.SleepHours != nil && (*m.SleepHours < 0 || *m.SleepHours > MaxSleepHours) {
		problems = append(problems, "sleep_hours must be between 0 and 24")
	}
	if m.StressLevel != nil && (*m.StressLevel < MinStress || *m.StressLevel > MaxStress) {
		problems = append(problems, "stress_level must be between 1 and 5")
	}
	if m.WaterIntake != nil && *m.WaterIntake < 0 {
		problems = append(problems, "water_intake must not be negative")
	}
	if m.MealQuality != nil && (*m.MealQuality < MinMeal || *m.MealQuality > MaxMeal) {
		problems = append(problems, "meal_quality must be between 1 and 5")
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

// ApplyTo merges u into r. Identity fields (ID, UserID, Day, CreatedAt) and
// UpdatedAt are not touched.
func (u RecordUpdate) ApplyTo(r *DailyRecord) {
	if u.Mood != nil {
		r.Mood = *u.Mood
	}
	if u.Activities != nil {
		acts := make(map[Activity]bool, len(u.Activities))
		for k, v := range u.Activities {
			acts[k] = v
		}
		r.Activities = acts
	}

	m := u.Metrics
	if m.SleepHours != nil {
		r.Metrics.SleepHours = *m.SleepHours
	}
	if m.StressLevel != nil {
		r.Metrics.StressLevel = *m.StressLevel
	}
	if m.WaterIntake != nil {
		r.Metrics.WaterIntake = *m.WaterIntake
	}
	if m.MealQuality != nil {
		r.Metrics.MealQuality = *m.MealQuality
	}
	if m.Notes != nil {
		r.Metrics.Notes = *m.Notes
	}
}

func moodList() string {
	return "very_good, good, neutral, bad, very_bad"
}

func activityList() string {
	names := make([]string, len(Activities))
	for i, a := range Activities {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
