package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type metricsRequest struct {
	SleepHours  *float64 `json:"sleep_hours"  validate:"omitempty,gte=0,lte=24"`
	StressLevel *int     `json:"stress_level" validate:"omitempty,gte=1,lte=5"`
	WaterIntake *float64 `json:"water_intake" validate:"omitempty,gte=0"`
	MealQuality *int     `json:"meal_quality" validate:"omitempty,gte=1,lte=5"`
	Notes       *string  `json:"notes"        validate:"omitempty,max=2000"`
}

// recordUpdateRequest is the body of PATCH /v1/records/:id. Omitted fields are
// left untouched; activities, when present, replace the stored map.
type recordUpdateRequest struct {
	Mood       *string         `json:"mood"`
	Activities map[string]bool `json:"activities"`
	Metrics    *metricsRequest `json:"metrics"`
}

// upsertRecordRequest is the body of PUT /v1/records/day.
type upsertRecordRequest struct {
	// Date is YYYY-MM-DD in the reference timezone or RFC 3339; empty means today.
	Date string `json:"date"`
	recordUpdateRequest
}

// --- Response types ---

type metricsResponse struct {
	SleepHours  float64 `json:"sleep_hours"`
	StressLevel int     `json:"stress_level"`
	WaterIntake float64 `json:"water_intake"`
	MealQuality int     `json:"meal_quality"`
	Notes       string  `json:"notes"`
}

type recordResponse struct {
	ID                 string          `json:"id"`
	Date               string          `json:"date"`
	Mood               string          `json:"mood"`
	Activities         map[string]bool `json:"activities"`
	Metrics            metricsResponse `json:"metrics"`
	ActivityCompletion float64         `json:"activity_completion"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type upsertRecordResponse struct {
	Record  recordResponse `json:"record"`
	Created bool           `json:"created"`
}

type recordListResponse struct {
	From  string           `json:"from"`
	To    string           `json:"to"`
	Count int              `json:"count"`
	Items []recordResponse `json:"items"`
}

type progressResponse struct {
	Date                      string  `json:"date"`
	WindowStart               string  `json:"window_start"`
	RecordsInWindow           int     `json:"records_in_window"`
	WeeklyProgress            float64 `json:"weekly_progress"`
	WeeklyProgressDisplay     int     `json:"weekly_progress_display"`
	ActivityCompletion        float64 `json:"activity_completion"`
	ActivityCompletionDisplay int     `json:"activity_completion_display"`
	HasRecordForDay           bool    `json:"has_record_for_day"`
}
