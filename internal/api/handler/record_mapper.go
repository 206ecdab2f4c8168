package handler

import (
	"time"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// --- Request → domain update ---

func toRecordUpdate(req recordUpdateRequest) domain.RecordUpdate {
	var u domain.RecordUpdate
	if req.Mood != nil {
		m := domain.Mood(*req.Mood)
		u.Mood = &m
	}
	if req.Activities != nil {
		u.Activities = make(map[domain.Activity]bool, len(req.Activities))
		for k, v := range req.Activities {
			u.Activities[domain.Activity(k)] = v
		}
	}
	if req.Metrics != nil {
		u.Metrics = domain.MetricsUpdate{
			SleepHours:  req.Metrics.SleepHours,
			StressLevel: req.Metrics.StressLevel,
			WaterIntake: req.Metrics.WaterIntake,
			MealQuality: req.Metrics.MealQuality,
			Notes:       req.Metrics.Notes,
		}
	}
	return u
}

// --- Domain → HTTP response ---

func toRecordResponse(r *domain.DailyRecord, loc *time.Location) recordResponse {
	acts := make(map[string]bool, len(r.Activities))
	for k, v := range r.Activities {
		acts[string(k)] = v
	}
	return recordResponse{
		ID:         r.ID,
		Date:       domain.DayKey(r.Day, loc),
		Mood:       string(r.Mood),
		Activities: acts,
		Metrics: metricsResponse{
			SleepHours:  r.Metrics.SleepHours,
			StressLevel: r.Metrics.StressLevel,
			WaterIntake: r.Metrics.WaterIntake,
			MealQuality: r.Metrics.MealQuality,
			Notes:       r.Metrics.Notes,
		},
		ActivityCompletion: r.ActivityCompletion(),
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

func toRecordListResponse(recs []*domain.DailyRecord, from, to time.Time, loc *time.Location) recordListResponse {
	items := make([]recordResponse, 0, len(recs))
	for _, r := range recs {
		items = append(items, toRecordResponse(r, loc))
	}
	return recordListResponse{
		From:  domain.DayKey(from, loc),
		To:    domain.DayKey(to, loc),
		Count: len(items),
		Items: items,
	}
}

func toProgressResponse(s *domain.ProgressSummary, loc *time.Location) progressResponse {
	return progressResponse{
		Date:                      domain.DayKey(s.Day, loc),
		WindowStart:               domain.DayKey(s.WindowStart, loc),
		RecordsInWindow:           s.RecordsInWindow,
		WeeklyProgress:            s.WeeklyProgress,
		WeeklyProgressDisplay:     s.WeeklyProgressDisplay,
		ActivityCompletion:        s.ActivityCompletion,
		ActivityCompletionDisplay: s.ActivityCompletionDisplay,
		HasRecordForDay:           s.HasRecordForDay,
	}
}
