package store

import (
	"time"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// DemoTasks returns the fixed preview set shown when a user's list is empty.
// Pure value, no I/O.
func DemoTasks() []domain.Task {
	now := time.Now().UTC().Format(isoMillis)

	withDays := func(days ...domain.Weekday) domain.Matrix {
		m := domain.DefaultMatrix()
		for _, day := range days {
			m[day] = true
		}
		return m
	}

	return []domain.Task{
		{
			ID:         "demo_exercise",
			Title:      "Exercise",
			State:      domain.TaskStateActive,
			TimePeriod: domain.PeriodDaily,
			Matrix:     withDays("Mon", "Wed", "Fri"),
			CreatedAt:  now,
		},
		{
			ID:         "demo_reading",
			Title:      "Read 10 pages",
			State:      domain.TaskStateActive,
			TimePeriod: domain.PeriodDaily,
			Matrix:     withDays("Tue", "Thu", "Sat"),
			CreatedAt:  now,
		},
		{
			ID:         "demo_review",
			Title:      "Weekly review",
			State:      domain.TaskStateActive,
			TimePeriod: domain.PeriodWeekly,
			Matrix:     withDays("Sun"),
			CreatedAt:  now,
		},
	}
}
