// Package analytics holds the pure progress aggregation used by the weekly
// dashboard. No I/O; everything derives from the in-memory task list.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// DayProgress is one column of the weekly progress chart.
type DayProgress struct {
	Day        domain.Weekday `json:"day"`
	Completed  int            `json:"completed"`
	Total      int            `json:"total"`
	Percentage int            `json:"percentage"`
}

// TaskProgress returns the percentage of checked days in one task's matrix.
func TaskProgress(m domain.Matrix) int {
	completed := 0
	for _, done := range m {
		if done {
			completed++
		}
	}
	return pct(completed, len(domain.WeekDays))
}

// WeeklyProgress returns the completion percentage across all matrix cells.
func WeeklyProgress(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for i := range tasks {
		for _, done := range tasks[i].Matrix {
			if done {
				completed++
			}
		}
	}
	return pct(completed, len(tasks)*len(domain.WeekDays))
}

// ProgressByDay returns per-weekday completion counts across the task list.
func ProgressByDay(tasks []domain.Task) []DayProgress {
	out := make([]DayProgress, 0, len(domain.WeekDays))
	for _, day := range domain.WeekDays {
		completed := 0
		for i := range tasks {
			if tasks[i].Matrix[day] {
				completed++
			}
		}
		out = append(out, DayProgress{
			Day:        day,
			Completed:  completed,
			Total:      len(tasks),
			Percentage: pct(completed, len(tasks)),
		})
	}
	return out
}

func pct(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// PeriodID returns the bucket identifier a task's completion falls under for
// the given period: 2006-01-02 daily, 2006-W## ISO week, 2006-01 monthly,
// 2006 yearly.
func PeriodID(period domain.TimePeriod, now time.Time) string {
	switch period {
	case domain.PeriodDaily:
		return now.Format("2006-01-02")
	case domain.PeriodWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case domain.PeriodMonthly:
		return now.Format("2006-01")
	case domain.PeriodYearly:
		return now.Format("2006")
	default:
		return now.Format("2006-01-02")
	}
}

// WeekDates returns the dates of the current Monday-first week.
func WeekDates(now time.Time) [7]time.Time {
	offset := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		offset = 6
	}
	monday := now.AddDate(0, 0, -offset)

	var dates [7]time.Time
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}
