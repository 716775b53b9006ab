// Package taskimport validates the JSON bulk-import contract and builds
// canonical tasks from it. Validation is all-or-nothing: the first violation
// aborts with a per-task-index, per-field error and nothing is written.
package taskimport

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// MaxTasks caps a single import batch.
const MaxTasks = 100

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
)

var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Entry is one task in an import payload.
type Entry struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Period          string `json:"period"`
	StartTime       string `json:"startTime,omitempty"`
	EndTime         string `json:"endTime,omitempty"`
	ReminderEnabled bool   `json:"reminderEnabled,omitempty"`
}

// Import is a validated batch.
type Import struct {
	Tasks []Entry `json:"tasks"`
}

// Parse decodes and validates a raw JSON import payload.
func Parse(data []byte) (*Import, error) {
	var imp Import
	if err := json.Unmarshal(data, &imp); err != nil {
		return nil, fmt.Errorf("taskimport.Parse: invalid JSON: %w", err)
	}
	if err := Validate(&imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// Validate checks every entry against the import contract. Error messages
// carry the 1-based task index and the offending field.
func Validate(imp *Import) error {
	if imp.Tasks == nil {
		return fmt.Errorf("taskimport: tasks must be an array")
	}
	if len(imp.Tasks) > MaxTasks {
		return fmt.Errorf("taskimport: at most %d tasks per import, got %d", MaxTasks, len(imp.Tasks))
	}

	for i := range imp.Tasks {
		if err := validateEntry(&imp.Tasks[i]); err != nil {
			return fmt.Errorf("taskimport: task %d: %w", i+1, err)
		}
	}
	return nil
}

func validateEntry(e *Entry) error {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("title must be at most %d characters", maxTitleLen)
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionLen {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLen)
	}
	if !domain.TimePeriod(e.Period).Valid() {
		return fmt.Errorf("period must be one of: daily, weekly, monthly, yearly")
	}
	if e.StartTime != "" && !timeOfDayRe.MatchString(e.StartTime) {
		return fmt.Errorf("start time must be in HH:MM format")
	}
	if e.EndTime != "" && !timeOfDayRe.MatchString(e.EndTime) {
		return fmt.Errorf("end time must be in HH:MM format")
	}
	if e.StartTime != "" && e.EndTime != "" && minutes(e.EndTime) < minutes(e.StartTime) {
		return fmt.Errorf("end time must not be before start time")
	}
	return nil
}

// minutes converts a validated HH:MM string to minutes since midnight.
func minutes(hhmm string) int {
	var h, m int
	_, _ = fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m
}

// Build constructs canonical tasks from a validated import: fresh ids,
// active state, default matrix.
func Build(imp *Import) []domain.Task {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")

	tasks := make([]domain.Task, 0, len(imp.Tasks))
	for i := range imp.Tasks {
		e := &imp.Tasks[i]
		tasks = append(tasks, domain.Task{
			ID:              "task_" + uuid.NewString(),
			Title:           strings.TrimSpace(e.Title),
			State:           domain.TaskStateActive,
			TimePeriod:      domain.TimePeriod(e.Period),
			Matrix:          domain.DefaultMatrix(),
			CreatedAt:       now,
			Description:     e.Description,
			StartTime:       e.StartTime,
			EndTime:         e.EndTime,
			ReminderEnabled: e.ReminderEnabled,
		})
	}
	return tasks
}
