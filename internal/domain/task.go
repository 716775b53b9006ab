package domain

import (
	"strings"
	"time"
)

type TaskState string

const (
	TaskStateActive    TaskState = "active"
	TaskStateCompleted TaskState = "completed"
)

// Valid reports whether s is one of the two recognised task states.
func (s TaskState) Valid() bool {
	return s == TaskStateActive || s == TaskStateCompleted
}

type TimePeriod string

const (
	PeriodDaily   TimePeriod = "daily"
	PeriodWeekly  TimePeriod = "weekly"
	PeriodMonthly TimePeriod = "monthly"
	PeriodYearly  TimePeriod = "yearly"
)

// TimePeriods lists all recognised periods in display order.
var TimePeriods = []TimePeriod{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

func (p TimePeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	default:
		return false
	}
}

type Weekday string

// WeekDays is the Monday-first key order of a task matrix.
var WeekDays = []Weekday{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) Valid() bool {
	for _, day := range WeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// Matrix is the Mon–Sun completion grid for one task in the current week.
// A valid matrix always holds exactly the seven weekday keys.
type Matrix map[Weekday]bool

// DefaultMatrix returns an all-false matrix with all seven weekday keys.
func DefaultMatrix() Matrix {
	m := make(Matrix, len(WeekDays))
	for _, day := range WeekDays {
		m[day] = false
	}
	return m
}

// Valid reports whether m holds exactly the seven weekday keys and no others.
func (m Matrix) Valid() bool {
	if len(m) != len(WeekDays) {
		return false
	}
	for _, day := range WeekDays {
		if _, ok := m[day]; !ok {
			return false
		}
	}
	return true
}

func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for day, v := range m {
		out[day] = v
	}
	return out
}

// Task is the canonical persisted unit: a trackable habit with a recurrence
// period and a weekly completion matrix. The optional description/time/reminder
// fields come from the JSON import contract and are absent on tasks created
// through the session controller.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	State      TaskState  `json:"state"`
	TimePeriod TimePeriod `json:"timePeriod"`
	Matrix     Matrix     `json:"matrix"`
	CreatedAt  string     `json:"createdAt"` // RFC 3339

	Description     string `json:"description,omitempty"`
	StartTime       string `json:"startTime,omitempty"` // HH:MM
	EndTime         string `json:"endTime,omitempty"`   // HH:MM
	ReminderEnabled bool   `json:"reminderEnabled,omitempty"`
}

// Valid reports whether t satisfies every stored-task invariant: non-empty id,
// non-whitespace title, recognised state and period, a complete matrix, and a
// parseable createdAt timestamp.
func (t *Task) Valid() bool {
	if t.ID == "" || strings.TrimSpace(t.Title) == "" {
		return false
	}
	if !t.State.Valid() || !t.TimePeriod.Valid() || !t.Matrix.Valid() {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, t.CreatedAt)
	return err == nil
}

// Clone returns a deep copy; the matrix map is never shared.
func (t Task) Clone() Task {
	out := t
	out.Matrix = t.Matrix.Clone()
	return out
}

// CloneTasks deep-copies a task list.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
