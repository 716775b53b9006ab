package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// isoMillis matches the millisecond-precision UTC format the mobile clients
// historically wrote (JavaScript Date.toISOString).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// coerceTasks converts raw stored entries into valid tasks. An entry that
// already satisfies every task invariant is kept byte-for-byte; anything else
// goes through per-field coercion or is dropped.
func coerceTasks(items []json.RawMessage) []domain.Task {
	tasks := make([]domain.Task, 0, len(items))

	for _, item := range items {
		var t domain.Task
		if err := json.Unmarshal(item, &t); err == nil && t.Valid() {
			tasks = append(tasks, t)
			continue
		}

		var rec map[string]any
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		if coerced, ok := coerceTask(rec); ok {
			tasks = append(tasks, coerced)
		}
	}

	return tasks
}

// coerceTask repairs one legacy-shaped record. Entries without a usable id and
// title are dropped entirely, never patched with placeholders.
func coerceTask(rec map[string]any) (domain.Task, bool) {
	id, _ := rec["id"].(string)
	title, _ := rec["title"].(string)
	title = strings.TrimSpace(title)
	if id == "" || title == "" {
		return domain.Task{}, false
	}

	createdAt, ok := coerceCreatedAt(rec["createdAt"])
	if !ok {
		createdAt = time.Now().UTC().Format(isoMillis)
	}

	// Back-compat field names: `timePeriod` or legacy `period`,
	// `state` or progress-style `status`.
	period := rec["timePeriod"]
	if period == nil {
		period = rec["period"]
	}
	state := rec["state"]
	if state == nil {
		state = rec["status"]
	}

	t := domain.Task{
		ID:         id,
		Title:      title,
		State:      coerceState(state),
		TimePeriod: coercePeriod(period),
		Matrix:     coerceMatrix(rec["matrix"]),
		CreatedAt:  createdAt,
	}

	if desc, isStr := rec["description"].(string); isStr {
		t.Description = desc
	}
	if start, isStr := rec["startTime"].(string); isStr {
		t.StartTime = start
	}
	if end, isStr := rec["endTime"].(string); isStr {
		t.EndTime = end
	}
	if reminder, isBool := rec["reminderEnabled"].(bool); isBool {
		t.ReminderEnabled = reminder
	}

	return t, true
}

// coerceCreatedAt accepts an RFC 3339 or date-only string, an
// epoch-millisecond number, or a Firestore-style {seconds} object,
// normalised to an ISO string.
func coerceCreatedAt(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
			return ts.UTC().Format(isoMillis), true
		}
		if ts, err := time.Parse("2006-01-02", val); err == nil {
			return ts.UTC().Format(isoMillis), true
		}
		return "", false
	case float64:
		return time.UnixMilli(int64(val)).UTC().Format(isoMillis), true
	case map[string]any:
		if secs, isNum := val["seconds"].(float64); isNum {
			return time.Unix(int64(secs), 0).UTC().Format(isoMillis), true
		}
		return "", false
	default:
		return "", false
	}
}

// coerceState maps anything other than exactly "completed" to active.
func coerceState(v any) domain.TaskState {
	if s, ok := v.(string); ok && domain.TaskState(s) == domain.TaskStateCompleted {
		return domain.TaskStateCompleted
	}
	return domain.TaskStateActive
}

func coercePeriod(v any) domain.TimePeriod {
	if s, ok := v.(string); ok && domain.TimePeriod(s).Valid() {
		return domain.TimePeriod(s)
	}
	return domain.PeriodWeekly
}

// coerceMatrix keeps a well-formed matrix and replaces anything else wholesale
// with the all-false default. No partial repair.
func coerceMatrix(v any) domain.Matrix {
	rec, ok := v.(map[string]any)
	if !ok {
		return domain.DefaultMatrix()
	}

	m := make(domain.Matrix, len(domain.WeekDays))
	for _, day := range domain.WeekDays {
		b, isBool := rec[string(day)].(bool)
		if !isBool {
			return domain.DefaultMatrix()
		}
		m[day] = b
	}
	return m
}
