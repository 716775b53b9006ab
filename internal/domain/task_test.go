package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

func validTask() domain.Task {
	return domain.Task{
		ID:         "task_1",
		Title:      "Exercise",
		State:      domain.TaskStateActive,
		TimePeriod: domain.PeriodWeekly,
		Matrix:     domain.DefaultMatrix(),
		CreatedAt:  "2026-01-05T08:00:00.000Z",
	}
}

func TestTaskValid(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		assert.True(t, task.Valid())
	})

	t.Run("missing_id", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.ID = ""
		assert.False(t, task.Valid())
	})

	t.Run("blank_title", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.Title = "   "
		assert.False(t, task.Valid())
	})

	t.Run("unknown_state", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.State = "paused"
		assert.False(t, task.Valid())
	})

	t.Run("unknown_period", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.TimePeriod = "fortnightly"
		assert.False(t, task.Valid())
	})

	t.Run("matrix_missing_day", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		delete(task.Matrix, "Sun")
		assert.False(t, task.Valid())
	})

	t.Run("matrix_extra_key", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.Matrix["Funday"] = true
		assert.False(t, task.Valid())
	})

	t.Run("unparseable_created_at", func(t *testing.T) {
		t.Parallel()
		task := validTask()
		task.CreatedAt = "last tuesday"
		assert.False(t, task.Valid())
	})
}

func TestDefaultMatrix(t *testing.T) {
	t.Parallel()

	m := domain.DefaultMatrix()
	require.Len(t, m, 7)
	for _, day := range domain.WeekDays {
		assert.False(t, m[day], "day %s must start unchecked", day)
	}
	assert.True(t, m.Valid())
}

func TestMatrixClone(t *testing.T) {
	t.Parallel()

	m := domain.DefaultMatrix()
	m["Mon"] = true

	clone := m.Clone()
	clone["Mon"] = false
	clone["Tue"] = true

	assert.True(t, m["Mon"], "mutating the clone must not touch the original")
	assert.False(t, m["Tue"])
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	task := validTask()
	task.Matrix["Wed"] = true

	clone := task.Clone()
	clone.Title = "Changed"
	clone.Matrix["Wed"] = false

	assert.Equal(t, "Exercise", task.Title)
	assert.True(t, task.Matrix["Wed"])
}

func TestCloneTasks(t *testing.T) {
	t.Parallel()

	original := []domain.Task{validTask(), validTask()}
	original[1].ID = "task_2"

	cloned := domain.CloneTasks(original)
	require.Len(t, cloned, 2)

	cloned[0].Matrix["Fri"] = true
	assert.False(t, original[0].Matrix["Fri"])

	assert.Empty(t, domain.CloneTasks(nil))
}

func TestWeekdayValid(t *testing.T) {
	t.Parallel()

	for _, day := range domain.WeekDays {
		assert.True(t, day.Valid(), "day %s", day)
	}
	assert.False(t, domain.Weekday("Monday").Valid())
	assert.False(t, domain.Weekday("").Valid())
}
