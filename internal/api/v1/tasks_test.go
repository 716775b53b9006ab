package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/weekmatrix/weekmatrix/internal/api/v1"
	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// createTask posts a task through the API and returns the created resource.
func createTask(t *testing.T, api humatest.TestAPI, uid, title string) domain.Task {
	t.Helper()

	resp := api.PostCtx(userCtx(uid), "/tasks", map[string]any{
		"title":      title,
		"timePeriod": "daily",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var task domain.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	return task
}

func listTasks(t *testing.T, api humatest.TestAPI, uid string) []domain.Task {
	t.Helper()

	resp := api.GetCtx(userCtx(uid), "/tasks")
	require.Equal(t, http.StatusOK, resp.Code)

	var tasks []domain.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	return tasks
}

// ---------------------------------------------------------------------------
// POST /tasks
// ---------------------------------------------------------------------------

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Exercise", created.Title)
		assert.Equal(t, domain.TaskStateActive, created.State)
		assert.Equal(t, domain.PeriodDaily, created.TimePeriod)

		tasks := listTasks(t, api, "u1")
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
	})

	t.Run("whitespace_title_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.PostCtx(userCtx("u1"), "/tasks", map[string]any{
			"title": "   ",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.Post("/tasks", map[string]any{"title": "Exercise"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /tasks
// ---------------------------------------------------------------------------

func TestListTasks(t *testing.T) {
	t.Parallel()

	t.Run("empty_for_new_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		assert.Empty(t, listTasks(t, api, "u1"))
	})

	t.Run("isolated_per_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		createTask(t, api, "alice", "Alice's habit")
		assert.Empty(t, listTasks(t, api, "bob"))
	})
}

// ---------------------------------------------------------------------------
// PUT /tasks/{id}
// ---------------------------------------------------------------------------

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("rename", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")

		resp := api.PutCtx(userCtx("u1"), "/tasks/"+created.ID, map[string]any{
			"title": "Morning exercise",
		})
		require.Equal(t, http.StatusNoContent, resp.Code)

		tasks := listTasks(t, api, "u1")
		require.Len(t, tasks, 1)
		assert.Equal(t, "Morning exercise", tasks[0].Title)
		assert.Equal(t, domain.PeriodDaily, tasks[0].TimePeriod)
	})

	t.Run("blank_title_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")

		resp := api.PutCtx(userCtx("u1"), "/tasks/"+created.ID, map[string]any{
			"title": "  ",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("unknown_id_is_silent_noop", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())
		createTask(t, api, "u1", "Exercise")

		resp := api.PutCtx(userCtx("u1"), "/tasks/task_missing", map[string]any{
			"title": "Ghost",
		})
		assert.Equal(t, http.StatusNoContent, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /tasks/{id}
// ---------------------------------------------------------------------------

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	v1.RegisterTaskRoutes(api, newSessions())

	created := createTask(t, api, "u1", "Exercise")

	resp := api.DeleteCtx(userCtx("u1"), "/tasks/"+created.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, listTasks(t, api, "u1"))
}

// ---------------------------------------------------------------------------
// PATCH /tasks/{id}/state
// ---------------------------------------------------------------------------

func TestSetTaskState(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	v1.RegisterTaskRoutes(api, newSessions())

	created := createTask(t, api, "u1", "Exercise")

	resp := api.PatchCtx(userCtx("u1"), "/tasks/"+created.ID+"/state", map[string]any{
		"state": "completed",
	})
	require.Equal(t, http.StatusNoContent, resp.Code)

	tasks := listTasks(t, api, "u1")
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskStateCompleted, tasks[0].State)
}

// ---------------------------------------------------------------------------
// POST /tasks/{id}/days/{day}
// ---------------------------------------------------------------------------

func TestToggleTaskDay(t *testing.T) {
	t.Parallel()

	t.Run("toggle", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")

		resp := api.PostCtx(userCtx("u1"), "/tasks/"+created.ID+"/days/Wed", map[string]any{})
		require.Equal(t, http.StatusNoContent, resp.Code)

		tasks := listTasks(t, api, "u1")
		require.Len(t, tasks, 1)
		assert.True(t, tasks[0].Matrix["Wed"])
	})

	t.Run("explicit_value", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")

		resp := api.PostCtx(userCtx("u1"), "/tasks/"+created.ID+"/days/Fri", map[string]any{
			"value": true,
		})
		require.Equal(t, http.StatusNoContent, resp.Code)

		resp = api.PostCtx(userCtx("u1"), "/tasks/"+created.ID+"/days/Fri", map[string]any{
			"value": true,
		})
		require.Equal(t, http.StatusNoContent, resp.Code)

		tasks := listTasks(t, api, "u1")
		assert.True(t, tasks[0].Matrix["Fri"], "explicit set is idempotent")
	})

	t.Run("invalid_day", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Exercise")

		resp := api.PostCtx(userCtx("u1"), "/tasks/"+created.ID+"/days/Wednesday", map[string]any{})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /tasks/demo, /tasks/reset
// ---------------------------------------------------------------------------

func TestDemoAndReset(t *testing.T) {
	t.Parallel()

	t.Run("demo_fills_empty_list", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.PostCtx(userCtx("u1"), "/tasks/demo", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)

		var tasks []domain.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
		assert.Len(t, tasks, 3)
	})

	t.Run("demo_noop_on_populated_list", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		created := createTask(t, api, "u1", "Mine")

		resp := api.PostCtx(userCtx("u1"), "/tasks/demo", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)

		var tasks []domain.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
	})

	t.Run("reset_empties_everything", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		createTask(t, api, "u1", "Exercise")
		createTask(t, api, "u1", "Reading")

		resp := api.PostCtx(userCtx("u1"), "/tasks/reset", map[string]any{})
		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.Empty(t, listTasks(t, api, "u1"))
	})
}

// ---------------------------------------------------------------------------
// POST /tasks/import
// ---------------------------------------------------------------------------

func TestImportTasks(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.PostCtx(userCtx("u1"), "/tasks/import", strings.NewReader(`{
			"tasks": [
				{"title": "Morning run", "period": "daily", "startTime": "07:00", "endTime": "07:30"},
				{"title": "Weekly review", "period": "weekly"}
			]
		}`))
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Imported int           `json:"imported"`
			Tasks    []domain.Task `json:"tasks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 2, body.Imported)
		assert.Len(t, body.Tasks, 2)

		assert.Len(t, listTasks(t, api, "u1"), 2)
	})

	t.Run("validation_error_names_task_index", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.PostCtx(userCtx("u1"), "/tasks/import", strings.NewReader(`{
			"tasks": [
				{"title": "Fine", "period": "daily"},
				{"title": "Broken", "period": "hourly"}
			]
		}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

		var errBody map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		detail := fmt.Sprint(errBody["detail"])
		assert.Contains(t, detail, "task 2")
	})

	t.Run("nothing_imported_on_failure", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, newSessions())

		resp := api.PostCtx(userCtx("u1"), "/tasks/import", strings.NewReader(`{
			"tasks": [
				{"title": "Fine", "period": "daily"},
				{"title": "", "period": "daily"}
			]
		}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Empty(t, listTasks(t, api, "u1"), "all-or-nothing import")
	})
}
