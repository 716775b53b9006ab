package store_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/store"
)

// fakeKV is an in-memory store.KV for adapter tests.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string

	getErr    error
	setErr    error
	deleteErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.data, key)
	return nil
}

func (f *fakeKV) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeKV) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

func storedTask(id, title string) domain.Task {
	return domain.Task{
		ID:         id,
		Title:      title,
		State:      domain.TaskStateActive,
		TimePeriod: domain.PeriodWeekly,
		Matrix:     domain.DefaultMatrix(),
		CreatedAt:  "2026-03-02T09:30:00.000Z",
	}
}

func TestTasksKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "weekmatrix.tasks.v2.user_42", store.TasksKey("user_42"))
	assert.Equal(t, "weekmatrix.tasks.v1", store.LegacyTasksKey)
}

func TestAdapterSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	adapter := store.NewAdapter(kv)
	ctx := context.Background()

	saved := []domain.Task{storedTask("task_a", "Exercise"), storedTask("task_b", "Reading")}
	saved[1].Matrix["Tue"] = true

	require.NoError(t, adapter.Save(ctx, "u1", saved))

	loaded, err := adapter.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestAdapterLoadMissingKey(t *testing.T) {
	t.Parallel()

	adapter := store.NewAdapter(newFakeKV())

	loaded, err := adapter.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAdapterLoadCorruptedPayload(t *testing.T) {
	t.Parallel()

	t.Run("non_array_json", func(t *testing.T) {
		t.Parallel()

		kv := newFakeKV()
		kv.put(store.TasksKey("u1"), `{"oops":"not an array"}`)
		adapter := store.NewAdapter(kv)

		loaded, err := adapter.Load(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, loaded)

		_, ok := kv.get(store.TasksKey("u1"))
		assert.False(t, ok, "corrupted key must be deleted")
	})

	t.Run("unparseable_text", func(t *testing.T) {
		t.Parallel()

		kv := newFakeKV()
		kv.put(store.TasksKey("u1"), `not json at all`)
		adapter := store.NewAdapter(kv)

		loaded, err := adapter.Load(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestAdapterLegacyMigration(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	legacy := []domain.Task{storedTask("task_old", "Old habit")}
	payload, err := json.Marshal(legacy)
	require.NoError(t, err)
	kv.put(store.LegacyTasksKey, string(payload))

	adapter := store.NewAdapter(kv)
	loaded, err := adapter.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "task_old", loaded[0].ID)

	// Data now lives under the namespaced key; the legacy key is gone.
	_, ok := kv.get(store.LegacyTasksKey)
	assert.False(t, ok)
	migrated, ok := kv.get(store.TasksKey("u1"))
	require.True(t, ok)
	assert.Contains(t, migrated, "task_old")
}

func TestAdapterLegacyIgnoredWhenNamespacedExists(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	current, err := json.Marshal([]domain.Task{storedTask("task_new", "Current")})
	require.NoError(t, err)
	stale, err := json.Marshal([]domain.Task{storedTask("task_old", "Stale")})
	require.NoError(t, err)
	kv.put(store.TasksKey("u1"), string(current))
	kv.put(store.LegacyTasksKey, string(stale))

	adapter := store.NewAdapter(kv)
	loaded, err := adapter.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "task_new", loaded[0].ID)

	// The legacy key is only consumed by the migration path.
	_, ok := kv.get(store.LegacyTasksKey)
	assert.True(t, ok)
}

func TestAdapterSaveDropsInvalidTasks(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	adapter := store.NewAdapter(kv)
	ctx := context.Background()

	broken := storedTask("task_b", "Broken")
	broken.CreatedAt = "not-a-timestamp"

	require.NoError(t, adapter.Save(ctx, "u1", []domain.Task{storedTask("task_a", "Good"), broken}))

	loaded, err := adapter.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "task_a", loaded[0].ID)
}

func TestAdapterClear(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	adapter := store.NewAdapter(kv)
	ctx := context.Background()

	require.NoError(t, adapter.Save(ctx, "u1", []domain.Task{storedTask("task_a", "Gone soon")}))
	require.NoError(t, adapter.Clear(ctx, "u1"))

	_, ok := kv.get(store.TasksKey("u1"))
	assert.False(t, ok)
}

func TestDemoTasks(t *testing.T) {
	t.Parallel()

	demo := store.DemoTasks()
	require.Len(t, demo, 3)

	byID := make(map[string]domain.Task, len(demo))
	for _, task := range demo {
		require.True(t, task.Valid(), "demo task %s must be valid", task.ID)
		byID[task.ID] = task
	}

	exercise := byID["demo_exercise"]
	assert.True(t, exercise.Matrix["Mon"])
	assert.True(t, exercise.Matrix["Wed"])
	assert.True(t, exercise.Matrix["Fri"])
	assert.False(t, exercise.Matrix["Sun"])

	reading := byID["demo_reading"]
	assert.True(t, reading.Matrix["Tue"])
	assert.True(t, reading.Matrix["Thu"])
	assert.True(t, reading.Matrix["Sat"])

	review := byID["demo_review"]
	assert.Equal(t, domain.PeriodWeekly, review.TimePeriod)
	assert.True(t, review.Matrix["Sun"])

	// Two calls must not share matrix maps.
	again := store.DemoTasks()
	again[0].Matrix["Sun"] = true
	assert.False(t, store.DemoTasks()[0].Matrix["Sun"])
}
