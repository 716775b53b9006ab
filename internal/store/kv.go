package store

import "context"

// KV is the durable key-value backend the task store adapter writes through.
// Implemented by the postgres and redis stores.
type KV interface {
	// Get returns the stored value and whether the key existed.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const (
	// LegacyTasksKey is the pre-account global key, read once for migration
	// and then deleted.
	LegacyTasksKey = "weekmatrix.tasks.v1"

	tasksKeyPrefix = "weekmatrix.tasks.v2"
)

// TasksKey returns the per-user namespaced storage key.
func TasksKey(uid string) string {
	return tasksKeyPrefix + "." + uid
}
