package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// Adapter converts between the durable key-value representation and strict
// in-memory tasks. It tolerates every historical on-disk shape: legacy field
// names, Firestore-style timestamps, and the pre-account global key.
type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load reads the user's task list. A missing namespaced key falls back once
// to the legacy global key; data found there is coerced, written under the
// namespaced key, and the legacy key is deleted. A non-array payload is
// treated as corruption: the key is deleted and an empty list returned.
func (a *Adapter) Load(ctx context.Context, uid string) ([]domain.Task, error) {
	key := TasksKey(uid)

	raw, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store.Adapter.Load: %w", err)
	}
	if ok {
		items, arrOK := decodeArray(raw)
		if !arrOK {
			log.Warn().Str("key", key).Msg("stored tasks were not an array; clearing corrupted data")
			if delErr := a.kv.Delete(ctx, key); delErr != nil {
				return nil, fmt.Errorf("store.Adapter.Load: clear corrupted: %w", delErr)
			}
			return []domain.Task{}, nil
		}
		return coerceTasks(items), nil
	}

	// Migration: no user-scoped tasks yet, fall back to the legacy global key.
	legacyRaw, legacyOK, err := a.kv.Get(ctx, LegacyTasksKey)
	if err != nil {
		return nil, fmt.Errorf("store.Adapter.Load: legacy read: %w", err)
	}
	if !legacyOK {
		return []domain.Task{}, nil
	}

	items, arrOK := decodeArray(legacyRaw)
	if !arrOK {
		log.Warn().Msg("legacy stored tasks were not an array; clearing corrupted data")
		if delErr := a.kv.Delete(ctx, LegacyTasksKey); delErr != nil {
			return nil, fmt.Errorf("store.Adapter.Load: clear corrupted legacy: %w", delErr)
		}
		return []domain.Task{}, nil
	}

	tasks := coerceTasks(items)
	if err := a.write(ctx, key, tasks); err != nil {
		return nil, fmt.Errorf("store.Adapter.Load: migrate: %w", err)
	}
	if err := a.kv.Delete(ctx, LegacyTasksKey); err != nil {
		return nil, fmt.Errorf("store.Adapter.Load: delete legacy key: %w", err)
	}

	return tasks, nil
}

// Save persists the list under the user's namespaced key. Entries failing
// validation are dropped from persistence and logged, never written.
func (a *Adapter) Save(ctx context.Context, uid string, tasks []domain.Task) error {
	valid := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].Valid() {
			valid = append(valid, tasks[i])
		}
	}
	if dropped := len(tasks) - len(valid); dropped > 0 {
		log.Warn().Int("dropped", dropped).Str("user_id", uid).Msg("invalid tasks were not persisted")
	}

	if err := a.write(ctx, TasksKey(uid), valid); err != nil {
		return fmt.Errorf("store.Adapter.Save: %w", err)
	}
	return nil
}

// Clear removes the user's namespaced key entirely.
func (a *Adapter) Clear(ctx context.Context, uid string) error {
	if err := a.kv.Delete(ctx, TasksKey(uid)); err != nil {
		return fmt.Errorf("store.Adapter.Clear: %w", err)
	}
	return nil
}

func (a *Adapter) write(ctx context.Context, key string, tasks []domain.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return a.kv.Set(ctx, key, string(data))
}

// decodeArray unmarshals a stored payload as a JSON array of raw entries.
// The second return is false for any non-array payload.
func decodeArray(raw string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	return items, true
}
