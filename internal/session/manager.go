package session

import (
	"context"
	"sync"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/store"
)

// Events receives a notification after a user's tasks are durably saved.
// The redis pub/sub bridge implements this to fan changes out to live
// WebSocket clients.
type Events interface {
	TasksChanged(ctx context.Context, userID string)
}

// Reminders receives every persisted snapshot so reminder timers can track
// the durable list. The notify scheduler implements this.
type Reminders interface {
	TasksSaved(userID string, tasks []domain.Task)
}

// Manager owns one hydrated Controller per authenticated user for the HTTP
// layer. Controllers hydrate lazily on first access.
type Manager struct {
	adapter   *store.Adapter
	events    Events    // may be nil
	reminders Reminders // may be nil

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(adapter *store.Adapter, events Events, reminders Reminders) *Manager {
	return &Manager{
		adapter:     adapter,
		events:      events,
		reminders:   reminders,
		controllers: make(map[string]*Controller),
	}
}

// Controller returns the hydrated controller for uid, creating and hydrating
// it on first use. Blocks until hydration completes or ctx expires.
func (m *Manager) Controller(ctx context.Context, uid string) (*Controller, error) {
	m.mu.Lock()
	c, ok := m.controllers[uid]
	if !ok {
		c = New(m.adapter)
		events, reminders := m.events, m.reminders
		if events != nil || reminders != nil {
			c.SetOnSaved(func(userID string, tasks []domain.Task) {
				if events != nil {
					events.TasksChanged(context.Background(), userID)
				}
				if reminders != nil {
					reminders.TasksSaved(userID, tasks)
				}
			})
		}
		c.SetUser(context.Background(), uid)
		m.controllers[uid] = c
	}
	m.mu.Unlock()

	if err := c.WaitReady(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Close drains every controller's pending saves. Used during shutdown.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.mu.Unlock()

	for _, c := range controllers {
		if err := c.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
