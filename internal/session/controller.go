package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/store"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// snapshot is the single-slot persistence mailbox entry: the latest
// {userID, tasks} pair queued for durable write.
type snapshot struct {
	userID string
	tasks  []domain.Task
}

// Controller is the authoritative in-memory view of one user's tasks.
// Mutations apply synchronously under the lock; every change records the
// latest snapshot and pokes a persistence worker that runs at most once
// concurrently and always writes the most recent state. A burst of rapid
// mutations collapses to a single durable write once the store catches up.
type Controller struct {
	store *store.Adapter

	mu       sync.Mutex
	cond     *sync.Cond
	hydrated bool
	userID   string
	tasks    []domain.Task

	// gen is bumped on every SetUser; a hydration result whose generation no
	// longer matches is stale and discarded.
	gen     int
	readyCh chan struct{}

	pending     snapshot
	saveQueued  bool
	saveRunning bool

	// onSaved, when set, runs after each successful durable write with the
	// snapshot that was persisted.
	onSaved func(userID string, tasks []domain.Task)
}

func New(adapter *store.Adapter) *Controller {
	c := &Controller{store: adapter}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// SetOnSaved registers a hook invoked after every successful persist.
// Must be called before the first mutation.
func (c *Controller) SetOnSaved(fn func(userID string, tasks []domain.Task)) {
	c.mu.Lock()
	c.onSaved = fn
	c.mu.Unlock()
}

// SetUser resets the session for a new active identity and, when uid is
// non-empty, starts asynchronous hydration. An in-flight hydration for a
// previous user becomes stale and its result is discarded.
func (c *Controller) SetUser(ctx context.Context, uid string) {
	c.mu.Lock()
	c.hydrated = false
	c.userID = uid
	c.tasks = nil
	c.gen++
	gen := c.gen
	if uid == "" {
		c.readyCh = nil
		c.mu.Unlock()
		return
	}
	ready := make(chan struct{})
	c.readyCh = ready
	c.mu.Unlock()

	go func() {
		tasks, err := c.store.Load(ctx, uid)
		if err != nil {
			// Hydration is fail-safe: the session starts empty rather than
			// refusing to load.
			log.Warn().Err(err).Str("user_id", uid).Msg("task hydration failed")
			tasks = []domain.Task{}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return // user switched while loading
		}
		c.hydrated = true
		c.tasks = tasks
		close(ready)
		c.cond.Broadcast()
	}()
}

// Ready reports whether the current user's tasks are hydrated.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrated
}

// WaitReady blocks until hydration for the current user completes.
func (c *Controller) WaitReady(ctx context.Context) error {
	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return domain.ErrNotSignedIn
	}
	if c.hydrated {
		c.mu.Unlock()
		return nil
	}
	ready := c.readyCh
	c.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tasks returns a deep copy of the current list.
func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneTasks(c.tasks)
}

// requireReady enforces the mutation preconditions. Callers hold c.mu.
func (c *Controller) requireReady() error {
	if c.userID == "" {
		return domain.ErrNotSignedIn
	}
	if !c.hydrated {
		return domain.ErrLoading
	}
	return nil
}

// AddTask appends a new active task with an all-false matrix.
func (c *Controller) AddTask(title string, period domain.TimePeriod) (domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return domain.Task{}, err
	}

	clean := strings.TrimSpace(title)
	if clean == "" {
		return domain.Task{}, domain.ErrTitleRequired
	}
	if !period.Valid() {
		period = domain.PeriodWeekly
	}

	t := domain.Task{
		ID:         "task_" + uuid.NewString(),
		Title:      clean,
		State:      domain.TaskStateActive,
		TimePeriod: period,
		Matrix:     domain.DefaultMatrix(),
		CreatedAt:  time.Now().UTC().Format(isoMillis),
	}

	c.tasks = append(domain.CloneTasks(c.tasks), t)
	c.requestSave()
	return t.Clone(), nil
}

// TaskUpdate carries the optional fields UpdateTask may change.
type TaskUpdate struct {
	Title      *string
	TimePeriod *domain.TimePeriod
}

// UpdateTask merges only the provided fields into the matching task.
// Unknown ids are a silent no-op.
func (c *Controller) UpdateTask(id string, upd TaskUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}

	var title string
	if upd.Title != nil {
		title = strings.TrimSpace(*upd.Title)
		if title == "" {
			return domain.ErrTitleRequired
		}
	}

	changed := false
	next := domain.CloneTasks(c.tasks)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if upd.Title != nil {
			next[i].Title = title
		}
		if upd.TimePeriod != nil && upd.TimePeriod.Valid() {
			next[i].TimePeriod = *upd.TimePeriod
		}
		changed = true
		break
	}
	if !changed {
		return nil
	}

	c.tasks = next
	c.requestSave()
	return nil
}

// DeleteTask removes the matching task. Unknown ids are a silent no-op.
func (c *Controller) DeleteTask(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}

	next := make([]domain.Task, 0, len(c.tasks))
	for i := range c.tasks {
		if c.tasks[i].ID != id {
			next = append(next, c.tasks[i].Clone())
		}
	}
	if len(next) == len(c.tasks) {
		return nil
	}

	c.tasks = next
	c.requestSave()
	return nil
}

// SetTaskState sets the active/completed state of the matching task.
func (c *Controller) SetTaskState(id string, state domain.TaskState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}
	if !state.Valid() {
		state = domain.TaskStateActive
	}

	changed := false
	next := domain.CloneTasks(c.tasks)
	for i := range next {
		if next[i].ID == id {
			next[i].State = state
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	c.tasks = next
	c.requestSave()
	return nil
}

// ToggleDay flips one weekday flag, leaving the other six untouched.
func (c *Controller) ToggleDay(id string, day domain.Weekday) error {
	return c.setDay(id, day, nil)
}

// SetDay sets one weekday flag explicitly.
func (c *Controller) SetDay(id string, day domain.Weekday, value bool) error {
	return c.setDay(id, day, &value)
}

func (c *Controller) setDay(id string, day domain.Weekday, explicit *bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}
	if !day.Valid() {
		return domain.ErrInvalidDay
	}

	changed := false
	next := domain.CloneTasks(c.tasks)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if explicit != nil {
			next[i].Matrix[day] = *explicit
		} else {
			next[i].Matrix[day] = !next[i].Matrix[day]
		}
		changed = true
		break
	}
	if !changed {
		return nil
	}

	c.tasks = next
	c.requestSave()
	return nil
}

// ImportTasks appends a validated batch in one transition, so the whole
// import persists as a single snapshot.
func (c *Controller) ImportTasks(tasks []domain.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	c.tasks = append(domain.CloneTasks(c.tasks), domain.CloneTasks(tasks)...)
	c.requestSave()
	return nil
}

// LoadDemoData replaces an empty list with the demo fixture. Calling it with
// a non-empty list is a no-op.
func (c *Controller) LoadDemoData() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireReady(); err != nil {
		return err
	}
	if len(c.tasks) > 0 {
		return nil
	}

	c.tasks = store.DemoTasks()
	c.requestSave()
	return nil
}

// ResetAll empties the in-memory list and durably clears the user's key.
// Unlike every other mutation this awaits the durable delete directly: the
// pending save snapshot is discarded and the worker drained first, so no
// queued write can resurrect the key afterwards.
func (c *Controller) ResetAll(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireReady(); err != nil {
		c.mu.Unlock()
		return err
	}
	uid := c.userID
	c.tasks = nil
	c.saveQueued = false
	c.pending = snapshot{}
	for c.saveRunning {
		c.cond.Wait()
	}
	c.mu.Unlock()

	return c.store.Clear(ctx, uid)
}

// requestSave records the latest snapshot, marks a save requested, and starts
// the worker if idle. Callers hold c.mu.
func (c *Controller) requestSave() {
	c.pending = snapshot{userID: c.userID, tasks: domain.CloneTasks(c.tasks)}
	c.saveQueued = true
	if c.saveRunning {
		return
	}
	c.saveRunning = true
	go c.saveLoop()
}

// saveLoop drains the mailbox: as long as a save is requested it clears the
// flag, takes the latest snapshot, and persists it. Intermediate states that
// were superseded while a write was in flight are never individually
// persisted. The loop terminates when nothing is pending and restarts lazily
// on the next mutation.
func (c *Controller) saveLoop() {
	for {
		c.mu.Lock()
		if !c.saveQueued {
			c.saveRunning = false
			c.cond.Broadcast()
			c.mu.Unlock()
			return
		}
		c.saveQueued = false
		snap := c.pending
		onSaved := c.onSaved
		c.mu.Unlock()

		err := c.store.Save(context.Background(), snap.userID, snap.tasks)
		if err != nil {
			// No retry here: in-memory state stays authoritative and the next
			// mutation's save carries the then-current snapshot.
			log.Warn().Err(err).Str("user_id", snap.userID).Msg("task save failed")
			continue
		}
		if onSaved != nil {
			onSaved(snap.userID, domain.CloneTasks(snap.tasks))
		}
	}
}

// Flush blocks until the persistence worker has drained all pending saves.
func (c *Controller) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.mu.Lock()
		for c.saveQueued || c.saveRunning {
			c.cond.Wait()
		}
		c.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
