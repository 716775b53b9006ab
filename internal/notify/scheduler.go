// Package notify schedules end-of-window task reminders. The scheduler is an
// explicitly constructed object owned by its caller, holding one cancellable
// timer per task id.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// Scheduler fires a reminder when a task's time window ends. Only tasks with
// reminders enabled and an end time are scheduled.
type Scheduler struct {
	messenger Messenger
	now       func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	byUser map[string][]string
}

func NewScheduler(messenger Messenger) *Scheduler {
	return &Scheduler{
		messenger: messenger,
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
		byUser:    make(map[string][]string),
	}
}

// Schedule arms (or re-arms) the reminder timer for one task. A previously
// scheduled timer for the same task id is cancelled first.
func (s *Scheduler) Schedule(task domain.Task, recipient string) {
	if !task.ReminderEnabled || task.EndTime == "" {
		return
	}

	d, err := untilEnd(task.EndTime, s.now())
	if err != nil {
		log.Warn().Err(err).Str("task_id", task.ID).Msg("unschedulable reminder")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[task.ID]; ok {
		prev.Stop()
	}

	id, title := task.ID, task.Title
	s.timers[task.ID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		message := fmt.Sprintf("Time's up: %s. Did you complete this task?", title)
		if sendErr := s.messenger.SendReminder(context.Background(), recipient, message); sendErr != nil {
			log.Warn().Err(sendErr).Str("task_id", id).Msg("reminder delivery failed")
		}
	})
}

// Cancel stops and removes the timer for one task id, if any.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[taskID]; ok {
		t.Stop()
		delete(s.timers, taskID)
	}
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	clear(s.byUser)
}

// ScheduleAll rebuilds the timer set from a task list.
func (s *Scheduler) ScheduleAll(tasks []domain.Task, recipient string) {
	s.CancelAll()
	for i := range tasks {
		s.Schedule(tasks[i], recipient)
	}
}

// TasksSaved re-arms the reminder timers for one user's saved list, leaving
// other users' timers alone. Implements session.Reminders; the user id doubles
// as the reminder recipient.
func (s *Scheduler) TasksSaved(userID string, tasks []domain.Task) {
	s.mu.Lock()
	for _, id := range s.byUser[userID] {
		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
	ids := make([]string, 0, len(tasks))
	for i := range tasks {
		ids = append(ids, tasks[i].ID)
	}
	s.byUser[userID] = ids
	s.mu.Unlock()

	for i := range tasks {
		s.Schedule(tasks[i], userID)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// untilEnd returns the duration until HH:MM today, rolling to tomorrow when
// that time has already passed.
func untilEnd(endTime string, now time.Time) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(endTime, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse end time %q: %w", endTime, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("end time %q out of range", endTime)
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if end.Before(now) {
		end = end.AddDate(0, 0, 1)
	}
	return end.Sub(now), nil
}
