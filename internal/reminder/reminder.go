// Package reminder turns due task reminders into notifications on a fixed
// schedule.
package reminder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mavecode/portfolio/internal/storage"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Scheduler scans open tasks once a minute and creates one reminder
// notification per task whose reminder time has passed.
type Scheduler struct {
	store storage.Store
	clock Clock
	cron  *cron.Cron
}

// New creates a Scheduler over store.
func New(store storage.Store) *Scheduler {
	return &Scheduler{store: store, clock: realClock{}, cron: cron.New()}
}

// NewWithClock creates a Scheduler with a custom clock (for testing Sweep).
func NewWithClock(store storage.Store, clock Clock) *Scheduler {
	return &Scheduler{store: store, clock: clock, cron: cron.New()}
}

// Start begins the minute-interval sweep in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.Sweep(); err != nil {
			slog.Error("reminder sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling reminder sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass: every incomplete task with a parseable, past
// reminder time that has not been notified yet produces a notification and
// is marked sent. Individual task failures are logged and skipped.
func (s *Scheduler) Sweep() error {
	tasks, err := s.store.ListTasks(storage.TaskFilter{OnlyIncomplete: true})
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}

	now := s.clock.Now().UTC()
	for _, t := range tasks {
		if t.ReminderSent || t.ReminderTime == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, t.ReminderTime)
		if err != nil {
			continue
		}
		if at.After(now) {
			continue
		}

		n := storage.Notification{
			ID:        uuid.New().String(),
			Title:     "Task Reminder",
			Message:   fmt.Sprintf("Reminder: '%s' needs your attention.", t.Title),
			Type:      "reminder",
			CreatedAt: storage.Timestamp(now),
		}
		if err := s.store.SaveNotification(n); err != nil {
			slog.Error("failed to save reminder notification", "task", t.ID, "error", err)
			continue
		}

		t.ReminderSent = true
		t.UpdatedAt = storage.Timestamp(now)
		if err := s.store.UpdateTask(t); err != nil {
			slog.Error("failed to mark reminder sent", "task", t.ID, "error", err)
		}
	}
	return nil
}
