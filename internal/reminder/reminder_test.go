package reminder

import (
	"testing"
	"time"

	"github.com/mavecode/portfolio/internal/storage"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func saveTask(t *testing.T, store storage.Store, task storage.Task) {
	t.Helper()
	if task.CreatedAt == "" {
		task.CreatedAt = storage.Timestamp(testNow.Add(-time.Hour))
	}
	if err := store.SaveTask(task); err != nil {
		t.Fatal(err)
	}
}

func TestSweepNotifiesDueReminders(t *testing.T) {
	store := storage.NewMemoryStore()
	s := NewWithClock(store, fixedClock{testNow})

	saveTask(t, store, storage.Task{
		ID:           "due",
		Title:        "Water the plants",
		ReminderTime: storage.Timestamp(testNow.Add(-5 * time.Minute)),
	})
	saveTask(t, store, storage.Task{
		ID:           "future",
		Title:        "Not yet",
		ReminderTime: storage.Timestamp(testNow.Add(time.Hour)),
	})
	saveTask(t, store, storage.Task{ID: "none", Title: "No reminder"})

	if err := s.Sweep(); err != nil {
		t.Fatal(err)
	}

	notifications, err := store.ListNotifications(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Type != "reminder" {
		t.Errorf("type = %q", n.Type)
	}
	if n.Message != "Reminder: 'Water the plants' needs your attention." {
		t.Errorf("message = %q", n.Message)
	}

	task, _ := store.GetTask("due")
	if !task.ReminderSent {
		t.Error("due task should be marked sent")
	}
	task, _ = store.GetTask("future")
	if task.ReminderSent {
		t.Error("future task must not be marked sent")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	s := NewWithClock(store, fixedClock{testNow})

	saveTask(t, store, storage.Task{
		ID:           "due",
		Title:        "Once only",
		ReminderTime: storage.Timestamp(testNow.Add(-time.Minute)),
	})

	if err := s.Sweep(); err != nil {
		t.Fatal(err)
	}
	if err := s.Sweep(); err != nil {
		t.Fatal(err)
	}

	notifications, _ := store.ListNotifications(10)
	if len(notifications) != 1 {
		t.Errorf("got %d notifications after two sweeps, want 1", len(notifications))
	}
}

func TestSweepSkipsCompletedAndUnparseable(t *testing.T) {
	store := storage.NewMemoryStore()
	s := NewWithClock(store, fixedClock{testNow})

	saveTask(t, store, storage.Task{
		ID:           "done",
		Title:        "Finished",
		Completed:    true,
		ReminderTime: storage.Timestamp(testNow.Add(-time.Minute)),
	})
	saveTask(t, store, storage.Task{
		ID:           "garbled",
		Title:        "Bad time",
		ReminderTime: "sometime soon",
	})

	if err := s.Sweep(); err != nil {
		t.Fatal(err)
	}
	notifications, _ := store.ListNotifications(10)
	if len(notifications) != 0 {
		t.Errorf("got %d notifications, want 0", len(notifications))
	}
}
