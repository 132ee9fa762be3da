package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/daybook/internal/model"
)

func TestDueReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	reminders := []model.Reminder{
		{ID: "past", ReminderPayload: model.ReminderPayload{TodoID: "t1", Title: "one"}, FireAt: now.Add(-time.Minute)},
		{ID: "now", ReminderPayload: model.ReminderPayload{TodoID: "t2", Title: "two"}, FireAt: now},
		{ID: "later", ReminderPayload: model.ReminderPayload{TodoID: "t3", Title: "three"}, FireAt: now.Add(time.Hour)},
	}
	for _, r := range reminders {
		if err := s.CreateReminder(ctx, r); err != nil {
			t.Fatalf("CreateReminder(%s): %v", r.ID, err)
		}
	}

	due, err := s.GetDueReminders(ctx, now)
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 2 || due[0].ID != "past" || due[1].ID != "now" {
		t.Fatalf("due=%+v, want past, now", due)
	}
	if due[0].TodoID != "t1" || due[0].Title != "one" {
		t.Fatalf("payload lost: %+v", due[0])
	}

	if err := s.MarkReminderDelivered(ctx, "past"); err != nil {
		t.Fatalf("MarkReminderDelivered: %v", err)
	}
	due, _ = s.GetDueReminders(ctx, now)
	if len(due) != 1 || due[0].ID != "now" {
		t.Fatalf("due after delivery=%+v, want now", due)
	}

	pending, err := s.GetPendingReminders(ctx)
	if err != nil {
		t.Fatalf("GetPendingReminders: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending=%d, want 2", len(pending))
	}
}

func TestDeleteReminder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	r := model.Reminder{ID: "r1", FireAt: time.Now()}
	if err := s.CreateReminder(ctx, r); err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if err := s.DeleteReminder(ctx, "r1"); err != nil {
		t.Fatalf("DeleteReminder: %v", err)
	}
	if err := s.DeleteReminder(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestEnsureReminderInsertsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	fireAt := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	r := model.Reminder{ID: "daily-2025-01-01", ReminderPayload: model.ReminderPayload{Title: "daily"}, FireAt: fireAt}

	inserted, err := s.EnsureReminder(ctx, r)
	if err != nil || !inserted {
		t.Fatalf("EnsureReminder=%v, %v, want inserted", inserted, err)
	}
	if err := s.MarkReminderDelivered(ctx, r.ID); err != nil {
		t.Fatalf("MarkReminderDelivered: %v", err)
	}

	inserted, err = s.EnsureReminder(ctx, r)
	if err != nil || inserted {
		t.Fatalf("second EnsureReminder=%v, %v, want existing row kept", inserted, err)
	}
	due, err := s.GetDueReminders(ctx, fireAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due=%+v, want delivered row left alone", due)
	}
}
