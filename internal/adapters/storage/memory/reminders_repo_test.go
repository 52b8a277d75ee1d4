package memory

import (
	"context"
	"testing"
	"time"

	"prescription-reminder/internal/adapters/storage/storagetest"
	"prescription-reminder/internal/domain/reminders"
)

func TestReminderRepo_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) reminders.Repository {
		return NewReminderRepo()
	})
}

func TestReminderRepo_DoesNotShareNotes(t *testing.T) {
	repo := NewReminderRepo()
	notes := "with food"
	if err := repo.Create(context.Background(), reminders.Reminder{ID: "r", Notes: &notes, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	notes = "changed"

	got, err := repo.GetByID(context.Background(), "r")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Notes == nil || *got.Notes != "with food" {
		t.Fatalf("notes leaked: %v", got.Notes)
	}
}
