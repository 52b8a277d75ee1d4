package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"prescription-reminder/internal/adapters/storage/storagetest"
	"prescription-reminder/internal/domain/reminders"
)

func TestRemindersRepo_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) reminders.Repository {
		db, err := Open(context.Background(), filepath.Join(t.TempDir(), "reminders.db"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return NewRemindersRepo(db)
	})
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		db, err := Open(ctx, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='reminders'`).Scan(&n); err != nil {
			t.Fatalf("query: %v", err)
		}
		if n != 1 {
			t.Fatalf("reminders table missing")
		}
		_ = db.Close()
	}
}

func TestRemindersRepo_ListOrdersBySubsecondNextDue(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "reminders.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	repo := NewRemindersRepo(db)

	whole := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []reminders.Reminder{
		{ID: "half", MedicineName: "A", Dosage: "1", Frequency: 8, Duration: 1, NextDue: whole.Add(500 * time.Millisecond), CreatedAt: whole},
		{ID: "whole", MedicineName: "B", Dosage: "1", Frequency: 8, Duration: 1, NextDue: whole, CreatedAt: whole},
	} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "whole" || got[1].ID != "half" {
		t.Fatalf("unexpected order: %+v", got)
	}

	var raw string
	if err := db.QueryRow(`SELECT next_due FROM reminders WHERE id = 'whole'`).Scan(&raw); err != nil {
		t.Fatalf("query: %v", err)
	}
	if raw != "2026-05-01T10:00:00.000000000Z" {
		t.Fatalf("unexpected stored format %q", raw)
	}
}
