// Package storagetest tiene la batería común que corre cada adapter de reminders.Repository.
package storagetest

import (
	"context"
	"testing"
	"time"

	"prescription-reminder/internal/domain/reminders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id string, createdAt time.Time) reminders.Reminder {
	notes := "after food"
	return reminders.Reminder{
		ID:           id,
		MedicineName: "Paracetamol (500mg)",
		Dosage:       "1-0-1 tablet",
		Frequency:    12,
		NextDue:      createdAt.Add(12 * time.Hour),
		Duration:     5,
		Notes:        &notes,
		CreatedAt:    createdAt,
	}
}

// Run corre la batería; newRepo debe devolver un repositorio vacío en cada llamada.
func Run(t *testing.T, newRepo func(t *testing.T) reminders.Repository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 30, 15, 123_456_000, time.UTC)

	t.Run("create then get round trip", func(t *testing.T) {
		repo := newRepo(t)
		want := sample("r-1", base)
		require.NoError(t, repo.Create(ctx, want))

		got, err := repo.GetByID(ctx, "r-1")
		require.NoError(t, err)
		assertSame(t, want, got)
	})

	t.Run("nil notes survive", func(t *testing.T) {
		repo := newRepo(t)
		want := sample("r-1", base)
		want.Notes = nil
		require.NoError(t, repo.Create(ctx, want))

		got, err := repo.GetByID(ctx, "r-1")
		require.NoError(t, err)
		assert.Nil(t, got.Notes)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sample("r-1", base)))
		assert.Error(t, repo.Create(ctx, sample("r-1", base)))
	})

	t.Run("missing ids report not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, reminders.ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, sample("nope", base)), reminders.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "nope"), reminders.ErrNotFound)
	})

	t.Run("update replaces the record", func(t *testing.T) {
		repo := newRepo(t)
		rem := sample("r-1", base)
		require.NoError(t, repo.Create(ctx, rem))

		rem.Dosage = "1-1-1"
		rem.Frequency = 8
		rem.NextDue = base.Add(8 * time.Hour)
		rem.Notes = nil
		require.NoError(t, repo.Update(ctx, rem))

		got, err := repo.GetByID(ctx, "r-1")
		require.NoError(t, err)
		assertSame(t, rem, got)
	})

	t.Run("list delete and clear", func(t *testing.T) {
		repo := newRepo(t)
		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, repo.Create(ctx, sample(id, base.Add(time.Duration(i)*time.Minute))))
		}

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 3)

		require.NoError(t, repo.Delete(ctx, "b"))
		items, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		require.NoError(t, repo.Clear(ctx))
		items, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func assertSame(t *testing.T, want, got reminders.Reminder) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.MedicineName, got.MedicineName)
	assert.Equal(t, want.Dosage, got.Dosage)
	assert.Equal(t, want.Frequency, got.Frequency)
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, want.Notes, got.Notes)
	// por valor, no por identidad
	assert.True(t, want.NextDue.Equal(got.NextDue), "nextDue %s != %s", want.NextDue, got.NextDue)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
}
