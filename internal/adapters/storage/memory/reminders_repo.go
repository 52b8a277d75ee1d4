package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"prescription-reminder/internal/domain/reminders"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Reminder),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return reminders.ErrAlreadyExists
	}
	r.byID[rem.ID] = rem.Clone()
	return nil
}

func (r *reminderRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rem.ID]; !exists {
		return reminders.ErrNotFound
	}
	r.byID[rem.ID] = rem.Clone()
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem.Clone(), nil
}

func (r *reminderRepo) List(ctx context.Context) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0, len(r.byID))
	for _, rem := range r.byID {
		out = append(out, rem.Clone())
	}

	// orden de inserción aproximado, el service reordena por nextDue
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return reminders.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *reminderRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]reminders.Reminder)
	return nil
}
