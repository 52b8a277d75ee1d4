package file

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"prescription-reminder/internal/domain/reminders"
)

// RemindersKey es la única entrada donde vive la colección.
const RemindersKey = "reminders"

// record es la forma persistida: fechas como strings ISO-8601, parseadas en cada lectura.
type record struct {
	ID           string  `json:"id"`
	MedicineName string  `json:"medicineName"`
	Dosage       string  `json:"dosage"`
	Frequency    int     `json:"frequency"`
	NextDue      string  `json:"nextDue"`
	Duration     int     `json:"duration"`
	Notes        *string `json:"notes"`
	CreatedAt    string  `json:"createdAt"`
}

type reminderRepo struct {
	store *Store

	// serializa leer-modificar-escribir del array completo
	mu sync.Mutex
}

func NewReminderRepo(store *Store) reminders.Repository {
	return &reminderRepo{store: store}
}

func (r *reminderRepo) load() ([]reminders.Reminder, error) {
	data, ok, err := r.store.Get(RemindersKey)
	if err != nil || !ok {
		return nil, err
	}

	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	out := make([]reminders.Reminder, 0, len(recs))
	for _, rec := range recs {
		rem, err := rec.toReminder()
		if err != nil {
			return nil, fmt.Errorf("%w: reminder %s: %v", ErrCorrupt, rec.ID, err)
		}
		out = append(out, rem)
	}
	return out, nil
}

func (r *reminderRepo) save(items []reminders.Reminder) error {
	recs := make([]record, 0, len(items))
	for _, rem := range items {
		recs = append(recs, fromReminder(rem))
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return r.store.Put(RemindersKey, data)
}

func (r *reminderRepo) List(ctx context.Context) ([]reminders.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []reminders.Reminder{}
	}
	return items, nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return reminders.Reminder{}, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return reminders.Reminder{}, reminders.ErrNotFound
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	if indexOf(items, rem.ID) >= 0 {
		return reminders.ErrAlreadyExists
	}
	return r.save(append(items, rem))
}

func (r *reminderRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(items, rem.ID)
	if i < 0 {
		return reminders.ErrNotFound
	}
	items[i] = rem
	return r.save(items)
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return reminders.ErrNotFound
	}
	return r.save(append(items[:i], items[i+1:]...))
}

// Clear deja el array vacío (no borra la key).
func (r *reminderRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(nil)
}

func indexOf(items []reminders.Reminder, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func fromReminder(r reminders.Reminder) record {
	return record{
		ID:           r.ID,
		MedicineName: r.MedicineName,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		NextDue:      r.NextDue.UTC().Format(time.RFC3339Nano),
		Duration:     r.Duration,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (rec record) toReminder() (reminders.Reminder, error) {
	nextDue, err := time.Parse(time.RFC3339Nano, rec.NextDue)
	if err != nil {
		return reminders.Reminder{}, fmt.Errorf("nextDue: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return reminders.Reminder{}, fmt.Errorf("createdAt: %w", err)
	}
	return reminders.Reminder{
		ID:           rec.ID,
		MedicineName: rec.MedicineName,
		Dosage:       rec.Dosage,
		Frequency:    rec.Frequency,
		NextDue:      nextDue,
		Duration:     rec.Duration,
		Notes:        rec.Notes,
		CreatedAt:    createdAt,
	}, nil
}
