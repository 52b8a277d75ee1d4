package reminders

import (
	"context"
	"errors"
)

var (
	// ErrNotFound lo devuelven los adapters cuando el id no existe.
	ErrNotFound      = errors.New("reminder not found")
	ErrAlreadyExists = errors.New("reminder already exists")
)

type Repository interface {
	List(ctx context.Context) ([]Reminder, error)
	GetByID(ctx context.Context, id string) (Reminder, error)
	Create(ctx context.Context, r Reminder) error
	Update(ctx context.Context, r Reminder) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
