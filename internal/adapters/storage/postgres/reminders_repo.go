package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"prescription-reminder/internal/domain/reminders"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	// id que no es un UUID válido
	invalidTextRepresentation = "22P02"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, medicine_name, dosage, frequency,
			next_due, duration, notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rem.ID,
		rem.MedicineName,
		rem.Dosage,
		rem.Frequency,
		timestamp(rem.NextDue),
		rem.Duration,
		toNullString(rem.Notes),
		timestamp(rem.CreatedAt),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return reminders.ErrAlreadyExists
	}
	return err
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET
			medicine_name = $2,
			dosage = $3,
			frequency = $4,
			next_due = $5,
			duration = $6,
			notes = $7
		WHERE id = $1
	`,
		rem.ID,
		rem.MedicineName,
		rem.Dosage,
		rem.Frequency,
		timestamp(rem.NextDue),
		rem.Duration,
		toNullString(rem.Notes),
	)
	if isInvalidID(err) {
		return reminders.ErrNotFound
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, reminders.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, medicine_name, dosage, frequency,
			next_due, duration, notes, created_at
		FROM reminders
		WHERE id = $1
	`, id)

	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return reminders.Reminder{}, reminders.ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return rem, nil
}

func (r *RemindersRepo) List(ctx context.Context) ([]reminders.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, medicine_name, dosage, frequency,
			next_due, duration, notes, created_at
		FROM reminders
		ORDER BY next_due ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if isInvalidID(err) {
		return reminders.ErrNotFound
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders`)
	return err
}

// timestamp: TIMESTAMPTZ guarda microsegundos.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(s rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var notes sql.NullString
	if err := s.Scan(
		&rem.ID,
		&rem.MedicineName,
		&rem.Dosage,
		&rem.Frequency,
		&rem.NextDue,
		&rem.Duration,
		&notes,
		&rem.CreatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}
	if notes.Valid {
		v := notes.String
		rem.Notes = &v
	}
	return rem, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
