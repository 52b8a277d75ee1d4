package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"prescription-reminder/internal/domain/reminders"
)

// Las fechas se guardan como texto UTC de ancho fijo para que ORDER BY compare bien.
// Al leer se acepta cualquier RFC3339.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

const selectColumns = `id, medicine_name, dosage, frequency, next_due, duration, notes, created_at`

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, medicine_name, dosage, frequency,
			next_due, duration, notes, created_at
		) VALUES (?,?,?,?,?,?,?,?)
	`,
		rem.ID,
		rem.MedicineName,
		rem.Dosage,
		rem.Frequency,
		formatTime(rem.NextDue),
		rem.Duration,
		toNullString(rem.Notes),
		formatTime(rem.CreatedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return reminders.ErrAlreadyExists
	}
	return err
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET
			medicine_name = ?,
			dosage = ?,
			frequency = ?,
			next_due = ?,
			duration = ?,
			notes = ?
		WHERE id = ?
	`,
		rem.MedicineName,
		rem.Dosage,
		rem.Frequency,
		formatTime(rem.NextDue),
		rem.Duration,
		toNullString(rem.Notes),
		rem.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM reminders WHERE id = ?`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, err
}

func (r *RemindersRepo) List(ctx context.Context) ([]reminders.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM reminders ORDER BY next_due ASC, created_at ASC`)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *RemindersRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(s rowScanner) (reminders.Reminder, error) {
	var (
		rem                reminders.Reminder
		nextDue, createdAt string
		notes              sql.NullString
	)
	if err := s.Scan(
		&rem.ID,
		&rem.MedicineName,
		&rem.Dosage,
		&rem.Frequency,
		&nextDue,
		&rem.Duration,
		&notes,
		&createdAt,
	); err != nil {
		return reminders.Reminder{}, err
	}

	var err error
	if rem.NextDue, err = time.Parse(time.RFC3339Nano, nextDue); err != nil {
		return reminders.Reminder{}, fmt.Errorf("reminder %s next_due: %w", rem.ID, err)
	}
	if rem.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return reminders.Reminder{}, fmt.Errorf("reminder %s created_at: %w", rem.ID, err)
	}
	if notes.Valid {
		v := notes.String
		rem.Notes = &v
	}
	return rem, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
