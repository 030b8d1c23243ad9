package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/registrations"
	"github.com/jackc/pgx/v5"
)

const registrationColumns = `id, event_id, first_name, last_name, phone, email, company, created_at`

// Admit inserts the registration and bumps the event counter in one
// transaction. The increment only fires while registrations < capacity;
// when it affects no rows the whole transaction rolls back, so the
// counter can never exceed capacity no matter how many admissions race.
// The per-event unique indexes on email and phone decide duplicates for
// concurrent inserts the application-level check cannot see.
func (r *RegistrationRepository) Admit(ctx context.Context, params registrations.AdmitParams) (*registrations.Registration, error) {
	var registration *registrations.Registration
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
INSERT INTO registrations (id, event_id, first_name, last_name, phone, email, company)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+registrationColumns+`
`, params.ID, params.EventID, params.FirstName, params.LastName, params.Phone, params.Email, params.Company)

		inserted, err := scanRegistration(row)
		if err != nil {
			if isUniqueViolation(err) {
				return registrations.ErrDuplicate
			}
			if isForeignKeyViolation(err) {
				return events.ErrNotFound
			}
			return fmt.Errorf("insert registration: %w", err)
		}

		tag, err := tx.Exec(ctx, `
UPDATE events
   SET registrations = registrations + 1
 WHERE id = $1 AND registrations < capacity
`, params.EventID)
		if err != nil {
			return fmt.Errorf("increment counter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return registrations.ErrCapacityFull
		}

		registration = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

// Withdraw removes the registration and frees its slot in the same
// transaction.
func (r *RegistrationRepository) Withdraw(ctx context.Context, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var eventID string
		err := tx.QueryRow(ctx, `
DELETE FROM registrations WHERE id = $1 RETURNING event_id
`, id).Scan(&eventID)
		if errors.Is(err, pgx.ErrNoRows) {
			return registrations.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}

		if _, err := tx.Exec(ctx, `
UPDATE events
   SET registrations = registrations - 1
 WHERE id = $1
`, eventID); err != nil {
			return fmt.Errorf("decrement counter: %w", err)
		}
		return nil
	})
}

func (r *RegistrationRepository) Get(ctx context.Context, id string) (*registrations.Registration, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+registrationColumns+`
  FROM registrations
 WHERE id = $1
`, id)

	registration, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return registration, nil
}

func (r *RegistrationRepository) Update(ctx context.Context, id string, params registrations.UpdateParams) (*registrations.Registration, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE registrations
   SET first_name = COALESCE($2, first_name),
       last_name = COALESCE($3, last_name),
       phone = COALESCE($4, phone),
       email = COALESCE($5, email),
       company = COALESCE($6, company)
 WHERE id = $1
RETURNING `+registrationColumns+`
`, id, params.FirstName, params.LastName, params.Phone, params.Email, params.Company)

	registration, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, registrations.ErrDuplicate
		}
		return nil, fmt.Errorf("update registration: %w", err)
	}
	return registration, nil
}

func (r *RegistrationRepository) ListForEvent(ctx context.Context, eventID string) ([]registrations.Registration, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+registrationColumns+`
  FROM registrations
 WHERE event_id = $1
 ORDER BY created_at
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *RegistrationRepository) ListForAdmin(ctx context.Context, adminID string) ([]registrations.Registration, error) {
	rows, err := r.pool.Query(ctx, `
SELECT r.id, r.event_id, r.first_name, r.last_name, r.phone, r.email, r.company, r.created_at
  FROM registrations r
  JOIN admin_events ae ON ae.event_id = r.event_id
 WHERE ae.admin_id = $1
 ORDER BY ae.position, r.created_at
`, adminID)
	if err != nil {
		return nil, fmt.Errorf("list registrations for admin: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func collectRegistrations(rows pgx.Rows) ([]registrations.Registration, error) {
	var out []registrations.Registration
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, *registration)
	}
	return out, rows.Err()
}

func scanRegistration(row pgx.Row) (*registrations.Registration, error) {
	var registration registrations.Registration
	if err := row.Scan(
		&registration.ID,
		&registration.EventID,
		&registration.FirstName,
		&registration.LastName,
		&registration.Phone,
		&registration.Email,
		&registration.Company,
		&registration.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &registration, nil
}
