package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdesk/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, name, date, venue, description, logo_url, capacity, registrations, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, ownerID string, params events.CreateParams) (*events.Event, error) {
	var event *events.Event
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
INSERT INTO events (id, name, date, venue, description, logo_url, capacity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+eventColumns+`
`, params.ID, params.Name, params.Date, params.Venue, params.Description, params.LogoURL, params.Capacity)

		created, err := scanEvent(row)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO admin_events (admin_id, event_id)
VALUES ($1, $2)
`, ownerID, created.ID); err != nil {
			return fmt.Errorf("append to owner list: %w", err)
		}

		event = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	var event *events.Event
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Capacity reductions race with admissions, so the live counter
		// is read under a row lock.
		if params.Capacity != nil {
			var current int
			err := tx.QueryRow(ctx, `
SELECT registrations FROM events WHERE id = $1 FOR UPDATE
`, id).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return events.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("lock event: %w", err)
			}
			if *params.Capacity < current {
				return events.ErrCapacityTooSmall
			}
		}

		row := tx.QueryRow(ctx, `
UPDATE events
   SET name = COALESCE($2, name),
       date = COALESCE($3, date),
       venue = COALESCE($4, venue),
       description = COALESCE($5, description),
       logo_url = COALESCE($6, logo_url),
       capacity = COALESCE($7, capacity),
       updated_at = now()
 WHERE id = $1
RETURNING `+eventColumns+`
`, id, params.Name, params.Date, params.Venue, params.Description, params.LogoURL, params.Capacity)

		updated, err := scanEvent(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return events.ErrNotFound
			}
			// The registrations <= capacity table check backstops the
			// locked read above.
			if isCheckViolation(err) {
				return events.ErrCapacityTooSmall
			}
			return fmt.Errorf("update event: %w", err)
		}

		event = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var live int
		err := tx.QueryRow(ctx, `
SELECT registrations FROM events WHERE id = $1 FOR UPDATE
`, id).Scan(&live)
		if errors.Is(err, pgx.ErrNoRows) {
			return events.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if live > 0 {
			return events.ErrHasRegistrations
		}

		// admin_events rows cascade with the event.
		if _, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

func (r *EventRepository) ListForAdmin(ctx context.Context, adminID string) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT e.id, e.name, e.date, e.venue, e.description, e.logo_url,
       e.capacity, e.registrations, e.created_at, e.updated_at
  FROM events e
  JOIN admin_events ae ON ae.event_id = e.id
 WHERE ae.admin_id = $1
 ORDER BY ae.position
`, adminID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}

func (r *EventRepository) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT count(*) FROM admin_events WHERE admin_id = $1
`, adminID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) OwnedBy(ctx context.Context, adminID, eventID string) (bool, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM admin_events
     WHERE admin_id = $1 AND event_id = $2
)
`, adminID, eventID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}
	return owned, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Venue,
		&event.Description,
		&event.LogoURL,
		&event.Capacity,
		&event.Registrations,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
