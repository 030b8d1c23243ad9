package registrations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("registration not found")
	ErrDuplicate    = errors.New("already registered for this event")
	ErrCapacityFull = errors.New("event is at capacity")
)

type Registration struct {
	ID        string
	EventID   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Company   string
	CreatedAt time.Time
}

type AdmitParams struct {
	ID        string
	EventID   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Company   string
}

// UpdateParams carries partial updates; nil fields are left unchanged.
type UpdateParams struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Company   *string
}

type Repository interface {
	// Admit performs the duplicate check, the registration insert, and
	// the event counter increment as one atomic storage operation. The
	// increment is conditional on registrations < capacity: when the
	// condition fails nothing is written and ErrCapacityFull is
	// returned, so no two concurrent admissions can push the counter
	// over capacity. A same-email or same-phone row for the event
	// yields ErrDuplicate.
	Admit(ctx context.Context, params AdmitParams) (*Registration, error)
	// Withdraw deletes the registration and decrements the parent
	// event's counter in the same transaction.
	Withdraw(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Registration, error)
	// Update fails with ErrDuplicate when a changed email or phone
	// collides with another registration for the same event.
	Update(ctx context.Context, id string, params UpdateParams) (*Registration, error)
	ListForEvent(ctx context.Context, eventID string) ([]Registration, error)
	// ListForAdmin returns registrations across every event the admin owns.
	ListForAdmin(ctx context.Context, adminID string) ([]Registration, error)
}
