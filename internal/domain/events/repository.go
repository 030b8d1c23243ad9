package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("event not found")
	ErrHasRegistrations = errors.New("event has associated registrations")
	ErrCapacityTooSmall = errors.New("capacity below current registrations")
)

// DefaultCapacity applies when an event is created without one.
const DefaultCapacity = 100

type Event struct {
	ID            string
	Name          string
	Date          time.Time
	Venue         string
	Description   string
	LogoURL       string
	Capacity      int
	Registrations int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateParams describes a new event. A nil Capacity means the client
// did not supply one; the service resolves it to DefaultCapacity. An
// explicit zero is a validation error, not a request for the default.
type CreateParams struct {
	ID          string
	Name        string
	Date        time.Time
	Venue       string
	Description string
	LogoURL     string
	Capacity    *int
}

// UpdateParams carries partial updates; nil fields are left unchanged.
// An omitted LogoURL preserves the stored logo reference.
type UpdateParams struct {
	Name        *string
	Date        *time.Time
	Venue       *string
	Description *string
	LogoURL     *string
	Capacity    *int
}

type Repository interface {
	// Create inserts the event and appends it to the owner's event
	// list in the same transaction.
	Create(ctx context.Context, ownerID string, params CreateParams) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	// Update fails with ErrCapacityTooSmall when a capacity reduction
	// would drop below the live registration count.
	Update(ctx context.Context, id string, params UpdateParams) (*Event, error)
	// Delete fails with ErrHasRegistrations while registrations
	// reference the event; it removes the owner-list entry too.
	Delete(ctx context.Context, id string) error
	ListForAdmin(ctx context.Context, adminID string) ([]Event, error)
	CountForAdmin(ctx context.Context, adminID string) (int, error)
	// OwnedBy reports whether the event appears in the admin's list.
	OwnedBy(ctx context.Context, adminID, eventID string) (bool, error)
}
