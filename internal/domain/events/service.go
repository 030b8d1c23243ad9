package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventdesk/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// ErrNotOwner means the authenticated admin's event list does not
// contain the target event. Super-admin paths never raise it because
// they call the *Any variants instead of checking roles inside the
// owner-scoped path.
var ErrNotOwner = errors.New("not authorized for this event")

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*Event, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(params.Name) == "" {
		fields["name"] = "Name is required."
	}
	if params.Date.IsZero() {
		fields["date"] = "Date is required."
	}
	if strings.TrimSpace(params.Venue) == "" {
		fields["venue"] = "Venue is required."
	}
	if params.Capacity != nil && *params.Capacity <= 0 {
		fields["capacity"] = "Capacity must be a positive number."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if params.Capacity == nil {
		capacity := DefaultCapacity
		params.Capacity = &capacity
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event id: %w", err)
	}
	params.ID = id

	event, err := s.repo.Create(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("owner_id", ownerID).Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForAdmin(ctx context.Context, adminID string) ([]Event, error) {
	return s.repo.ListForAdmin(ctx, adminID)
}

func (s *Service) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	return s.repo.CountForAdmin(ctx, adminID)
}

// Update applies a partial update on the owner-scoped path.
func (s *Service) Update(ctx context.Context, ownerID, id string, params UpdateParams) (*Event, error) {
	if err := s.requireOwner(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.UpdateAny(ctx, id, params)
}

// UpdateAny applies a partial update without an ownership check; it
// backs the super-admin oversight path.
func (s *Service) UpdateAny(ctx context.Context, id string, params UpdateParams) (*Event, error) {
	if err := validateUpdate(params); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.requireOwner(ctx, ownerID, id); err != nil {
		return err
	}
	return s.DeleteAny(ctx, id)
}

// DeleteAny deletes without an ownership check (super-admin path). The
// zero-registrations invariant still applies.
func (s *Service) DeleteAny(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// OwnsEvent reports whether the admin's event list contains the event.
func (s *Service) OwnsEvent(ctx context.Context, adminID, eventID string) (bool, error) {
	return s.repo.OwnedBy(ctx, adminID, eventID)
}

func (s *Service) requireOwner(ctx context.Context, ownerID, eventID string) error {
	owned, err := s.repo.OwnedBy(ctx, ownerID, eventID)
	if err != nil {
		return fmt.Errorf("check ownership: %w", err)
	}
	if !owned {
		return ErrNotOwner
	}
	return nil
}

func validateUpdate(params UpdateParams) error {
	fields := make(map[string]string)
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		fields["name"] = "Name cannot be empty."
	}
	if params.Venue != nil && strings.TrimSpace(*params.Venue) == "" {
		fields["venue"] = "Venue cannot be empty."
	}
	if params.Date != nil && params.Date.IsZero() {
		fields["date"] = "Date cannot be empty."
	}
	if params.Capacity != nil && *params.Capacity <= 0 {
		fields["capacity"] = "Capacity must be a positive number."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
