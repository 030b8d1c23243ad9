package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/ids"
	"github.com/eventdesk/server/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrEventPast rejects admissions for events whose date is strictly
// before today. Time of day is discarded on both sides, so an event
// happening today stays open.
var ErrEventPast = errors.New("event date has passed")

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

// EventDirectory is the slice of the event registry that admission
// control needs: the target event and the ownership relation.
type EventDirectory interface {
	Get(ctx context.Context, id string) (*events.Event, error)
	OwnsEvent(ctx context.Context, adminID, eventID string) (bool, error)
}

// AdmitRequest is a public registration attempt.
type AdmitRequest struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Phone     string `validate:"required"`
	Email     string `validate:"required,email"`
	Company   string
	EventID   string `validate:"required"`
}

type Service struct {
	repo     Repository
	events   EventDirectory
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, events EventDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		events:   events,
		validate: validator.New(),
		logger:   logger.With().Str("component", "registrations").Logger(),
	}
}

// Admit decides a registration request. Checks run in order and
// short-circuit: field presence, event existence, eligibility window,
// capacity, duplicate. The insert and the counter increment happen as
// one atomic repository operation, and the increment carries the
// capacity ceiling itself, so the precheck here is only a fast path.
// Concurrent admissions are decided by the storage layer.
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (*Registration, error) {
	if err := s.validate.Struct(req); err != nil {
		metrics.AdmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, toValidationError(err)
	}

	event, err := s.events.Get(ctx, req.EventID)
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues("event_not_found").Inc()
		return nil, err
	}

	if dateOnly(event.Date).Before(dateOnly(time.Now())) {
		metrics.AdmissionsTotal.WithLabelValues("past_event").Inc()
		return nil, ErrEventPast
	}

	if event.Registrations >= event.Capacity {
		metrics.AdmissionsTotal.WithLabelValues("capacity").Inc()
		return nil, ErrCapacityFull
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint registration id: %w", err)
	}

	registration, err := s.repo.Admit(ctx, AdmitParams{
		ID:        id,
		EventID:   event.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Company:   req.Company,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityFull):
			metrics.AdmissionsTotal.WithLabelValues("capacity").Inc()
		case errors.Is(err, ErrDuplicate):
			metrics.AdmissionsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.AdmissionsTotal.WithLabelValues("admitted").Inc()
	s.logger.Info().Str("registration_id", registration.ID).Str("event_id", event.ID).Msg("registration admitted")
	return registration, nil
}

// Withdraw removes a registration on the owner-scoped path and frees
// its capacity slot.
func (s *Service) Withdraw(ctx context.Context, requesterID, id string) error {
	registration, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	owned, err := s.events.OwnsEvent(ctx, requesterID, registration.EventID)
	if err != nil {
		return fmt.Errorf("check ownership: %w", err)
	}
	if !owned {
		return events.ErrNotOwner
	}

	return s.withdraw(ctx, registration)
}

// WithdrawAny removes a registration without an ownership check
// (super-admin path); the counter decrement is identical.
func (s *Service) WithdrawAny(ctx context.Context, id string) error {
	registration, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.withdraw(ctx, registration)
}

func (s *Service) withdraw(ctx context.Context, registration *Registration) error {
	if err := s.repo.Withdraw(ctx, registration.ID); err != nil {
		return err
	}
	metrics.WithdrawalsTotal.Inc()
	s.logger.Info().Str("registration_id", registration.ID).Str("event_id", registration.EventID).Msg("registration withdrawn")
	return nil
}

func (s *Service) ListForAdmin(ctx context.Context, adminID string) ([]Registration, error) {
	return s.repo.ListForAdmin(ctx, adminID)
}

// ListForEvent lists an event's registrations on the owner-scoped path.
func (s *Service) ListForEvent(ctx context.Context, requesterID, eventID string) ([]Registration, error) {
	owned, err := s.events.OwnsEvent(ctx, requesterID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if !owned {
		return nil, events.ErrNotOwner
	}
	return s.repo.ListForEvent(ctx, eventID)
}

// ListForEventAny lists without an ownership check (super-admin path).
func (s *Service) ListForEventAny(ctx context.Context, eventID string) ([]Registration, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListForEvent(ctx, eventID)
}

// UpdateAny edits contact fields on the super-admin path. Per-event
// email/phone uniqueness still holds.
func (s *Service) UpdateAny(ctx context.Context, id string, params UpdateParams) (*Registration, error) {
	fields := make(map[string]string)
	if params.Email != nil {
		if err := s.validate.Var(*params.Email, "required,email"); err != nil {
			fields["email"] = "Email must be a valid address."
		}
	}
	if params.Phone != nil && strings.TrimSpace(*params.Phone) == "" {
		fields["phone"] = "Phone cannot be empty."
	}
	if params.FirstName != nil && strings.TrimSpace(*params.FirstName) == "" {
		fields["firstName"] = "First name cannot be empty."
	}
	if params.LastName != nil && strings.TrimSpace(*params.LastName) == "" {
		fields["lastName"] = "Last name cannot be empty."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.repo.Update(ctx, id, params)
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := lowerFirst(fe.Field())
		if fe.Field() == "EventID" {
			name = "eventId"
		}
		switch fe.Tag() {
		case "required":
			fields[name] = "This field is required."
		case "email":
			fields[name] = "Email must be a valid address."
		default:
			fields[name] = "Invalid value."
		}
	}
	return &ValidationError{Fields: fields}
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
