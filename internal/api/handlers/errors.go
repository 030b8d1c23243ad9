package handlers

import (
	"errors"
	"net/http"

	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/registrations"
)

// writeDomainError maps service errors onto the HTTP taxonomy: 400 for
// malformed input, 401/403 for auth, 404 for unknown resources, 409 for
// state conflicts (capacity included), 422 for past events.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var adminVErr *admins.ValidationError
	var eventVErr *events.ValidationError
	var regVErr *registrations.ValidationError

	switch {
	case errors.As(err, &adminVErr):
		respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", err, adminVErr.Fields)
	case errors.As(err, &eventVErr):
		respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", err, eventVErr.Fields)
	case errors.As(err, &regVErr):
		respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", err, regVErr.Fields)

	case errors.Is(err, admins.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "Invalid username or password.", err)
	case errors.Is(err, admins.ErrInvalidRefreshToken):
		respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired refresh token.", err)

	case errors.Is(err, events.ErrNotOwner):
		respond.Error(w, r, http.StatusForbidden, "You do not have access to this event.", err)

	case errors.Is(err, admins.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Admin not found.", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Event not found.", err)
	case errors.Is(err, registrations.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Registration not found.", err)

	case errors.Is(err, admins.ErrUsernameTaken):
		respond.Error(w, r, http.StatusConflict, "Username already exists.", err)
	case errors.Is(err, admins.ErrHasEvents):
		respond.Error(w, r, http.StatusConflict, "Admin still owns events.", err)
	case errors.Is(err, events.ErrHasRegistrations):
		respond.Error(w, r, http.StatusConflict, "Event still has registrations.", err)
	case errors.Is(err, events.ErrCapacityTooSmall):
		respond.Error(w, r, http.StatusConflict, "Capacity cannot drop below current registrations.", err)
	case errors.Is(err, registrations.ErrDuplicate):
		respond.Error(w, r, http.StatusConflict, "Already registered for this event.", err)
	case errors.Is(err, registrations.ErrCapacityFull):
		respond.Error(w, r, http.StatusConflict, "Event is at full capacity.", err)

	case errors.Is(err, registrations.ErrEventPast):
		respond.Error(w, r, http.StatusUnprocessableEntity, "Event date has already passed.", err)

	default:
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error.", err)
	}
}
