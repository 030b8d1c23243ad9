package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/registrations"
)

// SuperadminHandler serves the oversight surface. Ownership checks are
// bypassed by calling the *Any service variants, never by comparing
// roles inside owner-scoped code.
type SuperadminHandler struct {
	Admins        *admins.Service
	Events        *events.Service
	Registrations *registrations.Service
}

func NewSuperadminHandler(adminsSvc *admins.Service, eventsSvc *events.Service, registrationsSvc *registrations.Service) *SuperadminHandler {
	return &SuperadminHandler{
		Admins:        adminsSvc,
		Events:        eventsSvc,
		Registrations: registrationsSvc,
	}
}

func (h *SuperadminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admins.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]adminJSON, 0, len(list))
	for i := range list {
		out = append(out, toAdminJSON(&list[i]))
	}
	respond.JSON(w, http.StatusOK, "", out)
}

func (h *SuperadminHandler) ListAdminEvents(w http.ResponseWriter, r *http.Request) {
	adminID := r.PathValue("id")
	if _, err := h.Admins.GetByID(r.Context(), adminID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	list, err := h.Events.ListForAdmin(r.Context(), adminID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toEventListJSON(list))
}

func (h *SuperadminHandler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registrations.ListForEventAny(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toRegistrationListJSON(list))
}

func (h *SuperadminHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	admin, err := h.Admins.UpdateCredentials(r.Context(), r.PathValue("id"), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Admin updated successfully.", toAdminJSON(admin))
}

func (h *SuperadminHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Date        *string `json:"date"`
		Venue       *string `json:"venue"`
		Description *string `json:"description"`
		Capacity    *int    `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	params := events.UpdateParams{
		Name:        body.Name,
		Venue:       body.Venue,
		Description: body.Description,
		Capacity:    body.Capacity,
	}
	if body.Date != nil {
		parsed, ok := parseEventDate(*body.Date)
		if !ok {
			respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", nil, map[string]string{
				"date": "Date must be an ISO date.",
			})
			return
		}
		params.Date = &parsed
	}

	event, err := h.Events.UpdateAny(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Event updated successfully.", toEventJSON(event))
}

func (h *SuperadminHandler) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
		Company   *string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	registration, err := h.Registrations.UpdateAny(r.Context(), r.PathValue("id"), registrations.UpdateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Company:   req.Company,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Registration updated successfully.", toRegistrationJSON(registration))
}

func (h *SuperadminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.Admins.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Admin deleted successfully.", nil)
}

func (h *SuperadminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.DeleteAny(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Event deleted successfully.", nil)
}

// DeleteRegistration uses withdraw semantics so the event counter is
// decremented in the same transaction as the row delete.
func (h *SuperadminHandler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	if err := h.Registrations.WithdrawAny(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Registration deleted successfully.", nil)
}
