package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/domain/registrations"
)

type RegistrationsHandler struct {
	Registrations *registrations.Service
}

func NewRegistrationsHandler(service *registrations.Service) *RegistrationsHandler {
	return &RegistrationsHandler{Registrations: service}
}

type registrationJSON struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRegistrationJSON(registration *registrations.Registration) registrationJSON {
	return registrationJSON{
		ID:        registration.ID,
		EventID:   registration.EventID,
		FirstName: registration.FirstName,
		LastName:  registration.LastName,
		Phone:     registration.Phone,
		Email:     registration.Email,
		Company:   registration.Company,
		CreatedAt: registration.CreatedAt,
	}
}

func toRegistrationListJSON(list []registrations.Registration) []registrationJSON {
	out := make([]registrationJSON, 0, len(list))
	for i := range list {
		out = append(out, toRegistrationJSON(&list[i]))
	}
	return out
}

// Create is the public admission endpoint.
func (h *RegistrationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Company   string `json:"company"`
		EventID   string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	registration, err := h.Registrations.Admit(r.Context(), registrations.AdmitRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Company:   req.Company,
		EventID:   req.EventID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Registration successful.", toRegistrationJSON(registration))
}

// List returns registrations across every event the admin owns.
func (h *RegistrationsHandler) List(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	list, err := h.Registrations.ListForAdmin(r.Context(), admin.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toRegistrationListJSON(list))
}

func (h *RegistrationsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	list, err := h.Registrations.ListForEvent(r.Context(), admin.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toRegistrationListJSON(list))
}

// Delete withdraws a registration and frees its slot.
func (h *RegistrationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if err := h.Registrations.Withdraw(r.Context(), admin.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Registration deleted successfully.", nil)
}
