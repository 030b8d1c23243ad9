package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/domain/admins"
)

type AdminAuthHandler struct {
	Admins *admins.Service
}

func NewAdminAuthHandler(service *admins.Service) *AdminAuthHandler {
	return &AdminAuthHandler{Admins: service}
}

type adminJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAdminJSON(admin *admins.Admin) adminJSON {
	return adminJSON{
		ID:        admin.ID,
		Username:  admin.Username,
		Role:      string(admin.Role),
		CreatedAt: admin.CreatedAt,
		UpdatedAt: admin.UpdatedAt,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	admin, err := h.Admins.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Admin registered successfully.", toAdminJSON(admin))
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	pair, err := h.Admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Login successful.", map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AdminAuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	accessToken, err := h.Admins.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Token refreshed.", map[string]string{
		"accessToken": accessToken,
	})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if err := h.Admins.Logout(r.Context(), req.RefreshToken); err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Logged out.", nil)
}

func (h *AdminAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}
	respond.JSON(w, http.StatusOK, "", toAdminJSON(admin))
}
