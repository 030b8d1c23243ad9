package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/logostore"
)

// maxLogoSize bounds multipart parsing memory for logo uploads.
const maxLogoSize = 5 << 20

type EventsHandler struct {
	Events *events.Service
	Logos  logostore.Store
}

func NewEventsHandler(service *events.Service, logos logostore.Store) *EventsHandler {
	return &EventsHandler{Events: service, Logos: logos}
}

type eventJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`
	Venue         string    `json:"venue"`
	Description   string    `json:"description,omitempty"`
	LogoURL       string    `json:"logoUrl,omitempty"`
	Capacity      int       `json:"capacity"`
	Registrations int       `json:"registrations"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toEventJSON(event *events.Event) eventJSON {
	return eventJSON{
		ID:            event.ID,
		Name:          event.Name,
		Date:          event.Date,
		Venue:         event.Venue,
		Description:   event.Description,
		LogoURL:       event.LogoURL,
		Capacity:      event.Capacity,
		Registrations: event.Registrations,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
}

func toEventListJSON(list []events.Event) []eventJSON {
	out := make([]eventJSON, 0, len(list))
	for i := range list {
		out = append(out, toEventJSON(&list[i]))
	}
	return out
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	list, err := h.Events.ListForAdmin(r.Context(), admin.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toEventListJSON(list))
}

func (h *EventsHandler) Count(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	count, err := h.Events.CountForAdmin(r.Context(), admin.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", map[string]int{"count": count})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", toEventJSON(event))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	input, fields := h.parseEventInput(r)
	if len(fields) > 0 {
		respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", nil, fields)
		return
	}

	params := events.CreateParams{
		Name:        deref(input.Name),
		Venue:       deref(input.Venue),
		Description: deref(input.Description),
		LogoURL:     deref(input.LogoURL),
		Capacity:    input.Capacity,
	}
	if input.Date != nil {
		params.Date = *input.Date
	}

	event, err := h.Events.Create(r.Context(), admin.ID, params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Event created successfully.", toEventJSON(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	input, fields := h.parseEventInput(r)
	if len(fields) > 0 {
		respond.Fields(w, r, http.StatusBadRequest, "Validation failed.", nil, fields)
		return
	}

	event, err := h.Events.Update(r.Context(), admin.ID, r.PathValue("id"), events.UpdateParams{
		Name:        input.Name,
		Date:        input.Date,
		Venue:       input.Venue,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		Capacity:    input.Capacity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Event updated successfully.", toEventJSON(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if err := h.Events.Delete(r.Context(), admin.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Event deleted successfully.", nil)
}

// eventInput carries parsed fields; nil means the request omitted the
// field, which an update treats as keep-current.
type eventInput struct {
	Name        *string
	Date        *time.Time
	Venue       *string
	Description *string
	Capacity    *int
	LogoURL     *string
}

// parseEventInput accepts multipart form data (with an optional logo
// file) or a plain JSON body.
func (h *EventsHandler) parseEventInput(r *http.Request) (eventInput, map[string]string) {
	fields := make(map[string]string)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		input := h.parseMultipart(r, fields)
		return input, fields
	}

	var body struct {
		Name        *string `json:"name"`
		Date        *string `json:"date"`
		Venue       *string `json:"venue"`
		Description *string `json:"description"`
		Capacity    *int    `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fields["request"] = "Invalid request body."
		return eventInput{}, fields
	}

	input := eventInput{
		Name:        body.Name,
		Venue:       body.Venue,
		Description: body.Description,
		Capacity:    body.Capacity,
	}
	if body.Date != nil {
		if parsed, ok := parseEventDate(*body.Date); ok {
			input.Date = &parsed
		} else {
			fields["date"] = "Date must be an ISO date."
		}
	}
	return input, fields
}

func (h *EventsHandler) parseMultipart(r *http.Request, fields map[string]string) eventInput {
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		fields["request"] = "Invalid multipart form."
		return eventInput{}
	}

	var input eventInput
	if value, ok := formValue(r, "name"); ok {
		input.Name = &value
	}
	if value, ok := formValue(r, "venue"); ok {
		input.Venue = &value
	}
	if value, ok := formValue(r, "description"); ok {
		input.Description = &value
	}
	if value, ok := formValue(r, "date"); ok {
		if parsed, good := parseEventDate(value); good {
			input.Date = &parsed
		} else {
			fields["date"] = "Date must be an ISO date."
		}
	}
	if value, ok := formValue(r, "capacity"); ok {
		capacity, err := strconv.Atoi(value)
		if err != nil {
			fields["capacity"] = "Capacity must be a number."
		} else {
			input.Capacity = &capacity
		}
	}

	file, header, err := r.FormFile("logo")
	if err == http.ErrMissingFile {
		return input
	}
	if err != nil {
		fields["logo"] = "Logo upload is malformed."
		return input
	}
	defer file.Close()

	url, err := h.Logos.Save(r.Context(), header.Header.Get("Content-Type"), file)
	if err != nil {
		if err == logostore.ErrUnsupportedType {
			fields["logo"] = "Logo must be a JPEG or PNG image."
		} else {
			fields["logo"] = "Logo upload failed."
		}
		return input
	}
	input.LogoURL = &url
	return input
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parseEventDate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
