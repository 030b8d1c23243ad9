package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/stretchr/testify/require"
)

func registerAdmin(t *testing.T, env *testEnv, username string) *admins.Admin {
	t.Helper()
	admin, err := env.admins.Register(t.Context(), username, goodPassword)
	require.NoError(t, err)
	return admin
}

func createEvent(t *testing.T, env *testEnv, ownerID string, capacity int) *events.Event {
	t.Helper()
	event, err := env.events.Create(t.Context(), ownerID, events.CreateParams{
		Name:     "GopherCon",
		Date:     time.Now().AddDate(0, 1, 0),
		Venue:    "Convention Center",
		Capacity: &capacity,
	})
	require.NoError(t, err)
	return event
}

func asAdmin(req *http.Request, admin *admins.Admin) *http.Request {
	return req.WithContext(middleware.WithAdmin(req.Context(), admin))
}

func TestCreateEventMultipart(t *testing.T) {
	env := newTestEnv()
	admin := registerAdmin(t, env, "alice")

	body, contentType := multipartEventBody(t, map[string]string{
		"name":     "GopherCon",
		"date":     "2030-06-01",
		"venue":    "Convention Center",
		"capacity": "50",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.eventsH.Create(rec, asAdmin(req, admin))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "GopherCon", data["name"])
	require.Equal(t, float64(50), data["capacity"])
}

func TestCreateEventDefaultsCapacityJSON(t *testing.T) {
	env := newTestEnv()
	admin := registerAdmin(t, env, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", jsonBody(t, map[string]any{
		"name":  "GopherCon",
		"date":  "2030-06-01",
		"venue": "Convention Center",
	}))
	rec := httptest.NewRecorder()
	env.eventsH.Create(rec, asAdmin(req, admin))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(events.DefaultCapacity), data["capacity"])
}

func TestCreateEventZeroCapacityRejected(t *testing.T) {
	env := newTestEnv()
	admin := registerAdmin(t, env, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", jsonBody(t, map[string]any{
		"name":     "GopherCon",
		"date":     "2030-06-01",
		"venue":    "Convention Center",
		"capacity": 0,
	}))
	rec := httptest.NewRecorder()
	env.eventsH.Create(rec, asAdmin(req, admin))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeEnvelope(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs, "capacity")
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv()
	admin := registerAdmin(t, env, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", jsonBody(t, map[string]any{
		"date": "not-a-date",
	}))
	rec := httptest.NewRecorder()
	env.eventsH.Create(rec, asAdmin(req, admin))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeEnvelope(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs, "date")
}

func TestGetEventPublic(t *testing.T) {
	env := newTestEnv()
	admin := registerAdmin(t, env, "alice")
	event := createEvent(t, env, admin.ID, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+event.ID, nil)
	req.SetPathValue("id", event.ID)
	rec := httptest.NewRecorder()
	env.eventsH.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, event.ID, data["id"])
}

func TestGetEventUnknownID(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	env.eventsH.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEventRequiresOwnership(t *testing.T) {
	env := newTestEnv()
	owner := registerAdmin(t, env, "alice")
	other := registerAdmin(t, env, "bobby")
	event := createEvent(t, env, owner.ID, 10)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+event.ID, jsonBody(t, map[string]any{
		"name": "Renamed",
	}))
	req.SetPathValue("id", event.ID)
	rec := httptest.NewRecorder()
	env.eventsH.Update(rec, asAdmin(req, other))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteEventWithRegistrations(t *testing.T) {
	env := newTestEnv()
	owner := registerAdmin(t, env, "alice")
	event := createEvent(t, env, owner.ID, 10)
	env.store.eventsByID[event.ID].Registrations = 1

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/events/"+event.ID, nil)
	req.SetPathValue("id", event.ID)
	rec := httptest.NewRecorder()
	env.eventsH.Delete(rec, asAdmin(req, owner))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEventListAndCount(t *testing.T) {
	env := newTestEnv()
	owner := registerAdmin(t, env, "alice")
	createEvent(t, env, owner.ID, 10)
	createEvent(t, env, owner.ID, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	env.eventsH.List(rec, asAdmin(req, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeEnvelope(t, rec)["data"].([]any)
	require.Len(t, list, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events/count", nil)
	rec = httptest.NewRecorder()
	env.eventsH.Count(rec, asAdmin(req, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(2), data["count"])
}
