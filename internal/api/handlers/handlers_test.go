package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/registrations"
	"github.com/rs/zerolog"
)

// memStore is an in-memory backend for all three repositories, with the
// same atomicity guarantees the SQL layer provides: admissions check
// duplicates, insert, and bump the counter under one lock.
type memStore struct {
	mu         sync.Mutex
	adminsByID map[string]*admins.Admin
	tokens     map[string]string // token hash -> admin id
	eventsByID map[string]*events.Event
	owners     map[string][]string // admin id -> event ids in order
	regsByID   map[string]*registrations.Registration
}

func newMemStore() *memStore {
	return &memStore{
		adminsByID: make(map[string]*admins.Admin),
		tokens:     make(map[string]string),
		eventsByID: make(map[string]*events.Event),
		owners:     make(map[string][]string),
		regsByID:   make(map[string]*registrations.Registration),
	}
}

type memAdmins struct{ *memStore }

func (m memAdmins) Create(_ context.Context, params admins.CreateParams) (*admins.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.adminsByID {
		if existing.Username == params.Username {
			return nil, admins.ErrUsernameTaken
		}
	}
	admin := &admins.Admin{
		ID:           params.ID,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.adminsByID[admin.ID] = admin
	copied := *admin
	return &copied, nil
}

func (m memAdmins) GetByID(_ context.Context, id string) (*admins.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.adminsByID[id]
	if !ok {
		return nil, admins.ErrNotFound
	}
	copied := *admin
	return &copied, nil
}

func (m memAdmins) GetByUsername(_ context.Context, username string) (*admins.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.adminsByID {
		if admin.Username == username {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, admins.ErrNotFound
}

func (m memAdmins) Update(_ context.Context, id string, params admins.UpdateParams) (*admins.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.adminsByID[id]
	if !ok {
		return nil, admins.ErrNotFound
	}
	if params.Username != nil {
		for otherID, other := range m.adminsByID {
			if otherID != id && other.Username == *params.Username {
				return nil, admins.ErrUsernameTaken
			}
		}
		admin.Username = *params.Username
	}
	if params.PasswordHash != nil {
		admin.PasswordHash = *params.PasswordHash
	}
	copied := *admin
	return &copied, nil
}

func (m memAdmins) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.adminsByID[id]; !ok {
		return admins.ErrNotFound
	}
	if len(m.owners[id]) > 0 {
		return admins.ErrHasEvents
	}
	delete(m.adminsByID, id)
	return nil
}

func (m memAdmins) List(_ context.Context) ([]admins.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []admins.Admin
	for _, admin := range m.adminsByID {
		if admin.Role == auth.RoleAdmin {
			out = append(out, *admin)
		}
	}
	return out, nil
}

func (m memAdmins) AddRefreshToken(_ context.Context, adminID, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = adminID
	return nil
}

func (m memAdmins) HasRefreshToken(_ context.Context, adminID, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[tokenHash] == adminID, nil
}

func (m memAdmins) RemoveRefreshToken(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[tokenHash]; !ok {
		return admins.ErrTokenNotFound
	}
	delete(m.tokens, tokenHash)
	return nil
}

type memEvents struct{ *memStore }

func (m memEvents) Create(_ context.Context, ownerID string, params events.CreateParams) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event := &events.Event{
		ID:          params.ID,
		Name:        params.Name,
		Date:        params.Date,
		Venue:       params.Venue,
		Description: params.Description,
		LogoURL:     params.LogoURL,
		Capacity:    *params.Capacity,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.eventsByID[event.ID] = event
	m.owners[ownerID] = append(m.owners[ownerID], event.ID)
	copied := *event
	return &copied, nil
}

func (m memEvents) Get(_ context.Context, id string) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.eventsByID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (m memEvents) Update(_ context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.eventsByID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	if params.Capacity != nil && *params.Capacity < event.Registrations {
		return nil, events.ErrCapacityTooSmall
	}
	if params.Name != nil {
		event.Name = *params.Name
	}
	if params.Date != nil {
		event.Date = *params.Date
	}
	if params.Venue != nil {
		event.Venue = *params.Venue
	}
	if params.Description != nil {
		event.Description = *params.Description
	}
	if params.LogoURL != nil {
		event.LogoURL = *params.LogoURL
	}
	if params.Capacity != nil {
		event.Capacity = *params.Capacity
	}
	copied := *event
	return &copied, nil
}

func (m memEvents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.eventsByID[id]
	if !ok {
		return events.ErrNotFound
	}
	if event.Registrations > 0 {
		return events.ErrHasRegistrations
	}
	delete(m.eventsByID, id)
	for adminID, list := range m.owners {
		kept := list[:0]
		for _, eventID := range list {
			if eventID != id {
				kept = append(kept, eventID)
			}
		}
		m.owners[adminID] = kept
	}
	return nil
}

func (m memEvents) ListForAdmin(_ context.Context, adminID string) ([]events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, 0, len(m.owners[adminID]))
	for _, id := range m.owners[adminID] {
		if event, ok := m.eventsByID[id]; ok {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (m memEvents) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	list, err := m.ListForAdmin(ctx, adminID)
	return len(list), err
}

func (m memEvents) OwnedBy(_ context.Context, adminID, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.owners[adminID] {
		if id == eventID {
			return true, nil
		}
	}
	return false, nil
}

type memRegistrations struct{ *memStore }

func (m memRegistrations) Admit(_ context.Context, params registrations.AdmitParams) (*registrations.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.eventsByID[params.EventID]
	if !ok {
		return nil, events.ErrNotFound
	}
	for _, reg := range m.regsByID {
		if reg.EventID == params.EventID && (reg.Email == params.Email || reg.Phone == params.Phone) {
			return nil, registrations.ErrDuplicate
		}
	}
	if event.Registrations >= event.Capacity {
		return nil, registrations.ErrCapacityFull
	}
	registration := &registrations.Registration{
		ID:        params.ID,
		EventID:   params.EventID,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Phone:     params.Phone,
		Email:     params.Email,
		Company:   params.Company,
		CreatedAt: time.Now(),
	}
	m.regsByID[registration.ID] = registration
	event.Registrations++
	copied := *registration
	return &copied, nil
}

func (m memRegistrations) Withdraw(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	registration, ok := m.regsByID[id]
	if !ok {
		return registrations.ErrNotFound
	}
	delete(m.regsByID, id)
	m.eventsByID[registration.EventID].Registrations--
	return nil
}

func (m memRegistrations) Get(_ context.Context, id string) (*registrations.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	registration, ok := m.regsByID[id]
	if !ok {
		return nil, registrations.ErrNotFound
	}
	copied := *registration
	return &copied, nil
}

func (m memRegistrations) Update(_ context.Context, id string, params registrations.UpdateParams) (*registrations.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	registration, ok := m.regsByID[id]
	if !ok {
		return nil, registrations.ErrNotFound
	}
	if params.FirstName != nil {
		registration.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		registration.LastName = *params.LastName
	}
	if params.Phone != nil {
		registration.Phone = *params.Phone
	}
	if params.Email != nil {
		registration.Email = *params.Email
	}
	if params.Company != nil {
		registration.Company = *params.Company
	}
	copied := *registration
	return &copied, nil
}

func (m memRegistrations) ListForEvent(_ context.Context, eventID string) ([]registrations.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []registrations.Registration
	for _, reg := range m.regsByID {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m memRegistrations) ListForAdmin(_ context.Context, adminID string) ([]registrations.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := make(map[string]bool)
	for _, id := range m.owners[adminID] {
		owned[id] = true
	}
	var out []registrations.Registration
	for _, reg := range m.regsByID {
		if owned[reg.EventID] {
			out = append(out, *reg)
		}
	}
	return out, nil
}

// testEnv bundles services and handlers over one shared memStore.
type testEnv struct {
	store         *memStore
	admins        *admins.Service
	events        *events.Service
	registrations *registrations.Service
	auth          *AdminAuthHandler
	eventsH       *EventsHandler
	regsH         *RegistrationsHandler
	superH        *SuperadminHandler
}

func newTestEnv() *testEnv {
	store := newMemStore()
	logger := zerolog.Nop()
	access := auth.NewTokenManager("access-secret", time.Minute, "eventdesk")
	refresh := auth.NewTokenManager("refresh-secret", time.Hour, "eventdesk")

	adminsSvc := admins.NewService(memAdmins{store}, access, refresh, "", logger)
	eventsSvc := events.NewService(memEvents{store}, logger)
	registrationsSvc := registrations.NewService(memRegistrations{store}, eventsSvc, logger)

	return &testEnv{
		store:         store,
		admins:        adminsSvc,
		events:        eventsSvc,
		registrations: registrationsSvc,
		auth:          NewAdminAuthHandler(adminsSvc),
		eventsH:       NewEventsHandler(eventsSvc, discardLogos{}),
		regsH:         NewRegistrationsHandler(registrationsSvc),
		superH:        NewSuperadminHandler(adminsSvc, eventsSvc, registrationsSvc),
	}
}

// discardLogos satisfies logostore.Store without touching disk.
type discardLogos struct{}

func (discardLogos) Save(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "http://localhost/uploads/test.png", nil
}

func jsonBody(t interface{ Fatalf(string, ...any) }, v any) *bytes.Reader {
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(payload)
}

func decodeEnvelope(t interface{ Fatalf(string, ...any) }, rec *httptest.ResponseRecorder) map[string]any {
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func admitRequestFor(eventID string) registrations.AdmitRequest {
	return registrations.AdmitRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "555-0001",
		Email:     "ada@x.com",
		EventID:   eventID,
	}
}

func multipartEventBody(t interface{ Fatalf(string, ...any) }, fields map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
