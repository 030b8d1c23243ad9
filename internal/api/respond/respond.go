package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Envelope is the uniform response shape. Success responses carry data,
// failures carry a message and optionally per-field errors.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure envelope and logs it with the request-scoped
// logger, warn for client errors and error for server errors. The
// underlying err goes to the log only, never to the client.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	Fields(w, r, status, message, err, nil)
}

// Fields writes a failure envelope carrying per-field validation errors.
func Fields(w http.ResponseWriter, r *http.Request, status int, message string, err error, fields map[string]string) {
	if r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	write(w, status, Envelope{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

func write(w http.ResponseWriter, status int, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error."}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
