package middleware

import (
	"fmt"
	"net/http"

	"github.com/eventdesk/server/internal/api/respond"
)

// Recover turns handler panics into a 500 response instead of tearing
// down the connection.
func Recover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					respond.Error(w, r, http.StatusInternalServerError, "Internal server error.", fmt.Errorf("panic: %v", rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
