package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventdesk/server/internal/api/respond"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/domain/admins"
)

type contextKey string

const adminKey contextKey = "admin"

func WithAdmin(ctx context.Context, admin *admins.Admin) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// AdminFrom returns the authenticated account placed by RequireAdmin.
func AdminFrom(ctx context.Context) (*admins.Admin, bool) {
	admin, ok := ctx.Value(adminKey).(*admins.Admin)
	return admin, ok
}

// AdminLoader resolves a token subject to a live account, so revoked or
// deleted admins fail authentication even with a valid token.
type AdminLoader interface {
	GetByID(ctx context.Context, id string) (*admins.Admin, error)
}

func RequireAdmin(tokens *auth.TokenManager, loader AdminLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", err)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token.", err)
				return
			}

			admin, err := loader.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, admins.ErrNotFound) {
					respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token.", err)
					return
				}
				respond.Error(w, r, http.StatusInternalServerError, "Internal server error.", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

// RequireSuperadmin layers a role check on top of RequireAdmin.
func RequireSuperadmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := AdminFrom(r.Context())
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, "Authentication required.", nil)
				return
			}
			if admin.Role != auth.RoleSuperadmin {
				respond.Error(w, r, http.StatusForbidden, "Super admin access required.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
