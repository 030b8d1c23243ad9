package api

import (
	"fmt"
	"net/http"

	"github.com/eventdesk/server/internal/api/handlers"
	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/config"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/domain/registrations"
	"github.com/eventdesk/server/internal/logostore"
	"github.com/eventdesk/server/internal/metrics"
	"github.com/eventdesk/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewRouter wires repositories, services and handlers onto one mux.
// The returned stop func shuts down the rate limiter's cleanup
// goroutine.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, func(), error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, nil, err
	}

	logos, err := logostore.NewDiskStore(cfg.Uploads.Dir, cfg.Server.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("init logo store: %w", err)
	}

	access := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.AccessExpiry, cfg.Auth.Issuer)
	refresh := auth.NewTokenManager(cfg.Auth.RefreshSecret, cfg.Auth.RefreshExpiry, cfg.Auth.Issuer)

	adminsSvc := admins.NewService(repo.Admins(), access, refresh, cfg.Auth.MasterKey, logger)
	eventsSvc := events.NewService(repo.Events(), logger)
	registrationsSvc := registrations.NewService(repo.Registrations(), eventsSvc, logger)

	authHandler := handlers.NewAdminAuthHandler(adminsSvc)
	eventsHandler := handlers.NewEventsHandler(eventsSvc, logos)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsSvc)
	superHandler := handlers.NewSuperadminHandler(adminsSvc, eventsSvc, registrationsSvc)

	limit, stopLimiter := middleware.RateLimit(cfg.RateLimit)
	requireAdmin := middleware.RequireAdmin(access, adminsSvc)
	requireSuper := middleware.RequireSuperadmin()
	adminTier := middleware.WithRateLimitTier(middleware.TierAdmin)
	loginTier := middleware.WithRateLimitTier(middleware.TierLogin)

	// The tier middleware must run before the limiter so the limiter
	// reads the tier from the request context.
	public := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}
	secured := func(h http.HandlerFunc) http.Handler {
		return adminTier(limit(requireAdmin(h)))
	}
	super := func(h http.HandlerFunc) http.Handler {
		return adminTier(limit(requireAdmin(requireSuper(h))))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/admin/register", public(authHandler.Register))
	mux.Handle("POST /api/v1/admin/login", loginTier(limit(http.HandlerFunc(authHandler.Login))))
	mux.Handle("POST /api/v1/admin/refresh", public(authHandler.Refresh))
	mux.Handle("POST /api/v1/admin/logout", public(authHandler.Logout))
	mux.Handle("GET /api/v1/admin/me", secured(authHandler.Me))

	mux.Handle("GET /api/v1/events", secured(eventsHandler.List))
	mux.Handle("GET /api/v1/events/count", secured(eventsHandler.Count))
	mux.Handle("GET /api/v1/events/{id}", public(eventsHandler.Get))
	mux.Handle("POST /api/v1/events", secured(eventsHandler.Create))
	mux.Handle("PUT /api/v1/events/{id}", secured(eventsHandler.Update))
	mux.Handle("DELETE /api/v1/events/{id}", secured(eventsHandler.Delete))

	mux.Handle("POST /api/v1/registrations", public(registrationsHandler.Create))
	mux.Handle("GET /api/v1/registrations", secured(registrationsHandler.List))
	mux.Handle("GET /api/v1/registrations/event/{id}", secured(registrationsHandler.ListForEvent))
	mux.Handle("DELETE /api/v1/registrations/{id}", secured(registrationsHandler.Delete))

	mux.Handle("GET /api/v1/superadmin/admins", super(superHandler.ListAdmins))
	mux.Handle("GET /api/v1/superadmin/admins/{id}/events", super(superHandler.ListAdminEvents))
	mux.Handle("GET /api/v1/superadmin/events/{id}/registrations", super(superHandler.ListEventRegistrations))
	mux.Handle("PUT /api/v1/superadmin/admins/{id}", super(superHandler.UpdateAdmin))
	mux.Handle("PUT /api/v1/superadmin/events/{id}", super(superHandler.UpdateEvent))
	mux.Handle("PUT /api/v1/superadmin/registrations/{id}", super(superHandler.UpdateRegistration))
	mux.Handle("DELETE /api/v1/superadmin/admins/{id}", super(superHandler.DeleteAdmin))
	mux.Handle("DELETE /api/v1/superadmin/events/{id}", super(superHandler.DeleteEvent))
	mux.Handle("DELETE /api/v1/superadmin/registrations/{id}", super(superHandler.DeleteRegistration))

	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz(pool))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(logos.Dir()))))

	handler := chain(mux,
		middleware.RequestLogging(logger),
		middleware.Metrics(),
		middleware.Recover(),
	)
	return handler, stopLimiter, nil
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
