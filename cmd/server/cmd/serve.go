package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventdesk/server/internal/api"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/config"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/eventdesk/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the eventdesk HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server loads configuration from environment variables, seeds the
super-admin account when SUPERADMIN_USERNAME and SUPERADMIN_PASSWORD are
set, and shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting eventdesk server")

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapSuperadmin(bootstrapCtx, cfg, pool, logger); err != nil {
		logger.Error().Err(err).Msg("superadmin bootstrap failed")
	}
	bootstrapCancel()

	router, stopLimiter, err := api.NewRouter(cfg, logger, pool)
	if err != nil {
		return fmt.Errorf("router init failed: %w", err)
	}
	defer stopLimiter()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	shutdown(server, logger)
	return nil
}

// bootstrapSuperadmin seeds the super-admin account from SUPERADMIN_*
// env vars before the server starts accepting requests.
func bootstrapSuperadmin(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if cfg.Bootstrap.Username == "" || cfg.Bootstrap.Password == "" {
		logger.Debug().Msg("superadmin bootstrap env vars not set; skipping")
		return nil
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	access := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.AccessExpiry, cfg.Auth.Issuer)
	refresh := auth.NewTokenManager(cfg.Auth.RefreshSecret, cfg.Auth.RefreshExpiry, cfg.Auth.Issuer)
	service := admins.NewService(repo.Admins(), access, refresh, cfg.Auth.MasterKey, logger)

	return service.EnsureSuperadmin(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password)
}

func shutdown(server *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
