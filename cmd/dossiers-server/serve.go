package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dossiers/dossiers/internal/catalog"
	"github.com/dossiers/dossiers/internal/config"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/domain/worksession"
	"github.com/dossiers/dossiers/internal/platform/auth"
	"github.com/dossiers/dossiers/internal/platform/db"
	"github.com/dossiers/dossiers/internal/platform/middleware"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
	"github.com/dossiers/dossiers/internal/platform/websocket"
	"github.com/dossiers/dossiers/internal/realtime"
	"github.com/dossiers/dossiers/internal/search"
	"github.com/dossiers/dossiers/internal/workspace"
)

const version = "0.1.0"

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func runServer(parent context.Context, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.IsDev() {
		logger.Warn().Msg("development mode: unauthenticated requests run as dev-user with admin access")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if migrate {
		n, err := db.NewMigrator(pool, migrationFiles(cfg)).Up(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	metrics := telemetry.NewProvider(telemetry.Config{ServiceName: "dossiers-server"})
	go db.WatchPool(ctx, pool, 15*time.Second, metrics.SetDBPool)

	a, err := newApp(cfg, pool, metrics, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Local writes and the database change feed both end up here: the cache
	// drops stale collections, then connected clients are told to refetch.
	hub := websocket.NewHub(logger)
	notifier := realtime.Fanout{a.catalog, realtime.NewBroadcaster(hub)}
	a.setNotifier(notifier)
	go func() {
		if err := realtime.NewListener(pool, notifier, logger).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("change feed stopped")
		}
	}()

	e := newServer(cfg, logger, metrics)
	e.GET("/health/db", db.HealthHandler(pool))

	ws := e.Group("", authMiddleware(cfg))
	websocket.NewHandler(hub, realtime.Topics, cfg.CORSOrigins).RegisterRoutes(ws)

	api := e.Group("/api/v1", authMiddleware(cfg), auth.RequireUser(), middleware.RateLimit(rateLimitConfig(cfg)))
	registerRoutes(api, a)

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("workspace_store", cfg.WorkspaceStore).
			Bool("ai", cfg.AIEnabled()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with the global middleware stack and
// the unauthenticated endpoints.
func newServer(cfg *config.Config, logger zerolog.Logger, metrics *telemetry.Provider) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit("1M", "5M"))
	e.Use(middleware.RequestTimeout(30*time.Second, 90*time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", metrics.Handler())
	return e
}

func authMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	var jwtMW echo.MiddlewareFunc
	if cfg.AuthJWTSecret != "" {
		jwtMW = auth.JWTMiddleware(auth.JWTConfig{
			Issuer:        cfg.AuthIssuer,
			Audience:      cfg.AuthAudience,
			SigningKey:    []byte(cfg.AuthJWTSecret),
			AllowedEmails: cfg.AllowedEmails,
		})
	}
	if cfg.IsDev() {
		return auth.DevAuthMiddleware(jwtMW)
	}
	return jwtMW
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	return rl
}

func registerRoutes(api *echo.Group, a *app) {
	patient.NewHandler(a.patients).RegisterRoutes(api)
	observation.NewHandler(a.observations).RegisterRoutes(api)
	consultation.NewHandler(a.consultations).RegisterRoutes(api)
	todo.NewHandler(a.todos).RegisterRoutes(api)
	worksession.NewHandler(a.workSessions).RegisterRoutes(api)
	workspace.NewHandler(a.workspace).RegisterRoutes(api)
	catalog.NewHandler(a.catalog, a.workspace).RegisterRoutes(api)
	search.NewHandler(a.search).RegisterRoutes(api)
}
