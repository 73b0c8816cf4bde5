// Package app provides initialization and lifecycle management for the
// accounts service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mharte/caseflow/internal/accounts/auth"
	authsqlite "github.com/mharte/caseflow/internal/accounts/auth/sqlite"
	"github.com/mharte/caseflow/internal/accounts/migrations"
	"github.com/mharte/caseflow/internal/config"
	"github.com/mharte/caseflow/internal/pkg/health"
	"github.com/mharte/caseflow/internal/pkg/httputil"
	"github.com/mharte/caseflow/internal/pkg/logging"
	"github.com/mharte/caseflow/internal/pkg/safedb"
	"github.com/mharte/caseflow/internal/pkg/sqlite"
	"github.com/mharte/caseflow/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the accounts service instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	gate          *safedb.Gate
	state         *health.State
	server        *http.Server
	metricsServer *http.Server
}

// New creates a new accounts service instance.
func New(cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	db, err := sqlite.Open(sqlite.Config{Filename: cfg.Database.Filename})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlite.Migrate(db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	state := health.NewState(version.Version, true)
	gate := safedb.New(db, state, logger, cfg.Database.QueryTimeout)

	app := &App{
		config: cfg,
		logger: logger,
		gate:   gate,
		state:  state,
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting accounts server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the service.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	if err := a.gate.DB().Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// State returns the shared service state for testing.
func (a *App) State() *health.State {
	return a.state
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(httputil.MetricsMiddleware)
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	authRepo := authsqlite.NewRepository(a.gate)
	authService := auth.NewService(authRepo, a.logger)
	authHandler := auth.NewHandler(authService)
	authHandler.RegisterRoutes(r)

	healthHandler := health.NewHandler(a.state)
	healthHandler.RegisterRoutes(r)
	r.Route("/admin", func(r chi.Router) {
		healthHandler.RegisterAdminRoutes(r)
	})

	r.Get("/version", a.versionHandler)

	return r
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}
