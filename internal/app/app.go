// Package app wires DDA together and runs one of its sub-commands.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/dda/internal/auth"
	"github.com/hitoshi/dda/internal/config"
	"github.com/hitoshi/dda/internal/database"
	"github.com/hitoshi/dda/internal/handler"
	"github.com/hitoshi/dda/internal/logger"
	"github.com/hitoshi/dda/internal/metrics"
	"github.com/hitoshi/dda/internal/middleware"
	"github.com/hitoshi/dda/internal/repository"
	"github.com/hitoshi/dda/internal/security"
	"github.com/hitoshi/dda/internal/session"
	"github.com/hitoshi/dda/internal/user"
	"github.com/hitoshi/dda/internal/worker/cleanup"
)

const shutdownTimeout = 30 * time.Second

// Init installs the JSON logger and loads the configuration. The logger is
// installed at INFO first so configuration errors are logged, then reinstalled
// at the configured level.
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, logger.Level(cfg.DebugLogging()))
	return cfg, nil
}

// Run is the entry point. args is os.Args[1:].
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck runs inside the container probe and needs no configuration.
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("env", string(cfg.Env)),
		slog.String("port", cfg.ServerPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// runServe starts the API server and shuts it down gracefully when ctx ends.
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := newRegistry()
	router, closeRouter := newAPIRouter(ctx, cfg, db, registry)
	defer closeRouter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("API server starting", slog.String("addr", server.Addr))
	if err := serveUntilDone(ctx, server); err != nil {
		return err
	}
	slog.Info("API server stopped gracefully")
	return nil
}

// newAPIRouter wires repositories, services and middleware into the API
// router. The returned func releases background resources.
func newAPIRouter(ctx context.Context, cfg *config.Config, db *sql.DB, registry *prometheus.Registry) (http.Handler, func()) {
	collector := metrics.NewCollector(registry)

	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)

	userService := user.NewService(userRepo, security.NewTextSanitizer())
	store := session.NewStore(sessionRepo, userRepo, session.StoreConfig{
		SessionLength: cfg.SessionLength(),
		Metrics:       collector,
	})

	verifier := auth.NewGoogleVerifier(ctx, auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
	})
	loginService := auth.NewService(verifier, userService, store, collector)

	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		SessionResolver:   store,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TrustProxyHeaders: cfg.TrustProxyHeaders,

		LoginService:   loginService,
		SessionService: store,
		UserService:    userService,
		HealthChecker:  db,

		MetricsGatherer: registry,
		ExposeOpenAPI:   !cfg.IsProduction(),
	})

	return router, rateLimiter.Stop
}

// runWorker sweeps expired sessions every SessionSweepInterval and serves
// /metrics until ctx ends.
func runWorker(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := newRegistry()
	collector := metrics.NewCollector(registry)
	job := cleanup.NewSweepJob(db, slog.Default(), collector)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metrics.SetupMetricsRoute(registry),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := serveUntilDone(ctx, metricsServer); err != nil {
			slog.Error("worker metrics server failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("worker starting",
		slog.Duration("sweep_interval", cfg.SessionSweepInterval),
		slog.String("metrics_addr", metricsServer.Addr),
	)

	job.Start(ctx, cfg.SessionSweepInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate applies every pending migration.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck is the container probe: it asks the local server for its
// full health and fails unless the answer is 200.
func runHealthcheck(port string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(healthcheckURL(port))
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func healthcheckURL(port string) string {
	return fmt.Sprintf("http://localhost:%s/v1/glb/health/full", port)
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)
	return db, nil
}

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// serveUntilDone runs server until ctx ends, then shuts it down.
func serveUntilDone(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server", slog.String("addr", server.Addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// maskDatabaseURL hides the password of a database URL.
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
