package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/dda/internal/metrics"
	"github.com/hitoshi/dda/internal/middleware"
	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/validation"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	// Middleware
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TrustProxyHeaders bool

	// Services
	LoginService   LoginServiceInterface
	SessionService SessionServiceInterface
	UserService    UserServiceInterface
	HealthChecker  Pinger

	// Optional surfaces
	MetricsGatherer prometheus.Gatherer
	ExposeOpenAPI   bool
}

// NewRouter returns the API router.
//
// Middleware order:
//
//	Transaction → Recovery → SecurityHeaders → CORS → [RealIP] → Authentication → RateLimit(General)
//
// The login route additionally passes RateLimit(Login).
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewTransactionMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewAuthenticationMiddleware(deps.SessionResolver))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleServiceError(w, r, &model.NotFoundError{Resource: "Route", ID: r.URL.Path})
	})

	validate := validation.New()
	authHandler := NewAuthHandler(deps.LoginService, deps.SessionService, validate)
	userHandler := NewUserHandler(deps.UserService, validate)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/glb", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.With(deps.RateLimiter.LoginMiddleware()).Post("/google", authHandler.Login)
				r.Get("/me", authHandler.Me)
				r.Delete("/logout", authHandler.Logout)
			})
			r.Get("/health/full", healthHandler.Full)
		})

		r.Get("/user/{user_id}", userHandler.GetUserProfile)
		r.Patch("/user/{user_id}", userHandler.UpdateUserProfile)

		if deps.ExposeOpenAPI {
			r.Get("/openapi.json", ServeOpenAPI)
		}
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	return r
}
