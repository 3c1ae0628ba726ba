package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/metrics"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router wires the HTTP API.
type Router struct {
	userHandler        *UserHandler
	transactionHandler *TransactionHandler
	reportHandler      *ReportHandler
	authMiddleware     func(http.Handler) http.Handler
	rateLimiter        *RateLimiter
	metrics            *metrics.Metrics
	metricsPath        string
	health             HealthChecker
	maxBodySize        int64
	logger             zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	UserHandler        *UserHandler
	TransactionHandler *TransactionHandler
	ReportHandler      *ReportHandler
	Authenticator      auth.Authenticator

	// RateLimiter is optional.
	RateLimiter *RateLimiter

	// Metrics is optional; when set, MetricsPath is served.
	Metrics     *metrics.Metrics
	MetricsPath string

	Health      HealthChecker
	MaxBodySize int64
	Logger      zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		userHandler:        config.UserHandler,
		transactionHandler: config.TransactionHandler,
		reportHandler:      config.ReportHandler,
		authMiddleware:     auth.Middleware(config.Authenticator, config.Logger),
		rateLimiter:        config.RateLimiter,
		metrics:            config.Metrics,
		metricsPath:        config.MetricsPath,
		health:             config.Health,
		maxBodySize:        config.MaxBodySize,
		logger:             config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(RequestLogger(rt.logger))
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Instrument)
	if rt.maxBodySize > 0 {
		r.Use(middleware.RequestSize(rt.maxBodySize))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { writeError(w, ErrNotFoundRoute) })
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { writeError(w, ErrMethodNotAllowed) })

	// Health check and metrics (no auth, no rate limit)
	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil && rt.metricsPath != "" {
		r.Method(http.MethodGet, rt.metricsPath, rt.metrics.Handler())
	}

	// Public API
	r.Group(func(r chi.Router) {
		rt.useRateLimit(r)
		r.Post("/users", rt.userHandler.Register)
		r.Post("/login", rt.userHandler.Login)
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(rt.authMiddleware)
		r.Use(annotateUser)
		rt.useRateLimit(r)

		r.Post("/transactions", rt.transactionHandler.Create)
		r.Get("/transactions", rt.transactionHandler.List)
		r.Delete("/transactions/{id}", rt.transactionHandler.Delete)
		r.Get("/report", rt.reportHandler.Get)
	})

	return r
}

func (rt *Router) useRateLimit(r chi.Router) {
	if rt.rateLimiter != nil {
		r.Use(rt.rateLimiter.Handler)
	}
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := rt.health.Health(ctx); err != nil {
			rt.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
