package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reward-ledger/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the ledger use case and a logger for structured logging. Routes
// are registered on a chi.Router; callers are identified by bearer tokens
// when a TokenAuth is configured.
type Handler struct {
	svc     port.LedgerUseCase
	logger  *slog.Logger
	router  chi.Router
	auth    *TokenAuth
	metrics http.Handler
	mws     []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithTokenAuth enables bearer token authentication of callers.
func WithTokenAuth(a *TokenAuth) Option {
	return func(h *Handler) { h.auth = a }
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithMiddleware appends router level middleware.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.mws = append(h.mws, mws...) }
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.LedgerUseCase, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(h.mws...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if h.auth != nil {
			r.Use(h.auth.Middleware)
		}
		r.Post("/initialize", h.handleInitialize)
		r.Get("/admin", h.handleGetAdmin)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/", h.handleActiveCampaigns)
			r.Get("/count", h.handleCampaignCount)
			r.Get("/lookup", h.handleLookupCampaign)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Patch("/status", h.handleUpdateStatus)
				r.Post("/shutdown", h.handleShutdown)
				r.Post("/distributions", h.handleDistribute)
				r.Post("/claims", h.handleClaim)
			})
		})

		r.Route("/users/{user}", func(r chi.Router) {
			r.Post("/claims", h.handleClaimAll)
			r.Get("/rewards", h.handleUserRewards)
			r.Get("/rewards/{id}", h.handleUserReward)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
