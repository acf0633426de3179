package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"realdream/internal/core/port"
	"realdream/internal/metrics"
)

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the reward use case, a logger for structured logging and the
// authenticator that turns bearer tokens into caller accounts. Routes are
// registered on a chi.Router for convenient method handling.
type Handler struct {
	svc     port.RewardUseCase
	logger  *slog.Logger
	auth    *Authenticator
	metrics *metrics.Metrics
	router  chi.Router
}

// Options configures optional parts of the HTTP surface.
type Options struct {
	// Metrics records request counters. Nil disables them.
	Metrics *metrics.Metrics
	// MetricsPath mounts the Prometheus endpoint when non-empty and Metrics
	// is set.
	MetricsPath string
}

// NewHandler creates a handler with all routes configured. Read routes are
// public; every mutating route requires a bearer token whose subject becomes
// the caller of the operation.
func NewHandler(svc port.RewardUseCase, logger *slog.Logger, auth *Authenticator, opts Options) *Handler {
	h := &Handler{svc: svc, logger: logger, auth: auth, metrics: opts.Metrics}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/healthz", h.handleHealthz)
	if opts.Metrics != nil && opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Get("/campaigns/{id}/tokens", h.handleCampaignTokens)
		r.Get("/campaigns/{id}/payouts", h.handleCampaignPayouts)
		r.Get("/tokens/{id}", h.handleGetToken)
		r.Get("/tokens/{id}/pending", h.handlePending)
		r.Get("/tokens/{id}/approved", h.handleGetApproved)
		r.Get("/tokens/{id}/royalty", h.handleRoyaltyInfo)
		r.Get("/accounts/{addr}", h.handleAccount)
		r.Get("/accounts/{addr}/operators/{operator}", h.handleIsApprovedForAll)
		r.Get("/status", h.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Put("/campaigns/{id}/metadata-base", h.handleSetMetadataBase)
			r.Put("/campaigns/{id}/asset-reference", h.handleSetAssetReference)
			r.Post("/campaigns/{id}/mint", h.handleMint)
			r.Post("/campaigns/{id}/fund", h.handleFund)

			r.Post("/tokens/{id}/release", h.handleRelease)
			r.Post("/tokens/{id}/transfer", h.handleTransfer)
			r.Post("/tokens/{id}/approve", h.handleApprove)
			r.Put("/operators/{operator}", h.handleSetApprovalForAll)

			r.Put("/royalty", h.handleSetRoyalty)
			r.Delete("/royalty", h.handleClearRoyalty)

			r.Post("/pause", h.handlePause)
			r.Post("/unpause", h.handleUnpause)
			r.Post("/payments", h.handlePayment)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// instrument records one counter and latency sample per request, labeled
// with the matched route pattern so ids do not explode cardinality.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveHTTP(route, r.Method, strconv.Itoa(status), time.Since(start).Seconds())
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
