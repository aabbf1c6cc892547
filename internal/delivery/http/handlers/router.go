package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	RPS      float64
	Burst    int
	Timeout  time.Duration
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// GatewayToken guards the manual fund route. Empty leaves it unmounted.
	GatewayToken string
}

func NewRouter(h *EscrowHandler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RPS, cfg.Burst))

		r.Post("/escrows", h.Create)
		r.Route("/escrows/{escrowID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Get("/events", h.History)
			r.Get("/verify", h.VerifyHistory)
			if cfg.GatewayToken != "" {
				r.With(RequireGatewayToken(cfg.GatewayToken)).Post("/fund", h.Fund)
			}
			r.Post("/confirm-delivery", h.ConfirmDelivery)
			r.Post("/release", h.Release)
			r.Post("/refund", h.RequestRefund)
			r.Post("/dispute", h.Dispute)
		})
		r.Get("/users/{userID}/escrows", h.ListForUser)
	})
	return r
}
