package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	balancehandler "github.com/FACorreiaa/finance-tracker/internal/domain/balance/handler"
	financehandler "github.com/FACorreiaa/finance-tracker/internal/domain/finance/handler"
	importhandler "github.com/FACorreiaa/finance-tracker/internal/domain/import/handler"
	"github.com/FACorreiaa/finance-tracker/pkg/config"
	"github.com/FACorreiaa/finance-tracker/pkg/metrics"
	"github.com/FACorreiaa/finance-tracker/pkg/middleware"
	"github.com/FACorreiaa/finance-tracker/pkg/response"
)

const (
	generalLimitMessage = "Too many requests, please try again later."
	uploadLimitMessage  = "Too many uploads, please try again later."
)

type routeHandlers struct {
	Finance *financehandler.FinanceHandler
	Import  *importhandler.ImportHandler
	Balance *balancehandler.BalanceHandler
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter builds the HTTP API. The upload routes sit behind a second,
// stricter per-IP limiter on top of the general one.
func NewRouter(cfg config.ServerConfig, observability config.ObservabilityConfig, h routeHandlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if observability.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	general := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, generalLimitMessage, logger)
	uploads := middleware.NewRateLimiter(cfg.UploadLimitRequest, cfg.UploadLimitWindow, uploadLimitMessage, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(general.Handler)
		r.Use(chimw.Timeout(60 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			response.JSON(w, http.StatusOK, healthResponse{
				Status:  "ok",
				Message: "Finance Tracker API is running",
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.Finance.ListTransactions)
			r.Get("/stats", h.Finance.Stats)
			r.Get("/export", h.Finance.Export)
			r.With(uploads.Handler).Post("/upload", h.Import.UploadTransactions)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.Balance.ListAccounts)
			r.Get("/summary", h.Balance.Summary)
			r.With(uploads.Handler).Post("/upload", h.Import.UploadAccounts)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})

	return r
}
