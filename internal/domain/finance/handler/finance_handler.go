// Package handler exposes transaction listing, statistics and export over HTTP.
package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/finance-tracker/internal/domain/finance"
	"github.com/FACorreiaa/finance-tracker/pkg/response"
)

const exportFilename = "transactions.csv"

// FinanceService is what the handler needs from finance.Service
type FinanceService interface {
	ListTransactions(ctx context.Context) ([]finance.Transaction, error)
	GetStats(ctx context.Context) (*finance.Stats, error)
	ExportCSV(ctx context.Context, w io.Writer) (int, error)
}

// FinanceHandler serves /api/transactions read endpoints
type FinanceHandler struct {
	svc    FinanceService
	logger *slog.Logger
}

// NewFinanceHandler constructs a new handler.
func NewFinanceHandler(svc FinanceService, logger *slog.Logger) *FinanceHandler {
	return &FinanceHandler{svc: svc, logger: logger}
}

// ListTransactions handles GET /api/transactions
func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error("failed to list transactions", "error", err)
		response.Error(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}
	response.OK(w, transactions)
}

// Stats handles GET /api/transactions/stats
func (h *FinanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute transaction stats", "error", err)
		response.Error(w, http.StatusInternalServerError, "Error fetching statistics")
		return
	}
	response.OK(w, stats)
}

// Export handles GET /api/transactions/export. The body is buffered so a
// failure can still be reported as JSON.
func (h *FinanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.svc.ExportCSV(r.Context(), &buf)
	if err != nil {
		h.logger.Error("failed to export transactions", "error", err)
		response.Error(w, http.StatusInternalServerError, "Error exporting transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export body", "error", err)
	}
}
