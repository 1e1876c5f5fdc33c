package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/finance-tracker/internal/domain/balance"
	"github.com/FACorreiaa/finance-tracker/pkg/response"
)

// AccountService is what the handler needs from balance.Service
type AccountService interface {
	ListAccounts(ctx context.Context, accountNumber string) ([]balance.Account, error)
	GetSummary(ctx context.Context) (*balance.SummaryResult, error)
}

// BalanceHandler serves the /api/accounts read endpoints
type BalanceHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(svc AccountService, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{svc: svc, logger: logger}
}

// ListAccounts handles GET /api/accounts[?account_number=...]
func (h *BalanceHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context(), r.URL.Query().Get("account_number"))
	if err != nil {
		h.logger.Error("failed to list accounts", "error", err)
		response.Error(w, http.StatusInternalServerError, "Error fetching accounts")
		return
	}
	response.OK(w, accounts)
}

// Summary handles GET /api/accounts/summary
func (h *BalanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to summarize accounts", "error", err)
		response.Error(w, http.StatusInternalServerError, "Error fetching account summary")
		return
	}
	response.OK(w, summary)
}
