// Package balance reports on imported account statements.
package balance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-tracker/pkg/money"
)

// Service handles account business logic
type Service struct {
	repo      Repository
	formatter *money.Formatter
	logger    *slog.Logger
}

// NewService creates a new balance service
func NewService(repo Repository, formatter *money.Formatter, logger *slog.Logger) *Service {
	return &Service{repo: repo, formatter: formatter, logger: logger}
}

// SummaryResult holds the per-type rows plus their grand total, rounded to
// the display currency's minor unit
type SummaryResult struct {
	Types          []TypeSummary   `json:"types"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	BalanceDisplay string          `json:"total_balance_display"`
	Currency       string          `json:"currency"`
}

// ListAccounts returns statement lines, optionally only those of one
// account number.
func (s *Service) ListAccounts(ctx context.Context, accountNumber string) ([]Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if accountNumber == "" {
		return accounts, nil
	}

	filtered := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.AccountNumber != nil && *a.AccountNumber == accountNumber {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// GetSummary groups balances by account type
func (s *Service) GetSummary(ctx context.Context) (*SummaryResult, error) {
	types, err := s.repo.SummaryByType(ctx)
	if err != nil {
		return nil, err
	}

	total := money.Zero(s.formatter.Currency())
	for i := range types {
		amount := s.formatter.Money(types[i].TotalBalance)
		types[i].BalanceDisplay = amount.Display()
		if total, err = total.Add(amount); err != nil {
			return nil, fmt.Errorf("failed to total account balances: %w", err)
		}
	}

	s.logger.Debug("computed account summary", "types", len(types))
	return &SummaryResult{
		Types:          types,
		TotalBalance:   total.ToDecimal(),
		BalanceDisplay: total.Display(),
		Currency:       s.formatter.Currency(),
	}, nil
}
