// Package finance serves read access to imported transactions: listing,
// credit/debit statistics and CSV export.
package finance

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/finance-tracker/pkg/money"
)

var tracer = otel.Tracer("github.com/FACorreiaa/finance-tracker/internal/domain/finance")

// Stats mirrors the shape the dashboard consumes.
type Stats struct {
	TotalCredit        decimal.Decimal `json:"totalCredit"`
	TotalDebit         decimal.Decimal `json:"totalDebit"`
	Balance            decimal.Decimal `json:"balance"`
	TotalCreditDisplay string          `json:"totalCreditDisplay"`
	TotalDebitDisplay  string          `json:"totalDebitDisplay"`
	BalanceDisplay     string          `json:"balanceDisplay"`
	Currency           string          `json:"currency"`
	CategoryStats      []CategoryTotal `json:"categoryStats"`
}

// Service handles transaction reporting
type Service struct {
	repo      Repository
	formatter *money.Formatter
	logger    *slog.Logger
}

// NewService creates a new finance service
func NewService(repo Repository, formatter *money.Formatter, logger *slog.Logger) *Service {
	return &Service{repo: repo, formatter: formatter, logger: logger}
}

func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	ctx, span := tracer.Start(ctx, "finance.ListTransactions")
	defer span.End()

	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("transactions.count", len(transactions)))
	return transactions, nil
}

// GetStats computes balance = credit - debit plus per-category totals.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "finance.GetStats")
	defer span.End()

	credit, debit, err := s.repo.CreditDebitTotals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	categories, err := s.repo.CategoryTotals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for i := range categories {
		categories[i].Display = s.formatter.Format(categories[i].Total)
	}

	balance := credit.Sub(debit)
	return &Stats{
		TotalCredit:        credit,
		TotalDebit:         debit,
		Balance:            balance,
		TotalCreditDisplay: s.formatter.Format(credit),
		TotalDebitDisplay:  s.formatter.Format(debit),
		BalanceDisplay:     s.formatter.Format(balance),
		Currency:           s.formatter.Currency(),
		CategoryStats:      categories,
	}, nil
}

// ExportCSV writes every stored transaction to w and returns the row count.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return 0, err
	}
	if err := gocsv.Marshal(&transactions, w); err != nil {
		return 0, fmt.Errorf("failed to write transactions csv: %w", err)
	}
	s.logger.Info("exported transactions", "count", len(transactions))
	return len(transactions), nil
}
