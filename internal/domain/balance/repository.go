package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-tracker/pkg/db"
)

// Account is a stored account statement line
type Account struct {
	ID              int64            `json:"id"`
	BatchID         *uuid.UUID       `json:"batch_id"`
	AccountName     string           `json:"account_name"`
	AccountNumber   *string          `json:"account_number"`
	StatementDate   string           `json:"statement_date"`
	TransactionDate *string          `json:"transaction_date"`
	Description     string           `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal  `json:"balance"`
	AccountType     string           `json:"account_type"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TypeSummary aggregates statement lines of one account type
type TypeSummary struct {
	AccountType    string          `json:"account_type"`
	Count          int64           `json:"count"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	BalanceDisplay string          `json:"total_balance_display"`
}

// Repository handles account queries
type Repository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	SummaryByType(ctx context.Context) ([]TypeSummary, error)
}

// PostgresRepository implements Repository
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a new balance repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// NewRepository accepts any DBTX
func NewRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListAccounts returns statement lines, latest statement first
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]Account, error) {
	query := `
		SELECT id, batch_id, account_name, account_number, statement_date::text,
			transaction_date::text, description, amount::text, balance::text,
			account_type, created_at
		FROM accounts
		ORDER BY statement_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]Account, 0)
	for rows.Next() {
		var a Account
		var amount *string // Nullable
		var balance string
		if err := rows.Scan(
			&a.ID,
			&a.BatchID,
			&a.AccountName,
			&a.AccountNumber,
			&a.StatementDate,
			&a.TransactionDate,
			&a.Description,
			&amount,
			&balance,
			&a.AccountType,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if amount != nil {
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %q: %w", *amount, err)
			}
			a.Amount = &d
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse balance %q: %w", balance, err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// SummaryByType counts statement lines and sums balances per account type
func (r *PostgresRepository) SummaryByType(ctx context.Context) ([]TypeSummary, error) {
	query := `
		SELECT account_type, COUNT(*), COALESCE(SUM(balance), 0)::text
		FROM accounts
		GROUP BY account_type
		ORDER BY account_type
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize accounts: %w", err)
	}
	defer rows.Close()

	summary := make([]TypeSummary, 0)
	for rows.Next() {
		var s TypeSummary
		var total string
		if err := rows.Scan(&s.AccountType, &s.Count, &total); err != nil {
			return nil, fmt.Errorf("failed to scan account summary: %w", err)
		}
		if s.TotalBalance, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse total balance %q: %w", total, err)
		}
		summary = append(summary, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account summary: %w", err)
	}
	return summary, nil
}
