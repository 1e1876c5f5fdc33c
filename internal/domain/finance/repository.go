package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-tracker/pkg/db"
)

// Transaction is a stored transaction row.
type Transaction struct {
	ID              int64           `json:"id" csv:"id"`
	BatchID         *uuid.UUID      `json:"batch_id" csv:"batch_id"`
	TransactionDate *string         `json:"transaction_date" csv:"transaction_date"`
	PostDate        *string         `json:"post_date" csv:"post_date"`
	Description     string          `json:"description" csv:"description"`
	Amount          decimal.Decimal `json:"amount" csv:"amount"`
	Type            string          `json:"type" csv:"type"`
	Category        string          `json:"category" csv:"category"`
	Memo            string          `json:"memo" csv:"memo"`
	ReferenceNumber *string         `json:"reference_number" csv:"reference_number"`
	CreatedAt       time.Time       `json:"created_at" csv:"created_at"`
}

// CategoryTotal is the summed amount for one (category, type) pair.
type CategoryTotal struct {
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Total    decimal.Decimal `json:"total"`
	Display  string          `json:"total_display"`
}

// Repository reads stored transactions
type Repository interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
	CreditDebitTotals(ctx context.Context) (credit, debit decimal.Decimal, err error)
	CategoryTotals(ctx context.Context) ([]CategoryTotal, error)
}

// PostgresRepository implements Repository
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a repository backed by the pool
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// NewRepository accepts any DBTX
func NewRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListTransactions returns every transaction, newest transaction date first.
// Rows with only a post date sort last.
func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]Transaction, error) {
	query := `
		SELECT id, batch_id, transaction_date::text, post_date::text, description,
			amount::text, type, category, memo, reference_number, created_at
		FROM transactions
		ORDER BY transaction_date DESC NULLS LAST, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		var amount string
		if err := rows.Scan(
			&t.ID,
			&t.BatchID,
			&t.TransactionDate,
			&t.PostDate,
			&t.Description,
			&amount,
			&t.Type,
			&t.Category,
			&t.Memo,
			&t.ReferenceNumber,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// CreditDebitTotals sums amounts whose type is credit or debit, ignoring case.
func (r *PostgresRepository) CreditDebitTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE lower(type) = 'credit'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE lower(type) = 'debit'), 0)::text
		FROM transactions
	`
	var creditStr, debitStr string
	if err := r.db.QueryRow(ctx, query).Scan(&creditStr, &debitStr); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum credit and debit: %w", err)
	}

	credit, err := decimal.NewFromString(creditStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse credit total: %w", err)
	}
	debit, err := decimal.NewFromString(debitStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse debit total: %w", err)
	}
	return credit, debit, nil
}

func (r *PostgresRepository) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	query := `
		SELECT category, type, SUM(amount)::text
		FROM transactions
		GROUP BY category, type
		ORDER BY category, type
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to total categories: %w", err)
	}
	defer rows.Close()

	totals := make([]CategoryTotal, 0)
	for rows.Next() {
		var c CategoryTotal
		var total string
		if err := rows.Scan(&c.Category, &c.Type, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		if c.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse category total %q: %w", total, err)
		}
		totals = append(totals, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}
	return totals, nil
}
