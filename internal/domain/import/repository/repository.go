// Package repository persists normalized import batches to Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/parser"
	"github.com/FACorreiaa/finance-tracker/pkg/db"
)

const (
	BatchStatusRunning   = "running"
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
)

// ImportBatch is the bookkeeping row written for every upload.
type ImportBatch struct {
	ID           uuid.UUID
	Kind         string
	FileName     string
	Format       string
	Status       string
	RowsRead     int
	RowsRetained int
	RowsDropped  int
	RowsInserted int
	Error        *string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// ImportRepository stores canonical records one at a time. There is no
// batch transaction: a failure leaves earlier inserts committed.
type ImportRepository interface {
	CreateImportBatch(ctx context.Context, batch *ImportBatch) error
	FinishImportBatch(ctx context.Context, batch *ImportBatch) error
	InsertTransaction(ctx context.Context, batchID uuid.UUID, rec parser.TransactionRecord) error
	InsertAccount(ctx context.Context, batchID uuid.UUID, rec parser.AccountRecord) error
}

// PostgresImportRepository implements ImportRepository
type PostgresImportRepository struct {
	db db.DBTX
}

// NewPostgresImportRepository creates a new repository backed by the pool
func NewPostgresImportRepository(pool *pgxpool.Pool) *PostgresImportRepository {
	return &PostgresImportRepository{db: pool}
}

// NewImportRepository accepts any DBTX, e.g. a transaction or a mock pool
func NewImportRepository(conn db.DBTX) *PostgresImportRepository {
	return &PostgresImportRepository{db: conn}
}

func (r *PostgresImportRepository) CreateImportBatch(ctx context.Context, batch *ImportBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.Status == "" {
		batch.Status = BatchStatusRunning
	}

	query := `
		INSERT INTO import_batches (id, kind, file_name, format, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		batch.ID, batch.Kind, batch.FileName, batch.Format, batch.Status,
	).Scan(&batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	return nil
}

func (r *PostgresImportRepository) FinishImportBatch(ctx context.Context, batch *ImportBatch) error {
	query := `
		UPDATE import_batches
		SET format = $2, status = $3, rows_read = $4, rows_retained = $5,
			rows_dropped = $6, rows_inserted = $7, error = $8, finished_at = now()
		WHERE id = $1
		RETURNING finished_at
	`
	err := r.db.QueryRow(ctx, query,
		batch.ID, batch.Format, batch.Status, batch.RowsRead, batch.RowsRetained,
		batch.RowsDropped, batch.RowsInserted, batch.Error,
	).Scan(&batch.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to finish import batch: %w", err)
	}
	return nil
}

func (r *PostgresImportRepository) InsertTransaction(ctx context.Context, batchID uuid.UUID, rec parser.TransactionRecord) error {
	query := `
		INSERT INTO transactions (
			batch_id, transaction_date, post_date, description, amount,
			type, category, memo, reference_number
		) VALUES ($1, $2::date, $3::date, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		batchID,
		rec.TransactionDate,
		rec.PostDate,
		rec.Description,
		rec.Amount,
		rec.Type,
		rec.Category,
		rec.Memo,
		rec.ReferenceNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresImportRepository) InsertAccount(ctx context.Context, batchID uuid.UUID, rec parser.AccountRecord) error {
	query := `
		INSERT INTO accounts (
			batch_id, account_name, account_number, statement_date, transaction_date,
			description, amount, balance, account_type
		) VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		batchID,
		rec.AccountName,
		rec.AccountNumber,
		rec.StatementDate,
		rec.TransactionDate,
		rec.Description,
		rec.Amount,
		rec.Balance,
		rec.AccountType,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}
