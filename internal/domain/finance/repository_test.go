package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var transactionColumns = []string{
	"id", "batch_id", "transaction_date", "post_date", "description",
	"amount", "type", "category", "memo", "reference_number", "created_at",
}

func TestListTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	batchID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, batch_id, transaction_date::text`).
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow(int64(2), &batchID, strPtr("2024-02-01"), (*string)(nil), "Paycheck", "1200.00", "credit", "Income", "", (*string)(nil), now).
			AddRow(int64(1), &batchID, (*string)(nil), strPtr("2024-01-03"), "Coffee", "-4.50", "debit", "Uncategorized", "", strPtr("R1"), now))

	got, err := NewRepository(mock).ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-02-01", *got[0].TransactionDate)
	assert.Nil(t, got[0].PostDate)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("1200")))
	assert.Nil(t, got[1].TransactionDate)
	assert.Equal(t, "R1", *got[1].ReferenceNumber)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("-4.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, batch_id`).WillReturnRows(pgxmock.NewRows(transactionColumns))

	got, err := NewRepository(mock).ListTransactions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListTransactions_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, batch_id`).WillReturnError(errors.New("conn refused"))

	_, err = NewRepository(mock).ListTransactions(context.Background())
	assert.ErrorContains(t, err, "failed to list transactions")
}

func TestCreditDebitTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`lower\(type\) = 'credit'`).
		WillReturnRows(pgxmock.NewRows([]string{"credit", "debit"}).AddRow("1500.25", "320.00"))

	credit, debit, err := NewRepository(mock).CreditDebitTotals(context.Background())
	require.NoError(t, err)
	assert.True(t, credit.Equal(decimal.RequireFromString("1500.25")))
	assert.True(t, debit.Equal(decimal.RequireFromString("320")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`GROUP BY category, type`).
		WillReturnRows(pgxmock.NewRows([]string{"category", "type", "total"}).
			AddRow("Food", "debit", "45.10").
			AddRow("Uncategorized", "DCU", "-12"))

	got, err := NewRepository(mock).CategoryTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Food", got[0].Category)
	assert.Equal(t, "DCU", got[1].Type)
	assert.True(t, got[1].Total.Equal(decimal.NewFromInt(-12)))
}
