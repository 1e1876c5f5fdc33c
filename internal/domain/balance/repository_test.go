package balance

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

func TestListAccounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	batchID := uuid.New()
	now := time.Now()
	cols := []string{
		"id", "batch_id", "account_name", "account_number", "statement_date",
		"transaction_date", "description", "amount", "balance", "account_type", "created_at",
	}
	mock.ExpectQuery(`FROM accounts\s+ORDER BY statement_date DESC`).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), &batchID, "DCU Checking", strPtr("111"), "2025-01-31", strPtr("2025-01-20"), "Coffee", strPtr("-10.00"), "590.00", "Checking", now).
			AddRow(int64(1), &batchID, "DCU Checking", strPtr("111"), "2025-01-31", (*string)(nil), "Fee", (*string)(nil), "590.00", "Checking", now))

	got, err := NewRepository(mock).ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Amount)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(-10)))
	assert.Nil(t, got[1].Amount)
	assert.Nil(t, got[1].TransactionDate)
	assert.Equal(t, "2025-01-31", got[1].StatementDate)
	assert.True(t, got[1].Balance.Equal(decimal.NewFromInt(590)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryByType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`GROUP BY account_type`).
		WillReturnRows(pgxmock.NewRows([]string{"account_type", "count", "total"}).
			AddRow("Checking", int64(4), "2360.00").
			AddRow("Savings", int64(1), "100"))

	got, err := NewRepository(mock).SummaryByType(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].Count)
	assert.True(t, got[0].TotalBalance.Equal(decimal.RequireFromString("2360")))
}

func TestSummaryByType_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`GROUP BY account_type`).WillReturnError(errors.New("timeout"))

	_, err = NewRepository(mock).SummaryByType(context.Background())
	assert.ErrorContains(t, err, "failed to summarize accounts")
}
