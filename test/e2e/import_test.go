// Package e2etest runs sample bank exports through the whole import
// pipeline: multipart upload, temporary storage, sniffing, mapping,
// post-pass and persistence.
package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	importhandler "github.com/FACorreiaa/finance-tracker/internal/domain/import/handler"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/parser"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/repository"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/service"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
	"github.com/FACorreiaa/finance-tracker/pkg/storage"
)

const testDataDir = "testdata"

// memoryRepo keeps everything the pipeline would write to Postgres.
type memoryRepo struct {
	mu           sync.Mutex
	batches      map[uuid.UUID]*repository.ImportBatch
	transactions []parser.TransactionRecord
	accounts     []parser.AccountRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{batches: make(map[uuid.UUID]*repository.ImportBatch)}
}

func (m *memoryRepo) CreateImportBatch(_ context.Context, b *repository.ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New()
	m.batches[b.ID] = b
	return nil
}

func (m *memoryRepo) FinishImportBatch(_ context.Context, b *repository.ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = b
	return nil
}

func (m *memoryRepo) InsertTransaction(_ context.Context, _ uuid.UUID, rec parser.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, rec)
	return nil
}

func (m *memoryRepo) InsertAccount(_ context.Context, _ uuid.UUID, rec parser.AccountRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append(m.accounts, rec)
	return nil
}

func newService(repo repository.ImportRepository) *service.ImportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewImportService(repo, logger).
		WithClock(func() time.Time { return time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC) })
}

func openTestData(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join(testDataDir, name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDCUTransactions(t *testing.T) {
	svc := newService(nil)

	batch, err := svc.NormalizeTransactions(context.Background(), "dcu_transactions.csv", openTestData(t, "dcu_transactions.csv"))
	require.NoError(t, err)

	assert.Equal(t, sniffer.FormatDCU, batch.Format)
	assert.Equal(t, 4, batch.RowsRead)
	require.Len(t, batch.Records, 3)

	deposit := batch.Records[0]
	assert.Equal(t, "2025-01-03", *deposit.TransactionDate)
	assert.Equal(t, "Deposit", deposit.Type)
	assert.True(t, deposit.Amount.Equal(dec("2150")))
	assert.Equal(t, "R-1001", *deposit.ReferenceNumber)
	assert.Equal(t, parser.DefaultCategory, deposit.Category)

	purchase := batch.Records[1]
	assert.Equal(t, parser.DCUTransactionType, purchase.Type)
	assert.Equal(t, "POS PURCHASE GROCERY #221", purchase.Description)
	assert.Equal(t, "2025-01-10", *purchase.PostDate)

	// transaction date falls back to the post date
	atm := batch.Records[2]
	assert.Equal(t, "2025-01-16", *atm.TransactionDate)
	assert.Nil(t, atm.ReferenceNumber)
}

func TestStandardTransactions_SemicolonWithBOM(t *testing.T) {
	svc := newService(nil)

	batch, err := svc.NormalizeTransactions(context.Background(), "standard_transactions.csv", openTestData(t, "standard_transactions.csv"))
	require.NoError(t, err)

	assert.Equal(t, sniffer.FormatStandard, batch.Format)
	require.Len(t, batch.Records, 3)

	assert.Equal(t, "debit", batch.Records[0].Type)
	assert.Equal(t, "Housing", batch.Records[0].Category)
	assert.True(t, batch.Records[1].Amount.Equal(dec("3200")))

	flowers := batch.Records[2]
	assert.Equal(t, "2025-02-14", *flowers.TransactionDate)
	assert.True(t, flowers.Amount.Equal(dec("-45.50")))
	assert.Equal(t, parser.DefaultCategory, flowers.Category)
}

func TestStandardTransactions_DecimalComma(t *testing.T) {
	svc := newService(nil)

	batch, err := svc.NormalizeTransactions(context.Background(), "european_transactions.csv", openTestData(t, "european_transactions.csv"))
	require.NoError(t, err)

	assert.Equal(t, sniffer.FormatStandard, batch.Format)
	require.Len(t, batch.Records, 3)
	assert.True(t, batch.Records[0].Amount.Equal(dec("-1250")))
	assert.True(t, batch.Records[1].Amount.Equal(dec("3400.50")))
	assert.True(t, batch.Records[2].Amount.Equal(dec("-3.20")))
	assert.Equal(t, parser.DefaultCategory, batch.Records[2].Category)
}

func TestStandardAccounts_Backfill(t *testing.T) {
	svc := newService(nil)

	batch, err := svc.NormalizeAccounts(context.Background(), "standard_accounts.csv", openTestData(t, "standard_accounts.csv"))
	require.NoError(t, err)
	require.Len(t, batch.Records, 3)

	assert.Equal(t, "2025-03-31", batch.Records[0].StatementDate)
	assert.Equal(t, "2025-03-15", batch.Records[1].StatementDate)
	assert.Equal(t, "2025-03-15", batch.Records[2].StatementDate)

	assert.Equal(t, parser.DefaultAccountType, batch.Records[1].AccountType)
	brokerage := batch.Records[2]
	assert.Equal(t, "Investment", brokerage.AccountType)
	assert.Nil(t, brokerage.Amount)
	assert.True(t, brokerage.Balance.Equal(dec("15000")))
}

func multipartFile(t *testing.T, path string) (*bytes.Buffer, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newUploadServer(t *testing.T, repo *memoryRepo) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	h := importhandler.NewImportHandler(newService(repo), store, 1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transactions/upload", h.UploadTransactions)
	mux.HandleFunc("POST /api/accounts/upload", h.UploadAccounts)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, dir
}

func upload(t *testing.T, srv *httptest.Server, route, file string) (int, map[string]any) {
	t.Helper()
	body, ct := multipartFile(t, file)
	resp, err := http.Post(srv.URL+route, ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return resp.StatusCode, got
}

func TestUploadDCUAccounts(t *testing.T) {
	repo := newMemoryRepo()
	srv, dir := newUploadServer(t, repo)

	status, got := upload(t, srv, "/api/accounts/upload", filepath.Join(testDataDir, "DCU_Checking_2025.csv"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully imported 4 account statements", got["message"])
	assert.Equal(t, "dcu", got["format"])

	require.Len(t, repo.accounts, 4)
	for _, a := range repo.accounts {
		assert.Equal(t, "DCU Checking", a.AccountName)
		assert.Equal(t, "2025-01-31", a.StatementDate)
		assert.Equal(t, "0012345678", *a.AccountNumber)
		assert.Equal(t, parser.DefaultAccountType, a.AccountType)
	}
	assert.Nil(t, repo.accounts[2].Amount)
	assert.True(t, repo.accounts[0].Balance.Equal(dec("3410.55")))

	require.Len(t, repo.batches, 1)
	for _, b := range repo.batches {
		assert.Equal(t, repository.BatchStatusCompleted, b.Status)
		assert.Equal(t, 4, b.RowsInserted)
	}

	// only the empty metadata directory is left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.IsDir(), "leftover upload %s", e.Name())
	}
}

func TestUploadTransactions_MixedFormats(t *testing.T) {
	repo := newMemoryRepo()
	srv, _ := newUploadServer(t, repo)

	status, got := upload(t, srv, "/api/transactions/upload", filepath.Join(testDataDir, "dcu_transactions.csv"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), got["count"])
	assert.Equal(t, float64(1), got["dropped"])

	status, got = upload(t, srv, "/api/transactions/upload", filepath.Join(testDataDir, "standard_transactions.csv"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "standard", got["format"])

	assert.Len(t, repo.transactions, 6)
	assert.Len(t, repo.batches, 2)
}

func TestUploadRejectsUnrecognizedHeaders(t *testing.T) {
	repo := newMemoryRepo()
	srv, _ := newUploadServer(t, repo)

	status, got := upload(t, srv, "/api/transactions/upload", filepath.Join(testDataDir, "unknown_bank.csv"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No valid records found in file", got["message"])
	assert.Empty(t, repo.transactions)

	require.Len(t, repo.batches, 1)
	for _, b := range repo.batches {
		assert.Equal(t, repository.BatchStatusFailed, b.Status)
		assert.Equal(t, "unrecognized", b.Format)
	}
}
