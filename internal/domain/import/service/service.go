// Package service provides the import orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/parser"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/repository"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
	"github.com/FACorreiaa/finance-tracker/pkg/metrics"
)

var (
	// ErrNoRecords means the upload produced zero records; nothing is persisted.
	ErrNoRecords = errors.New("no valid records found in file")
	// ErrReadInput means the file stream failed mid-way; the whole batch is rejected.
	ErrReadInput = errors.New("failed to read input")
)

var tracer = otel.Tracer("github.com/FACorreiaa/finance-tracker/internal/domain/import/service")

// ImportResult contains the result of an import operation
type ImportResult struct {
	BatchID      uuid.UUID            `json:"batch_id"`
	Kind         sniffer.Kind         `json:"-"`
	Format       sniffer.SourceFormat `json:"-"`
	RowsRead     int                  `json:"rows_read"`
	RowsRetained int                  `json:"rows_retained"`
	RowsDropped  int                  `json:"rows_dropped"`
	RowsInserted int                  `json:"rows_inserted"`
}

// TransactionBatch is the normalized content of one transactions upload.
type TransactionBatch struct {
	Format      sniffer.SourceFormat
	Fingerprint string
	RowsRead    int
	Records     []parser.TransactionRecord
}

// AccountBatch is the normalized and finalized content of one accounts upload.
type AccountBatch struct {
	Format      sniffer.SourceFormat
	Fingerprint string
	RowsRead    int
	Records     []parser.AccountRecord
}

// ImportService orchestrates normalization and persistence of uploads
type ImportService struct {
	repo    repository.ImportRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewImportService creates a new import service. repo may be nil when only
// the Normalize operations are used.
func NewImportService(repo repository.ImportRepository, logger *slog.Logger) *ImportService {
	return &ImportService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithMetrics adds Prometheus counters to the import service
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// WithClock overrides the clock used for statement date backfill
func (s *ImportService) WithClock(now func() time.Time) *ImportService {
	s.now = now
	return s
}

// NormalizeTransactions reads, sniffs and maps a transactions upload.
func (s *ImportService) NormalizeTransactions(ctx context.Context, filename string, r io.Reader) (*TransactionBatch, error) {
	ctx, span := tracer.Start(ctx, "import.NormalizeTransactions", trace.WithAttributes(attribute.String("file.name", filename)))
	defer span.End()

	src, format, err := s.open(filename, r, sniffer.KindTransactions)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer src.Close()

	mapper := parser.NewTransactionMapper(format, s.logger.With("file", filename))
	batch := &TransactionBatch{Format: format, Fingerprint: sniffer.Fingerprint(src.Header())}

	rows, err := readRows(ctx, src)
	batch.RowsRead = len(rows)
	if err == nil {
		mapper.DetectAmountFormat(rows)
		for _, row := range rows {
			if rec, ok := mapper.Map(row); ok {
				batch.Records = append(batch.Records, rec)
			}
		}
	}
	span.SetAttributes(
		attribute.String("import.format", format.String()),
		attribute.Int("import.rows_read", batch.RowsRead),
		attribute.Int("import.rows_retained", len(batch.Records)),
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(batch.Records) == 0 {
		recordSpanError(span, ErrNoRecords)
		return batch, ErrNoRecords
	}
	return batch, nil
}

// NormalizeAccounts reads, sniffs and maps an accounts upload, then fills
// statement dates across the whole batch.
func (s *ImportService) NormalizeAccounts(ctx context.Context, filename string, r io.Reader) (*AccountBatch, error) {
	ctx, span := tracer.Start(ctx, "import.NormalizeAccounts", trace.WithAttributes(attribute.String("file.name", filename)))
	defer span.End()

	src, format, err := s.open(filename, r, sniffer.KindAccounts)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer src.Close()

	mapper := parser.NewAccountMapper(format, filename, s.logger.With("file", filename))
	batch := &AccountBatch{Format: format, Fingerprint: sniffer.Fingerprint(src.Header())}

	var mapped []parser.AccountRecord
	rows, err := readRows(ctx, src)
	batch.RowsRead = len(rows)
	if err == nil {
		mapper.DetectAmountFormat(rows)
		for _, row := range rows {
			if rec, ok := mapper.Map(row); ok {
				mapped = append(mapped, rec)
			}
		}
	}
	span.SetAttributes(
		attribute.String("import.format", format.String()),
		attribute.Int("import.rows_read", batch.RowsRead),
		attribute.Int("import.rows_retained", len(mapped)),
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(mapped) == 0 {
		recordSpanError(span, ErrNoRecords)
		return batch, ErrNoRecords
	}

	batch.Records = parser.FinalizeAccounts(format, mapped, s.now())
	return batch, nil
}

// ImportTransactions normalizes a transactions upload and stores every record.
func (s *ImportService) ImportTransactions(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	batch, err := s.NormalizeTransactions(ctx, filename, r)
	result := &ImportResult{Kind: sniffer.KindTransactions}
	if batch != nil {
		result.Format = batch.Format
		result.RowsRead = batch.RowsRead
		result.RowsRetained = len(batch.Records)
		result.RowsDropped = batch.RowsRead - len(batch.Records)
	}
	if err != nil {
		s.reject(ctx, filename, result, err, start)
		return result, err
	}

	records := batch.Records
	err = s.persist(ctx, filename, result, start, len(records), func(ctx context.Context, batchID uuid.UUID, i int) error {
		return s.repo.InsertTransaction(ctx, batchID, records[i])
	})
	return result, err
}

// ImportAccounts normalizes an accounts upload and stores every record.
func (s *ImportService) ImportAccounts(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	batch, err := s.NormalizeAccounts(ctx, filename, r)
	result := &ImportResult{Kind: sniffer.KindAccounts}
	if batch != nil {
		result.Format = batch.Format
		result.RowsRead = batch.RowsRead
		result.RowsRetained = len(batch.Records)
		result.RowsDropped = batch.RowsRead - len(batch.Records)
	}
	if err != nil {
		s.reject(ctx, filename, result, err, start)
		return result, err
	}

	records := batch.Records
	err = s.persist(ctx, filename, result, start, len(records), func(ctx context.Context, batchID uuid.UUID, i int) error {
		return s.repo.InsertAccount(ctx, batchID, records[i])
	})
	return result, err
}

// open selects a row source for the file and sniffs its header once.
func (s *ImportService) open(filename string, r io.Reader, kind sniffer.Kind) (parser.RowSource, sniffer.SourceFormat, error) {
	src, err := parser.OpenSource(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, sniffer.ErrEmptyFile):
			return nil, sniffer.FormatUnrecognized, fmt.Errorf("%w: %w", ErrNoRecords, err)
		case errors.Is(err, parser.ErrUnsupportedFile):
			return nil, sniffer.FormatUnrecognized, err
		default:
			return nil, sniffer.FormatUnrecognized, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
	}

	format := sniffer.Sniff(kind, src.Header())
	s.logger.Info("detected import format",
		"file", filename,
		"kind", kind.String(),
		"format", format.String(),
		"fingerprint", sniffer.Fingerprint(src.Header()),
	)
	if format == sniffer.FormatUnrecognized {
		s.logger.Warn("unrecognized file format, rows will be skipped", "file", filename, "headers", src.Header())
	}
	return src, format, nil
}

// readRows collects every data row in file order. A read error discards
// the rows read so far.
func readRows(ctx context.Context, src parser.RowSource) ([]parser.RawRow, error) {
	var rows []parser.RawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		rows = append(rows, row)
	}
}

// persist writes records one at a time. A failing insert stops the loop and
// earlier inserts stay committed.
func (s *ImportService) persist(
	ctx context.Context,
	filename string,
	result *ImportResult,
	start time.Time,
	n int,
	insert func(ctx context.Context, batchID uuid.UUID, i int) error,
) error {
	ctx, span := tracer.Start(ctx, "import.Persist", trace.WithAttributes(
		attribute.String("import.kind", result.Kind.String()),
		attribute.Int("import.records", n),
	))
	defer span.End()

	batch := &repository.ImportBatch{
		Kind:     result.Kind.String(),
		FileName: filename,
		Format:   result.Format.String(),
	}
	if err := s.repo.CreateImportBatch(ctx, batch); err != nil {
		recordSpanError(span, err)
		s.recordMetrics(result, "failed", start)
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	result.BatchID = batch.ID

	var insertErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			insertErr = err
			break
		}
		if err := insert(ctx, batch.ID, i); err != nil {
			insertErr = fmt.Errorf("failed to insert record %d of %d: %w", i+1, n, err)
			break
		}
		result.RowsInserted++
	}

	status := repository.BatchStatusCompleted
	if insertErr != nil {
		status = repository.BatchStatusFailed
		recordSpanError(span, insertErr)
		s.logger.Error("import stopped after partial insert",
			"batchID", batch.ID,
			"inserted", result.RowsInserted,
			"total", n,
			"error", insertErr,
		)
	}
	s.finishBatch(ctx, batch, result, status, insertErr)
	s.recordMetrics(result, status, start)

	if insertErr == nil {
		s.logger.Info("import completed",
			"batchID", batch.ID,
			"kind", result.Kind.String(),
			"format", result.Format.String(),
			"inserted", result.RowsInserted,
			"dropped", result.RowsDropped,
		)
	}
	return insertErr
}

// reject records a batch that failed before any record was stored.
func (s *ImportService) reject(ctx context.Context, filename string, result *ImportResult, cause error, start time.Time) {
	s.logger.Warn("import rejected",
		"file", filename,
		"kind", result.Kind.String(),
		"format", result.Format.String(),
		"rowsRead", result.RowsRead,
		"error", cause,
	)
	s.recordMetrics(result, "rejected", start)
	if s.repo == nil {
		return
	}

	batch := &repository.ImportBatch{
		Kind:     result.Kind.String(),
		FileName: filename,
		Format:   result.Format.String(),
	}
	if err := s.repo.CreateImportBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to record rejected import batch", "error", err)
		return
	}
	result.BatchID = batch.ID
	s.finishBatch(ctx, batch, result, repository.BatchStatusFailed, cause)
}

func (s *ImportService) finishBatch(ctx context.Context, batch *repository.ImportBatch, result *ImportResult, status string, cause error) {
	batch.Status = status
	batch.RowsRead = result.RowsRead
	batch.RowsRetained = result.RowsRetained
	batch.RowsDropped = result.RowsDropped
	batch.RowsInserted = result.RowsInserted
	if cause != nil {
		msg := cause.Error()
		batch.Error = &msg
	}
	// The upload context may already be cancelled; bookkeeping still runs.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.FinishImportBatch(finishCtx, batch); err != nil {
		s.logger.Warn("failed to finish import batch", "batchID", batch.ID, "error", err)
	}
}

func (s *ImportService) recordMetrics(result *ImportResult, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	kind := result.Kind.String()
	s.metrics.RecordImport(kind, result.Format.String(), status, time.Since(start))
	s.metrics.RecordRows(kind, "retained", result.RowsRetained)
	s.metrics.RecordRows(kind, "dropped", result.RowsDropped)
	s.metrics.RecordRows(kind, "inserted", result.RowsInserted)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
