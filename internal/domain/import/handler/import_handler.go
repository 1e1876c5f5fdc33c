package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/finance-tracker/internal/domain/import/service"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
	"github.com/FACorreiaa/finance-tracker/pkg/response"
	"github.com/FACorreiaa/finance-tracker/pkg/storage"
)

const uploadField = "file"

// Importer is the part of the import service the upload endpoints need.
type Importer interface {
	ImportTransactions(ctx context.Context, filename string, r io.Reader) (*importservice.ImportResult, error)
	ImportAccounts(ctx context.Context, filename string, r io.Reader) (*importservice.ImportResult, error)
}

// UploadResponse is the body of a successful upload
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Format  string `json:"format"`
	BatchID string `json:"batch_id"`
	Dropped int    `json:"dropped"`
}

// ImportHandler serves the upload endpoints
type ImportHandler struct {
	importSvc      Importer
	storage        storage.Storage
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importSvc Importer, fileStorage storage.Storage, maxUploadBytes int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importSvc:      importSvc,
		storage:        fileStorage,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadTransactions handles POST /api/transactions/upload
func (h *ImportHandler) UploadTransactions(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, sniffer.KindTransactions, h.importSvc.ImportTransactions)
}

// UploadAccounts handles POST /api/accounts/upload
func (h *ImportHandler) UploadAccounts(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, sniffer.KindAccounts, h.importSvc.ImportAccounts)
}

type importFunc func(ctx context.Context, filename string, r io.Reader) (*importservice.ImportResult, error)

func (h *ImportHandler) upload(w http.ResponseWriter, r *http.Request, kind sniffer.Kind, run importFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		response.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !parser.IsSupportedFile(header.Filename) {
		response.Error(w, http.StatusBadRequest, "Only CSV or XLSX files are allowed")
		return
	}

	stored, err := h.storage.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to store upload", "file", header.Filename, "error", err)
		response.Error(w, http.StatusInternalServerError, "Error uploading file")
		return
	}
	// The temporary file goes away on every path.
	defer func() {
		if err := h.storage.Remove(context.WithoutCancel(r.Context()), stored.ID); err != nil {
			h.logger.Warn("failed to remove temporary upload", "id", stored.ID, "error", err)
		}
	}()

	rc, _, err := h.storage.Open(r.Context(), stored.ID)
	if err != nil {
		h.logger.Error("failed to open stored upload", "id", stored.ID, "error", err)
		response.Error(w, http.StatusInternalServerError, "Error uploading file")
		return
	}
	defer rc.Close()

	result, err := run(r.Context(), header.Filename, rc)
	if err != nil {
		h.writeImportError(w, kind, header.Filename, result, err)
		return
	}

	response.JSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully imported %d %s", result.RowsInserted, noun(kind)),
		Count:   result.RowsInserted,
		Format:  result.Format.String(),
		BatchID: result.BatchID.String(),
		Dropped: result.RowsDropped,
	})
}

func (h *ImportHandler) writeImportError(w http.ResponseWriter, kind sniffer.Kind, filename string, result *importservice.ImportResult, err error) {
	switch {
	case errors.Is(err, importservice.ErrNoRecords):
		response.Error(w, http.StatusBadRequest, "No valid records found in file")
	case errors.Is(err, parser.ErrUnsupportedFile):
		response.Error(w, http.StatusBadRequest, "Only CSV or XLSX files are allowed")
	case errors.Is(err, importservice.ErrReadInput):
		response.Error(w, http.StatusBadRequest, "Error parsing file")
	default:
		inserted := 0
		if result != nil {
			inserted = result.RowsInserted
		}
		h.logger.Error("failed to save import",
			"kind", kind.String(),
			"file", filename,
			"inserted", inserted,
			"error", err,
		)
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Error saving %s to database", noun(kind)))
	}
}

func noun(kind sniffer.Kind) string {
	if kind == sniffer.KindAccounts {
		return "account statements"
	}
	return "transactions"
}
