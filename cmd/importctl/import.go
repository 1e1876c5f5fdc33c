package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	importrepo "github.com/FACorreiaa/finance-tracker/internal/domain/import/repository"
	importservice "github.com/FACorreiaa/finance-tracker/internal/domain/import/service"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
	"github.com/FACorreiaa/finance-tracker/pkg/config"
	"github.com/FACorreiaa/finance-tracker/pkg/db"
)

type importSummary struct {
	File   string                      `json:"file"`
	Format string                      `json:"format"`
	Result *importservice.ImportResult `json:"result,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

func newImportCommand(logger loggerFunc) *cobra.Command {
	var kind string
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Normalize files and store them using the database from the environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger(cmd)

			database, err := db.New(db.Config{
				DSN:      cfg.Database.DSN(),
				MaxConns: 2,
			}, log)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return err
			}

			svc := importservice.NewImportService(importrepo.NewPostgresImportRepository(database.Pool), log)
			return runImport(cmd, svc, k, args, keepGoing)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "transactions", "record kind: transactions or accounts")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue with the next file after a failure")

	return cmd
}

// Importer is satisfied by *importservice.ImportService
type Importer interface {
	ImportTransactions(ctx context.Context, filename string, r io.Reader) (*importservice.ImportResult, error)
	ImportAccounts(ctx context.Context, filename string, r io.Reader) (*importservice.ImportResult, error)
}

func runImport(cmd *cobra.Command, svc Importer, kind sniffer.Kind, paths []string, keepGoing bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	var failed int

	for _, path := range paths {
		summary, err := importFile(cmd.Context(), svc, kind, path)
		if encErr := enc.Encode(summary); encErr != nil {
			return encErr
		}
		if err != nil {
			failed++
			if !keepGoing {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func importFile(ctx context.Context, svc Importer, kind sniffer.Kind, path string) (importSummary, error) {
	summary := importSummary{File: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		summary.Error = err.Error()
		return summary, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	run := svc.ImportTransactions
	if kind == sniffer.KindAccounts {
		run = svc.ImportAccounts
	}

	result, err := run(ctx, summary.File, f)
	summary.Result = result
	if result != nil {
		summary.Format = result.Format.String()
	}
	if err != nil {
		summary.Error = err.Error()
		return summary, fmt.Errorf("importing %s: %w", path, err)
	}
	return summary, nil
}
