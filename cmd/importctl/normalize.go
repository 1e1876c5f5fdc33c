package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	importservice "github.com/FACorreiaa/finance-tracker/internal/domain/import/service"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
)

const (
	outputJSON = "json"
	outputCSV  = "csv"
)

type loggerFunc func(cmd *cobra.Command) *slog.Logger

func newNormalizeCommand(logger loggerFunc) *cobra.Command {
	var kind string
	var output string
	var today string

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Print the canonical records of a CSV or XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			if output != outputJSON && output != outputCSV {
				return fmt.Errorf("unknown output %q, want json or csv", output)
			}

			svc := importservice.NewImportService(nil, logger(cmd))
			if today != "" {
				t, err := time.Parse(time.DateOnly, today)
				if err != nil {
					return fmt.Errorf("invalid --today: %w", err)
				}
				svc = svc.WithClock(func() time.Time { return t })
			}

			return runNormalize(cmd, svc, k, args[0], output)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "transactions", "record kind: transactions or accounts")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or csv")
	cmd.Flags().StringVar(&today, "today", "", "statement date fallback (YYYY-MM-DD) when a file has no dates")

	return cmd
}

func runNormalize(cmd *cobra.Command, svc *importservice.ImportService, kind sniffer.Kind, path, output string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	var records any
	var format sniffer.SourceFormat
	var read, kept int

	switch kind {
	case sniffer.KindAccounts:
		batch, err := svc.NormalizeAccounts(cmd.Context(), name, f)
		if err != nil {
			return err
		}
		records, format, read, kept = &batch.Records, batch.Format, batch.RowsRead, len(batch.Records)
	default:
		batch, err := svc.NormalizeTransactions(cmd.Context(), name, f)
		if err != nil {
			return err
		}
		records, format, read, kept = &batch.Records, batch.Format, batch.RowsRead, len(batch.Records)
	}

	if err := writeRecords(cmd.OutOrStdout(), records, output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: format=%s read=%d kept=%d dropped=%d\n", name, format, read, kept, read-kept)
	return nil
}

func writeRecords(w io.Writer, records any, output string) error {
	if output == outputCSV {
		if err := gocsv.Marshal(records, w); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func parseKind(s string) (sniffer.Kind, error) {
	switch s {
	case "transactions", "transaction", "t":
		return sniffer.KindTransactions, nil
	case "accounts", "account", "a":
		return sniffer.KindAccounts, nil
	default:
		return 0, fmt.Errorf("unknown kind %q, want transactions or accounts", s)
	}
}
