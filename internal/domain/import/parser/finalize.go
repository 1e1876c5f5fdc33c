package parser

import (
	"time"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/normalizer"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
)

// FinalizeAccounts fills statement dates once the whole batch is known.
// DCU exports carry no statement date, so every record gets the batch value;
// standard files keep their own and only empty ones are filled.
// The input slice is not modified.
func FinalizeAccounts(format sniffer.SourceFormat, records []AccountRecord, now time.Time) []AccountRecord {
	out := make([]AccountRecord, len(records))
	copy(out, records)
	if len(out) == 0 {
		return out
	}

	statementDate := BatchStatementDate(records, now)
	for i := range out {
		if format == sniffer.FormatDCU || out[i].StatementDate == "" {
			out[i].StatementDate = statementDate
		}
	}
	return out
}

// BatchStatementDate is the latest transaction date of the batch, then the
// first record's transaction date, then today.
func BatchStatementDate(records []AccountRecord, now time.Time) string {
	latest := ""
	for _, r := range records {
		// ISO dates order lexically.
		if r.TransactionDate != nil && *r.TransactionDate > latest {
			latest = *r.TransactionDate
		}
	}
	if latest != "" {
		return latest
	}
	if len(records) > 0 && records[0].TransactionDate != nil {
		return *records[0].TransactionDate
	}
	return now.Format(normalizer.ISODateLayout)
}
