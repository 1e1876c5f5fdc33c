// Package parser turns uploaded bank exports into canonical transaction and
// account records. Reading (CSV or XLSX into RawRows) is separate from
// mapping, so the same mapping tables serve both file types.
package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultCategory    = "Uncategorized"
	DefaultAccountType = "Checking"
	// DCUTransactionType labels DCU transactions that carry no Transaction Type column.
	DCUTransactionType = "DCU"
)

// RawRow is one data line keyed by header name. Values are trimmed and a
// header the line did not reach reads as "".
type RawRow struct {
	Line   int
	Header []string
	Values map[string]string
}

// NewRawRow pairs a record with its header. Extra cells past the header are
// ignored; for duplicated header names the first column wins.
func NewRawRow(line int, header, record []string) RawRow {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if _, dup := values[h]; dup {
			continue
		}
		if i < len(record) {
			values[h] = strings.TrimSpace(record[i])
		} else {
			values[h] = ""
		}
	}
	return RawRow{Line: line, Header: header, Values: values}
}

// Get returns the first non-empty value among the given header names.
func (r RawRow) Get(names ...string) string {
	for _, n := range names {
		if v := r.Values[n]; v != "" {
			return v
		}
	}
	return ""
}

// TransactionRecord is the canonical shape persisted to the transactions table.
type TransactionRecord struct {
	TransactionDate *string         `json:"transaction_date" csv:"transaction_date"`
	PostDate        *string         `json:"post_date" csv:"post_date"`
	Description     string          `json:"description" csv:"description"`
	Amount          decimal.Decimal `json:"amount" csv:"amount"`
	Type            string          `json:"type" csv:"type"`
	Category        string          `json:"category" csv:"category"`
	Memo            string          `json:"memo" csv:"memo"`
	ReferenceNumber *string         `json:"reference_number" csv:"reference_number"`
}

// AccountRecord is the canonical shape persisted to the accounts table.
// StatementDate is empty until FinalizeAccounts has run over the batch.
type AccountRecord struct {
	AccountName     string           `json:"account_name" csv:"account_name"`
	AccountNumber   *string          `json:"account_number" csv:"account_number"`
	StatementDate   string           `json:"statement_date" csv:"statement_date"`
	TransactionDate *string          `json:"transaction_date" csv:"transaction_date"`
	Description     string           `json:"description" csv:"description"`
	Amount          *decimal.Decimal `json:"amount" csv:"amount"`
	Balance         decimal.Decimal  `json:"balance" csv:"balance"`
	AccountType     string           `json:"account_type" csv:"account_type"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
