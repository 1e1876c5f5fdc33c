package parser

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/normalizer"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
)

// transactionColumns lists, per canonical field, the source headers to try in order.
type transactionColumns struct {
	transactionDate []string
	postDate        []string
	description     []string
	amount          []string
	txType          []string
	defaultType     string
	category        []string
	memo            []string
	reference       []string
}

var transactionTables = map[sniffer.SourceFormat]transactionColumns{
	sniffer.FormatDCU: {
		transactionDate: []string{"Date"},
		postDate:        []string{"Post Date"},
		description:     []string{"Description"},
		amount:          []string{"Amount"},
		txType:          []string{"Transaction Type"},
		defaultType:     DCUTransactionType,
		category:        []string{"Category"},
		memo:            []string{"Memo"},
		reference:       []string{"Reference Number"},
	},
	sniffer.FormatStandard: {
		transactionDate: []string{"Transaction Date", "date"},
		postDate:        []string{"Post Date"},
		description:     []string{"Description", "description"},
		amount:          []string{"Amount", "amount"},
		txType:          []string{"Type", "type"},
		category:        []string{"Category", "category"},
		memo:            []string{"Memo", "memo"},
		reference:       []string{"Reference Number"},
	},
}

type accountColumns struct {
	accountName     []string
	accountNumber   []string
	statementDate   []string
	transactionDate []string
	description     []string
	amount          []string
	balance         []string
	accountType     []string
}

// amountSampleRows bounds how many rows DetectAmountFormat samples.
const amountSampleRows = 50

var balanceChain = []string{"balance", "Current Balance", "Running Bal."}

var accountTables = map[sniffer.SourceFormat]accountColumns{
	sniffer.FormatDCU: {
		accountNumber:   []string{"Account Number"},
		transactionDate: []string{"Date"},
		description:     []string{"Description"},
		amount:          []string{"Amount"},
		balance:         balanceChain,
		accountType:     []string{"account_type"},
	},
	sniffer.FormatStandard: {
		accountName:     []string{"account_name"},
		accountNumber:   []string{"account_number"},
		statementDate:   []string{"statement_date"},
		transactionDate: []string{"date", "transaction_date"},
		description:     []string{"description"},
		amount:          []string{"amount"},
		balance:         balanceChain,
		accountType:     []string{"account_type"},
	},
}

// TransactionMapper maps RawRows of one file into TransactionRecords.
type TransactionMapper struct {
	format        sniffer.SourceFormat
	logger        *slog.Logger
	amounts       normalizer.AmountFormat
	amountColumns []string
	mapFunc       func(RawRow) (TransactionRecord, bool)
}

// NewTransactionMapper selects the mapping for format once, for the whole file.
func NewTransactionMapper(format sniffer.SourceFormat, logger *slog.Logger) *TransactionMapper {
	m := &TransactionMapper{format: format, logger: logger}
	cols, ok := transactionTables[format]
	if !ok {
		m.mapFunc = func(row RawRow) (TransactionRecord, bool) {
			m.logger.Warn("skipping row of unrecognized format", "line", row.Line)
			return TransactionRecord{}, false
		}
		return m
	}
	m.amountColumns = cols.amount
	m.mapFunc = func(row RawRow) (TransactionRecord, bool) {
		return m.mapRow(cols, row)
	}
	return m
}

// DetectAmountFormat samples the amount cells of rows and fixes the file's decimal
// separator for every later Map call.
func (m *TransactionMapper) DetectAmountFormat(rows []RawRow) {
	m.amounts = detectAmountFormat(m.logger, rows, m.amountColumns)
}

// Map returns the canonical record for row, or false when the row is dropped.
func (m *TransactionMapper) Map(row RawRow) (TransactionRecord, bool) {
	return m.mapFunc(row)
}

func (m *TransactionMapper) mapRow(cols transactionColumns, row RawRow) (TransactionRecord, bool) {
	postDate := coerceDate(m.logger, row, "post_date", row.Get(cols.postDate...))
	txDate := coerceDate(m.logger, row, "transaction_date", row.Get(cols.transactionDate...))
	if txDate == nil {
		txDate = postDate
	}
	if txDate == nil && postDate == nil {
		m.logger.Warn("dropping transaction without a usable date", "line", row.Line)
		return TransactionRecord{}, false
	}

	txType := row.Get(cols.txType...)
	if txType == "" {
		txType = cols.defaultType
	}

	category := row.Get(cols.category...)
	if category == "" {
		category = DefaultCategory
	}

	return TransactionRecord{
		TransactionDate: txDate,
		PostDate:        postDate,
		Description:     normalizer.CleanDescription(row.Get(cols.description...)),
		Amount:          m.amounts.Coerce(row.Get(cols.amount...)),
		Type:            txType,
		Category:        category,
		Memo:            row.Get(cols.memo...),
		ReferenceNumber: optional(row.Get(cols.reference...)),
	}, true
}

// AccountMapper maps RawRows of one file into AccountRecords. Statement
// dates are left for FinalizeAccounts where the source has none.
type AccountMapper struct {
	format        sniffer.SourceFormat
	logger        *slog.Logger
	fileAccount   string
	amounts       normalizer.AmountFormat
	amountColumns []string
	mapFunc       func(RawRow) (AccountRecord, bool)
}

// NewAccountMapper selects the mapping for format and derives the fallback
// account name from filename once per file.
func NewAccountMapper(format sniffer.SourceFormat, filename string, logger *slog.Logger) *AccountMapper {
	m := &AccountMapper{
		format:      format,
		logger:      logger,
		fileAccount: normalizer.AccountNameFromFilename(filename),
	}
	cols, ok := accountTables[format]
	if !ok {
		m.mapFunc = func(row RawRow) (AccountRecord, bool) {
			m.logger.Warn("skipping row of unrecognized format", "line", row.Line)
			return AccountRecord{}, false
		}
		return m
	}
	m.amountColumns = append(append([]string{}, cols.amount...), cols.balance...)
	m.mapFunc = func(row RawRow) (AccountRecord, bool) {
		return m.mapRow(cols, row), true
	}
	return m
}

// DetectAmountFormat samples the amount and balance cells of rows and fixes the file's
// decimal separator for every later Map call.
func (m *AccountMapper) DetectAmountFormat(rows []RawRow) {
	m.amounts = detectAmountFormat(m.logger, rows, m.amountColumns)
}

func (m *AccountMapper) Map(row RawRow) (AccountRecord, bool) {
	return m.mapFunc(row)
}

func (m *AccountMapper) mapRow(cols accountColumns, row RawRow) AccountRecord {
	name := row.Get(cols.accountName...)
	if name == "" {
		name = m.fileAccount
	}

	var statementDate string
	if d := coerceDate(m.logger, row, "statement_date", row.Get(cols.statementDate...)); d != nil {
		statementDate = *d
	}

	var amount *decimal.Decimal
	if v, ok := m.amounts.Parse(row.Get(cols.amount...)); ok {
		amount = &v
	}

	accountType := row.Get(cols.accountType...)
	if accountType == "" {
		accountType = DefaultAccountType
	}

	return AccountRecord{
		AccountName:     name,
		AccountNumber:   optional(row.Get(cols.accountNumber...)),
		StatementDate:   statementDate,
		TransactionDate: coerceDate(m.logger, row, "transaction_date", row.Get(cols.transactionDate...)),
		Description:     normalizer.CleanDescription(row.Get(cols.description...)),
		Amount:          amount,
		Balance:         m.amounts.Coerce(row.Get(cols.balance...)),
		AccountType:     accountType,
	}
}

func detectAmountFormat(logger *slog.Logger, rows []RawRow, columns []string) normalizer.AmountFormat {
	var samples []string
	for i, row := range rows {
		if i == amountSampleRows {
			break
		}
		for _, c := range columns {
			if v := row.Values[c]; v != "" {
				samples = append(samples, v)
			}
		}
	}

	format := normalizer.AmountFormat{DecimalComma: sniffer.DecimalComma(samples)}
	if format.DecimalComma {
		logger.Info("amounts use a decimal comma", "samples", len(samples))
	}
	return format
}

// coerceDate wraps normalizer.CoerceDate and reports unreadable non-blank input.
func coerceDate(logger *slog.Logger, row RawRow, field, raw string) *string {
	if raw == "" {
		return nil
	}
	iso, ok := normalizer.CoerceDate(raw)
	if !ok {
		logger.Warn("unparseable date", "line", row.Line, "field", field, "value", raw)
		return nil
	}
	return &iso
}
