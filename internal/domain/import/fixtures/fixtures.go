// Package fixtures generates realistic bank export files for tests and benchmarks.
package fixtures

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	DCUTransactionHeader      = []string{"Date", "Post Date", "Transaction Type", "Description", "Amount", "Memo", "Reference Number"}
	StandardTransactionHeader = []string{"Transaction Date", "Post Date", "Description", "Category", "Type", "Amount", "Memo"}
	DCUAccountHeader          = []string{"Account Number", "Date", "Transaction Type", "Description", "Amount", "Running Bal."}
	StandardAccountHeader     = []string{"account_name", "account_number", "statement_date", "date", "description", "amount", "balance", "account_type"}
)

var categories = []string{
	"Food & Dining", "Groceries", "Transportation", "Gas & Fuel",
	"Shopping", "Entertainment", "Bills & Utilities", "Health & Medical",
	"Travel", "Salary", "Interest", "Refund",
}

var descriptions = []string{
	"Coffee and pastry", "Weekly groceries", "Gas station fill-up",
	"Online subscription", "Restaurant dinner", "Utility bill payment",
	"Monthly salary deposit", "Dividend payment", "Interest income",
	"ATM withdrawal", "Transfer to savings", "Pharmacy",
}

var accountTypes = []string{"Checking", "Savings", "Credit", "Investment"}

// Generator builds bank export rows from a seeded faker so output is reproducible.
type Generator struct {
	faker *gofakeit.Faker
	start time.Time
}

// New creates a generator. A zero seed gives random output.
func New(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.faker.Number(0, len(values)-1)]
}

func (g *Generator) amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
}

func (g *Generator) usDate(day int) string {
	d := g.start.AddDate(0, 0, day)
	return fmt.Sprintf("%d/%d/%d", d.Month(), d.Day(), d.Year())
}

func (g *Generator) isoDate(day int) string {
	return g.start.AddDate(0, 0, day).Format("2006-01-02")
}

// DCUTransactions returns n rows matching DCUTransactionHeader with US dates.
func (g *Generator) DCUTransactions(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		txType, amt := "Deposit", g.amount(1, 3000)
		if g.faker.Bool() {
			txType, amt = "Withdrawal", amt.Neg()
		}
		rows[i] = []string{
			g.usDate(i),
			g.usDate(i + 1),
			txType,
			g.pick(descriptions),
			amt.StringFixed(2),
			g.faker.HipsterWord(),
			g.faker.DigitN(10),
		}
	}
	return rows
}

// StandardTransactions returns n rows matching StandardTransactionHeader.
func (g *Generator) StandardTransactions(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		txType := "debit"
		if g.faker.Bool() {
			txType = "credit"
		}
		rows[i] = []string{
			g.isoDate(i),
			g.isoDate(i + 1),
			g.pick(descriptions),
			g.pick(categories),
			txType,
			"$" + g.amount(1, 3000).StringFixed(2),
			"",
		}
	}
	return rows
}

// DCUAccounts returns n rows matching DCUAccountHeader with a running balance.
func (g *Generator) DCUAccounts(n int) [][]string {
	accountNumber := g.faker.DigitN(8)
	balance := g.amount(500, 5000)
	rows := make([][]string, n)
	for i := range rows {
		amt := g.amount(-400, 800)
		balance = balance.Add(amt)
		rows[i] = []string{
			accountNumber,
			g.usDate(i),
			"ACH",
			g.pick(descriptions),
			amt.StringFixed(2),
			balance.StringFixed(2),
		}
	}
	return rows
}

// StandardAccounts returns n rows matching StandardAccountHeader.
func (g *Generator) StandardAccounts(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{
			g.faker.Company() + " " + g.pick(accountTypes),
			g.faker.DigitN(8),
			g.isoDate(i + 30),
			g.isoDate(i),
			g.pick(descriptions),
			g.amount(-400, 800).StringFixed(2),
			g.amount(0, 25000).StringFixed(2),
			g.pick(accountTypes),
		}
	}
	return rows
}

// CSV encodes header and rows as comma separated text.
func CSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return buf.Bytes()
}

// Workbook encodes header and rows into a single-sheet XLSX file.
func Workbook(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
