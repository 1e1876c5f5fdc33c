// Package normalizer provides the field coercers used by the import pipeline.
// coerce.go converts raw CSV cells into calendar dates and signed decimal amounts.
// Coercers never fail: they return a sentinel (no date, zero amount) instead.
package normalizer

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// ISODateLayout is the canonical calendar date layout stored by the pipeline.
const ISODateLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	usDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

	// A single comma followed by one or two digits and no dot, as in "12,50".
	trailingDecimalComma = regexp.MustCompile(`^[^.,]*,\d{1,2}$`)
)

// currencyTokens are removed from amount strings before parsing.
// Multi-character tokens come first so "R$" is not left as "R".
var currencyTokens = []string{"R$", "USD", "EUR", "GBP", "BRL", "$", "€", "£", "¥", "₹"}

// CoerceDate converts a raw date cell into an ISO calendar date (YYYY-MM-DD).
// The second return value is false when the input is blank or unparsable.
func CoerceDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Already canonical
	if isoDatePattern.MatchString(s) {
		return s, true
	}

	// M/D/YYYY with one or two digit month and day
	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + padTwo(m[1]) + "-" + padTwo(m[2]), true
	}

	// Anything else goes through generic calendar parsing.
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", false
	}
	return t.Format(ISODateLayout), true
}

// AmountFormat holds the separators one file uses in its amount cells.
// The zero value reads "1,234.56".
type AmountFormat struct {
	// DecimalComma is set for files written as "1.234,56".
	DecimalComma bool
}

// CoerceAmount converts a raw currency cell into a signed decimal.
// Blank or unparsable input yields zero.
func CoerceAmount(raw string) decimal.Decimal {
	return AmountFormat{}.Coerce(raw)
}

// ParseAmount is CoerceAmount with an explicit success flag, for callers that
// must tell a missing amount apart from a zero amount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	return AmountFormat{}.Parse(raw)
}

// Coerce is CoerceAmount using the file's separators.
func (f AmountFormat) Coerce(raw string) decimal.Decimal {
	d, ok := f.Parse(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Parse is ParseAmount using the file's separators.
func (f AmountFormat) Parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Join(strings.Fields(s), "")

	switch {
	case f.DecimalComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case trailingDecimalComma.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

func padTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
