// Package money formats decimal amounts read from bank exports for display.
// Stored amounts stay decimal; go-money handles currency symbols, grouping
// and minor-unit rounding.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the fallback display currency.
const USD = "USD"

var ErrUnknownCurrency = errors.New("unknown currency code")

// Money is a display value in minor units of a single currency.
type Money struct {
	m *money.Money
}

// ValidateCurrency returns the upper-cased code if go-money knows it.
func ValidateCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return code, nil
}

// New creates a Money value from minor units.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal rounds amount to the currency's minor unit. Unknown
// currencies fall back to USD.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
		currencyCode = USD
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Add sums two values of the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// ToDecimal converts back to decimal.Decimal
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// Formatter renders decimals in one configured display currency.
type Formatter struct {
	currency string
}

// NewFormatter validates the currency code once at startup.
func NewFormatter(currencyCode string) (*Formatter, error) {
	code, err := ValidateCurrency(currencyCode)
	if err != nil {
		return nil, err
	}
	return &Formatter{currency: code}, nil
}

func (f *Formatter) Currency() string {
	return f.currency
}

// Money rounds amount to the display currency's minor unit.
func (f *Formatter) Money(amount decimal.Decimal) *Money {
	return NewFromDecimal(amount, f.currency)
}

// Format returns the display string for amount, e.g. "-$1,234.50".
func (f *Formatter) Format(amount decimal.Decimal) string {
	return f.Money(amount).Display()
}
