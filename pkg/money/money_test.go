package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
		display  string
	}{
		{"precise decimal", "123.45", USD, "123.45", "$123.45"},
		{"many decimals", "99.999", USD, "100", "$100.00"}, // Rounds up
		{"whole number", "500", USD, "500", "$500.00"},
		{"negative", "-25.50", USD, "-25.5", "-$25.50"},
		{"yen has no minor unit", "1500.4", "JPY", "1500", "¥1,500"},
		{"unknown currency falls back", "1.00", "XXX_NOPE", "1", "$1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(m.ToDecimal()), "got %s", m.ToDecimal())
			assert.Equal(t, tt.display, m.Display())
		})
	}
}

func TestAdd(t *testing.T) {
	sum, err := New(1050, USD).Add(New(250, USD))
	require.NoError(t, err)
	assert.True(t, sum.ToDecimal().Equal(decimal.RequireFromString("13")))

	_, err = New(100, USD).Add(New(100, "EUR"))
	assert.Error(t, err)

	sum, err = Zero(USD).Add(New(5, USD))
	require.NoError(t, err)
	assert.Equal(t, "$0.05", sum.Display())

	var empty *Money
	sum, err = empty.Add(New(5, USD))
	require.NoError(t, err)
	assert.Equal(t, "$0.05", sum.Display())
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		contains string
	}{
		{"USD", 12345, USD, "$"},
		{"EUR", 12345, "EUR", "€"},
		{"negative", -5000, USD, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Contains(t, m.Display(), tt.contains)
		})
	}
}

func TestNilSafety(t *testing.T) {
	var m *Money

	assert.Equal(t, "$0.00", m.Display())
	assert.True(t, m.ToDecimal().IsZero())
}

func TestFormatter(t *testing.T) {
	f, err := NewFormatter(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, f.Currency())

	assert.Equal(t, "$1,234.50", f.Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.00", f.Format(decimal.Zero))

	assert.Equal(t, "$2.01", f.Money(decimal.RequireFromString("2.005")).Display())

	_, err = NewFormatter("ZZZ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func BenchmarkFormat(b *testing.B) {
	f, _ := NewFormatter(USD)
	d := decimal.RequireFromString("-98765.4321")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Format(d)
	}
}
