package clean_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/importer/clean"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestParseDates(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []time.Time
	}{
		{
			name:   "ISO with invalid cell",
			values: []string{"2024-01-15", "bad", ""},
			want:   []time.Time{date(2024, 1, 15), {}, {}},
		},
		{
			name:   "Day first before month first",
			values: []string{"15/01/2024", "03/02/2024"},
			want:   []time.Time{date(2024, 1, 15), date(2024, 2, 3)},
		},
		{
			name:   "Month first when day first fails",
			values: []string{"01/15/2024"},
			want:   []time.Time{date(2024, 1, 15)},
		},
		{
			name:   "Excel serial",
			values: []string{"45306"},
			want:   []time.Time{date(2024, 1, 15)},
		},
		{
			name:   "Compact numeric",
			values: []string{"20240115"},
			want:   []time.Time{date(2024, 1, 15)},
		},
		{
			name:   "Dashes day first",
			values: []string{"15-01-2024"},
			want:   []time.Time{date(2024, 1, 15)},
		},
		{
			name:   "Trailing clock time",
			values: []string{"15/01/2024 00:00:00"},
			want:   []time.Time{date(2024, 1, 15)},
		},
		{
			name:   "Last resort textual month",
			values: []string{"Jan 5, 2024"},
			want:   []time.Time{date(2024, 1, 5)},
		},
		{
			name:   "Nothing parses",
			values: []string{"foo", "bar"},
			want:   []time.Time{{}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clean.ParseDates(tt.values))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"45000", "45000", true},
		{"45.000", "45000", true},
		{"1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"12,5", "12.5", true},
		{"1,234,567", "1234567", true},
		{"-12,000,000", "-12000000", true},
		{"12.50", "12.5", true},
		{"$ 1.500", "1500", true},
		{"-588,74", "-588.74", true},
		{"abc", "0", false},
		{"", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := clean.ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(4500000), clean.ToCents(decimal.NewFromInt(45000)))
	assert.Equal(t, int64(58874), clean.ToCents(decimal.RequireFromString("-588.74")))
	assert.Equal(t, int64(1), clean.ToCents(decimal.RequireFromString("0.005")))
}

func TestMovementType(t *testing.T) {
	tests := []struct {
		in     string
		want   transaction.Type
		wantOK bool
	}{
		{"C", transaction.TypeIncome, true},
		{"crédito", transaction.TypeIncome, true},
		{"Ingreso", transaction.TypeIncome, true},
		{"D", transaction.TypeExpense, true},
		{"DÉBITO", transaction.TypeExpense, true},
		{"Gasto", transaction.TypeExpense, true},
		{"traspaso", transaction.Type("TRASPASO"), true},
		{"  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := clean.MovementType(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean(t *testing.T) {
	recs := []record.Record{
		{Date: date(2024, 1, 15), Description: "  supermercado jumbo ", Amount: amount("45000"), Type: "GASTO"},
		{Date: date(2024, 1, 16), Description: "", Amount: amount("-1200.5"), Type: "C"},
		{Date: time.Time{}, Description: "NO DATE", Amount: amount("1"), Type: "D"},
		{Date: date(2024, 1, 17), Description: "NO AMOUNT", Type: "D"},
		{Date: date(2024, 1, 18), Description: "NO TYPE", Amount: amount("1")},
		{Date: time.Date(2024, 1, 19, 13, 45, 0, 0, time.UTC), Description: "WITH TIME", Amount: amount("0"), Type: "d"},
	}

	txs, dropped := clean.Clean(recs)
	require.Len(t, txs, 3)
	assert.Equal(t, 3, dropped)

	assert.Equal(t, "SUPERMERCADO JUMBO", txs[0].Description)
	assert.Equal(t, int64(4500000), txs[0].Amount)
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)

	assert.Equal(t, "SIN DESCRIPCIÓN", txs[1].Description)
	assert.Equal(t, int64(120050), txs[1].Amount)
	assert.Equal(t, transaction.TypeIncome, txs[1].Type)

	assert.Equal(t, date(2024, 1, 19), txs[2].Date)

	for _, tx := range txs {
		assert.GreaterOrEqual(t, tx.Amount, int64(0))
	}
}

func TestClean_TrimsDetails(t *testing.T) {
	txs, _ := clean.Clean([]record.Record{{
		Date:    date(2024, 1, 15),
		Amount:  amount("10"),
		Type:    "GASTO",
		Details: transaction.Details{Comment: "  pago  ", Channel: " WEB"},
	}})
	require.Len(t, txs, 1)

	assert.Equal(t, "pago", txs[0].Details.Comment)
	assert.Equal(t, "WEB", txs[0].Details.Channel)
}
