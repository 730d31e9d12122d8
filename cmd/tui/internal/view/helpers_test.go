package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func TestCategoryOptions(t *testing.T) {
	rules := []categorize.RuleSummary{
		{Category: "Gasto - Supermercado"},
		{Category: "Mascotas"},
	}

	got := CategoryOptions(rules, []string{"Mascotas", "Viajes", ""})

	assert.Equal(t, []string{
		"Gasto - Supermercado",
		"Mascotas",
		"Viajes",
		categorize.Transfers,
		transaction.Uncategorized,
	}, got)
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		in   dashboard.Suggestions
		want []string
	}{
		{
			name: "Empty",
			in:   dashboard.Suggestions{},
			want: nil,
		},
		{
			name: "Exact before fuzzy without repeats",
			in: dashboard.Suggestions{
				Exact: []categorize.Suggestion{{Category: "A"}, {Category: "B"}},
				Fuzzy: []categorize.FuzzySuggestion{{Category: "B"}, {Category: "C"}},
			},
			want: []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Candidates(tt.in))
		})
	}
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"VET", "PET SHOP"}, SplitKeywords(" VET , ,PET SHOP,"))
	assert.Empty(t, SplitKeywords(" , "))
}

func TestReportSummary(t *testing.T) {
	r := &dashboard.Report{
		Format:       importer.FormatTEF,
		Transactions: make([]*transaction.Transaction, 3),
		Dropped:      1,
		Range: &period.Range{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			Days:  31,
		},
		Store: dashboard.StoreStatus{Requested: true, Mode: transaction.ModeAppend, Error: "db down"},
	}

	got := ReportSummary(r)

	assert.Contains(t, got, "Format:        tef")
	assert.Contains(t, got, "Transactions:  3 (dropped 1)")
	assert.Contains(t, got, "2024-01-01 to 2024-01-31 (31 days)")
	assert.Contains(t, got, "not saved: db down")
}
