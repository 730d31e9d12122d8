// Package generic normalizes plain tabular exports whose first row holds the
// column labels, recognizing the usual Spanish synonyms for each field.
package generic

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/importer/clean"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
)

// DefaultDescription is used when no column looks like a description.
const DefaultDescription = "Transacción"

// Synonyms in lookup order; the first label present wins.
var (
	dateLabels        = []string{"Fecha Mov.", "Fecha"}
	descriptionLabels = []string{"Descripción", "Descripcion", "Detalle", "Concepto"}
	amountLabels      = []string{"Monto", "Importe", "Valor"}
	typeLabels        = []string{"Tipo", "Tipo Mov.", "Movimiento"}
)

// descriptionHints are matched against lower-cased labels when no synonym
// is present.
var descriptionHints = []string{"desc", "concepto", "detalle", "movimiento"}

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(g sheet.Grid) ([]record.Record, error) {
	headerRow := firstFilledRow(g)
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: no header row", record.ErrMissingColumns)
	}

	header := g.Header(headerRow)

	dateCol, okDate := lookup(header, dateLabels)
	amountCol, okAmount := lookup(header, amountLabels)

	if !okDate || !okAmount {
		return nil, fmt.Errorf("%w: need a date and an amount column", record.ErrMissingColumns)
	}

	typeCol, okType := lookup(header, typeLabels)

	descCol, okDesc := lookup(header, descriptionLabels)
	if !okDesc {
		descCol, okDesc = guessDescription(g[headerRow], takenColumns(dateCol, amountCol, typeCol, okType))
	}

	var rows []int

	for r := headerRow + 1; r < len(g); r++ {
		if !blank(g[r]) {
			rows = append(rows, r)
		}
	}

	rawDates := make([]string, len(rows))
	for i, r := range rows {
		rawDates[i] = g.Cell(r, dateCol)
	}

	dates := clean.ParseDates(rawDates)
	recs := make([]record.Record, 0, len(rows))

	for i, r := range rows {
		rec := record.Record{Date: dates[i], Description: DefaultDescription}

		if okDesc {
			rec.Description = g.Cell(r, descCol)
		}

		amount, ok := clean.ParseAmount(g.Cell(r, amountCol))
		if ok {
			rec.Amount = decimal.NewNullDecimal(amount)
		}

		switch {
		case okType:
			rec.Type = g.Cell(r, typeCol)
		case ok && amount.IsNegative():
			rec.Type = record.LabelExpense
		case ok:
			rec.Type = record.LabelIncome
		}

		recs = append(recs, rec)
	}

	return recs, nil
}

func lookup(header map[string]int, synonyms []string) (int, bool) {
	for _, s := range synonyms {
		if idx, ok := header[s]; ok {
			return idx, true
		}
	}

	return 0, false
}

// takenColumns marks the columns already bound to a field. typeCol only
// counts when the header has a type column.
func takenColumns(dateCol, amountCol, typeCol int, hasType bool) map[int]bool {
	taken := map[int]bool{dateCol: true, amountCol: true}
	if hasType {
		taken[typeCol] = true
	}

	return taken
}

func guessDescription(header []string, taken map[int]bool) (int, bool) {
	for idx, label := range header {
		if taken[idx] {
			continue
		}

		lower := strings.ToLower(label)

		for _, hint := range descriptionHints {
			if strings.Contains(lower, hint) {
				return idx, true
			}
		}
	}

	return 0, false
}

func firstFilledRow(g sheet.Grid) int {
	for r, row := range g {
		if !blank(row) {
			return r
		}
	}

	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
