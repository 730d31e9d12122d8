// Package cartola normalizes checking-account statements. The header sits on
// row 25 and every movement is split into charge and credit columns.
package cartola

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
	"github.com/MrJamesThe3rd/cartola/internal/importer/clean"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// HeaderRow is the 0-based row holding the column labels.
const HeaderRow = 24

type field int

const (
	colDate field = iota
	colDescription
	colChannel
	colCharge
	colCredit
	colBalance
)

var labels = map[string]field{
	"FECHA":            colDate,
	"DESCRIPCION":      colDescription,
	"CANAL O SUCURSAL": colChannel,
	"CARGOS (PESOS)":   colCharge,
	"ABONOS (PESOS)":   colCredit,
	"SALDO (PESOS)":    colBalance,
}

type Normalizer struct {
	now func() time.Time
}

type Option func(*Normalizer)

// WithClock sets the clock used to complete day/month dates with a year.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

func (n *Normalizer) Normalize(g sheet.Grid) ([]record.Record, error) {
	cols := make(map[field]int)

	for label, idx := range g.Header(HeaderRow) {
		if f, ok := labels[fold.Upper(label)]; ok {
			if prev, dup := cols[f]; !dup || idx < prev {
				cols[f] = idx
			}
		}
	}

	for _, f := range []field{colDate, colCharge, colCredit} {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: cartola header needs Fecha, Cargos and Abonos", record.ErrMissingColumns)
		}
	}

	cell := func(row int, f field) string {
		idx, ok := cols[f]
		if !ok {
			return ""
		}

		return g.Cell(row, idx)
	}

	year := n.now().Year()

	var recs []record.Record

	for r := HeaderRow + 1; r < len(g); r++ {
		date, ok := parseDate(cell(r, colDate), year)
		if !ok {
			continue
		}

		charge := clean.ParseAmountOrZero(cell(r, colCharge))
		credit := clean.ParseAmountOrZero(cell(r, colCredit))

		amount, label := decimal.Zero, record.LabelExpense

		switch {
		case charge.IsPositive():
			amount = charge
		case credit.IsPositive():
			amount, label = credit, record.LabelIncome
		}

		if !amount.IsPositive() {
			continue
		}

		details := transaction.Details{Channel: strings.ToUpper(cell(r, colChannel))}

		if bal, ok := clean.ParseAmount(cell(r, colBalance)); ok {
			cents := bal.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
			details.Balance = &cents
		}

		recs = append(recs, record.Record{
			Date:        date,
			Description: strings.ToUpper(cell(r, colDescription)),
			Amount:      decimal.NewNullDecimal(amount),
			Type:        label,
			Details:     details,
		})
	}

	return recs, nil
}

// parseDate accepts "DD/MM/YYYY", "DD/MM" (completed with year) and
// spreadsheet date cells.
func parseDate(s string, year int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}

	switch strings.Count(s, "/") {
	case 2:
		t, err := time.Parse("2/1/2006", s)
		return clean.Day(t), err == nil
	case 1:
		t, err := time.Parse("2/1/2006", fmt.Sprintf("%s/%d", s, year))
		return clean.Day(t), err == nil
	}

	return clean.ParseDate(s)
}
