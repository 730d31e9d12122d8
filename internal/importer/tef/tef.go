// Package tef normalizes electronic funds-transfer exports. These carry
// eleven rows of account metadata before the header row.
package tef

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
	"github.com/MrJamesThe3rd/cartola/internal/importer/clean"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// HeaderRow is the 0-based row holding the column labels.
const HeaderRow = 11

// DefaultDescription is used when a transfer has no name, comment or bank.
const DefaultDescription = "Transferencia bancaria"

type field int

const (
	colDate field = iota
	colOrigin
	colDestName
	colDestTaxID
	colDestBank
	colAccountType
	colDestAccount
	colAmount
	colStatus
	colChannel
	colID
	colComment
)

// labels maps folded header labels to canonical fields.
var labels = map[string]field{
	"FECHA":            colDate,
	"ORIGEN":           colOrigin,
	"NOMBRE DESTINO":   colDestName,
	"RUT DESTINO":      colDestTaxID,
	"BANCO DESTINO":    colDestBank,
	"TIPO DE CUENTA":   colAccountType,
	"N CUENTA DESTINO": colDestAccount,
	"MONTO":            colAmount,
	"ESTADO":           colStatus,
	"CANAL":            colChannel,
	"ID TRANSACCION":   colID,
	"COMENTARIO":       colComment,
}

// incomePatterns mark a transfer as received money when found in the
// origin, destination name or comment.
var incomePatterns = []string{
	"SUELDO", "SALARIO", "NOMINA", "HONORARIOS", "REMUNERACION",
	"DEVOLUCION", "REEMBOLSO", "DEPOSITO", "ABONO", "CREDITO",
	"PENSION", "JUBILACION", "SUBSIDIO", "BECA", "PREMIO",
	"VENTA", "COBRO", "PAGO RECIBIDO", "TRANSFERENCIA RECIBIDA",
}

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(g sheet.Grid) ([]record.Record, error) {
	cols := make(map[field]int)

	for label, idx := range g.Header(HeaderRow) {
		if f, ok := labels[fold.Upper(label)]; ok {
			if _, dup := cols[f]; !dup || idx < cols[f] {
				cols[f] = idx
			}
		}
	}

	for _, f := range []field{colDate, colAmount} {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: tef header needs Fecha and Monto", record.ErrMissingColumns)
		}
	}

	cell := func(row int, f field) string {
		idx, ok := cols[f]
		if !ok {
			return ""
		}

		v := g.Cell(row, idx)
		if strings.EqualFold(v, "nan") {
			return ""
		}

		return v
	}

	var rows []int

	for r := HeaderRow + 1; r < len(g); r++ {
		if !blank(g[r]) {
			rows = append(rows, r)
		}
	}

	rawDates := make([]string, len(rows))
	for i, r := range rows {
		rawDates[i] = cell(r, colDate)
	}

	dates := clean.ParseDates(rawDates)

	var recs []record.Record

	for i, r := range rows {
		if dates[i].IsZero() {
			continue
		}

		origin := cell(r, colOrigin)
		destName := cell(r, colDestName)
		destBank := cell(r, colDestBank)
		comment := cell(r, colComment)

		recs = append(recs, record.Record{
			Date:        dates[i],
			Description: describe(destName, comment, destBank),
			Amount:      decimal.NewNullDecimal(clean.ParseAmountOrZero(cell(r, colAmount))),
			Type:        movementLabel(origin, destName, comment),
			Details: transaction.Details{
				Origin:             origin,
				DestinationName:    destName,
				DestinationTaxID:   cell(r, colDestTaxID),
				DestinationBank:    destBank,
				AccountType:        cell(r, colAccountType),
				DestinationAccount: cell(r, colDestAccount),
				Status:             cell(r, colStatus),
				Channel:            cell(r, colChannel),
				ExternalID:         cell(r, colID),
				Comment:            comment,
			},
		})
	}

	return recs, nil
}

// describe joins the non-empty parts as "NAME - COMMENT - (BANK)".
func describe(destName, comment, bank string) string {
	var parts []string

	if destName != "" {
		parts = append(parts, destName)
	}

	if comment != "" {
		parts = append(parts, comment)
	}

	if bank != "" {
		parts = append(parts, "("+bank+")")
	}

	if len(parts) == 0 {
		return strings.ToUpper(DefaultDescription)
	}

	return strings.ToUpper(strings.Join(parts, " - "))
}

func movementLabel(origin, destName, comment string) string {
	text := fold.Upper(origin + " " + destName + " " + comment)

	for _, p := range incomePatterns {
		if strings.Contains(text, p) {
			return record.LabelIncome
		}
	}

	return record.LabelExpense
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
