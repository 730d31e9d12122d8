// Package clean coerces normalized statement rows into transactions,
// dropping rows whose date, amount or movement type is unusable.
package clean

import (
	"strings"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// Placeholder is the description given to rows without one.
const Placeholder = "Sin descripción"

var typeCodes = map[string]transaction.Type{
	"C":       transaction.TypeIncome,
	"CREDITO": transaction.TypeIncome,
	"INGRESO": transaction.TypeIncome,
	"INCOME":  transaction.TypeIncome,
	"D":       transaction.TypeExpense,
	"DEBITO":  transaction.TypeExpense,
	"GASTO":   transaction.TypeExpense,
	"EXPENSE": transaction.TypeExpense,
}

// MovementType maps a raw movement label to a transaction type. Unknown
// labels are kept upper-cased; an empty label reports false.
func MovementType(label string) (transaction.Type, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return "", false
	}

	if t, ok := typeCodes[fold.Upper(label)]; ok {
		return t, true
	}

	return transaction.Type(label), true
}

// Clean converts records into transactions and reports how many rows were
// dropped. Negative amounts are stored as their magnitude.
func Clean(recs []record.Record) ([]*transaction.Transaction, int) {
	txs := make([]*transaction.Transaction, 0, len(recs))

	for _, r := range recs {
		if r.Date.IsZero() || !r.Amount.Valid {
			continue
		}

		typ, ok := MovementType(r.Type)
		if !ok {
			continue
		}

		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			desc = Placeholder
		}

		txs = append(txs, &transaction.Transaction{
			Date:        Day(r.Date),
			Description: strings.ToUpper(desc),
			Amount:      ToCents(r.Amount.Decimal),
			Type:        typ,
			Details:     trimDetails(r.Details),
		})
	}

	return txs, len(recs) - len(txs)
}

func trimDetails(d transaction.Details) transaction.Details {
	for _, s := range []*string{
		&d.Origin, &d.DestinationName, &d.DestinationTaxID, &d.DestinationBank, &d.AccountType,
		&d.DestinationAccount, &d.Status, &d.Channel, &d.ExternalID, &d.Comment,
	} {
		*s = strings.TrimSpace(*s)
	}

	return d
}
