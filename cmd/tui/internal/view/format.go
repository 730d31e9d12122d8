package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents with two decimals.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// FormatSigned prefixes expenses with a minus sign.
func FormatSigned(tx *transaction.Transaction) string {
	if tx.Type == transaction.TypeExpense {
		return "-" + FormatAmount(tx.Amount)
	}

	return FormatAmount(tx.Amount)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
