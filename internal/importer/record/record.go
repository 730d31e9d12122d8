// Package record defines the uniform row shape every statement layout is
// normalized into before cleaning.
package record

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

var (
	ErrUnreadable     = errors.New("spreadsheet could not be read")
	ErrMissingColumns = errors.New("required columns missing")
	ErrNoRows         = errors.New("no valid rows after cleaning")
)

// Movement labels emitted by layouts that know the direction of a row.
const (
	LabelIncome  = "INGRESO"
	LabelExpense = "GASTO"
)

// Record is one normalized statement row. A zero Date or an invalid Amount
// marks a value that could not be parsed; the cleaner drops such rows.
type Record struct {
	Date        time.Time
	Description string
	Amount      decimal.NullDecimal
	Type        string // raw movement label, mapped by the cleaner
	Details     transaction.Details
}
