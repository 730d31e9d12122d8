package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// RuleKind records how a transaction's category was assigned.
type RuleKind string

const (
	RuleKeywordMatch   RuleKind = "keyword_match"
	RuleManualOverride RuleKind = "manual_override"
	RuleNoMatch        RuleKind = "no_match"
)

// Transaction represents a single bank movement.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Amount      int64 // Amount in cents, never negative
	Type        Type
	Category    string
	RuleKind    RuleKind
	Details     Details
	Period      Period
	CreatedAt   time.Time
	ModifiedAt  *time.Time
	DeletedAt   *time.Time
}

// Details holds the format-specific columns some statement layouts carry.
type Details struct {
	Origin             string
	DestinationName    string
	DestinationTaxID   string
	DestinationBank    string
	AccountType        string
	DestinationAccount string
	Status             string
	Channel            string
	ExternalID         string
	Comment            string
	Balance            *int64 // cents
}

// Period holds calendar fields derived from Date.
type Period struct {
	Year      int
	Month     int
	Day       int
	ISOYear   int
	Week      int
	Weekday   int // 0=Monday .. 6=Sunday
	MonthName string
	YearMonth string
	YearWeek  string
}

// Clone returns a copy that shares no mutable state with t.
func (t *Transaction) Clone() *Transaction {
	c := *t

	if t.Details.Balance != nil {
		c.Details.Balance = new(*t.Details.Balance)
	}

	if t.ModifiedAt != nil {
		c.ModifiedAt = new(*t.ModifiedAt)
	}

	if t.DeletedAt != nil {
		c.DeletedAt = new(*t.DeletedAt)
	}

	return &c
}
