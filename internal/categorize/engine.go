// Package categorize assigns categories to bank movements by keyword
// matching over an ordered rule dictionary.
package categorize

import (
	"strings"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// Engine matches transaction text against an effective dictionary
// (predefined rules overlaid with custom ones). An Engine is immutable after
// construction and safe for concurrent use.
type Engine struct {
	dict    Dictionary
	folded  [][]string
	persons PersonDetector
}

type Option func(*Engine)

// WithCustom overlays custom rules on the predefined dictionary.
func WithCustom(custom Dictionary) Option {
	return func(e *Engine) {
		e.dict = e.dict.Merge(custom)
	}
}

// WithDictionary replaces the base dictionary entirely.
func WithDictionary(d Dictionary) Option {
	return func(e *Engine) {
		e.dict = d
	}
}

// WithPersonDetector sets the person-to-person transfer detector. A nil
// detector disables the check.
func WithPersonDetector(d PersonDetector) Option {
	return func(e *Engine) {
		e.persons = d
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		dict:    Predefined(),
		persons: NewNameListDetector(DefaultFirstNames, DefaultLastNames),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.folded = make([][]string, len(e.dict))
	for i, r := range e.dict {
		e.folded[i] = make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			e.folded[i][j] = fold.Upper(kw)
		}
	}

	return e
}

// Dictionary returns a copy of the effective rule set.
func (e *Engine) Dictionary() Dictionary {
	d := make(Dictionary, len(e.dict))
	for i, r := range e.dict {
		r.Keywords = append([]string(nil), r.Keywords...)
		d[i] = r
	}

	return d
}

// Categorize returns the category for a movement. The description is
// searched first, then the destination name, then the comment; within each
// field the first rule with a matching keyword wins.
func (e *Engine) Categorize(description, destinationName, comment string) string {
	fields := [3]string{fold.Upper(description), fold.Upper(destinationName), fold.Upper(comment)}

	if e.persons != nil {
		for _, f := range fields {
			if e.persons.IsPerson(f) {
				return Transfers
			}
		}
	}

	for _, f := range fields {
		if f == "" {
			continue
		}

		if category, ok := e.match(f); ok {
			return category
		}
	}

	return transaction.Uncategorized
}

func (e *Engine) match(text string) (string, bool) {
	for i, keywords := range e.folded {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, kw) {
				return e.dict[i].Category, true
			}
		}
	}

	return "", false
}

// Apply returns categorized copies of txs. Manual overrides keep their
// category; every other row is recomputed. Inputs are not modified.
func (e *Engine) Apply(txs []*transaction.Transaction) []*transaction.Transaction {
	out := make([]*transaction.Transaction, len(txs))

	for i, tx := range txs {
		c := tx.Clone()
		if c.RuleKind != transaction.RuleManualOverride {
			c.Category, c.RuleKind = transaction.Assign(e, c)
		}

		out[i] = c
	}

	return out
}
