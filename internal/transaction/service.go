package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter Filter) ([]*Transaction, error)
	CountTransactions(ctx context.Context, filter Filter) (int, error)
	SetCategory(ctx context.Context, id uuid.UUID, category string, kind RuleKind) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error

	CategoryTotals(ctx context.Context, filter Filter) ([]CategoryTotal, error)
	Categories(ctx context.Context) ([]string, error)

	BeginImport(ctx context.Context) (ImportTx, error)
}

type ImportTx interface {
	DeleteAll(ctx context.Context) error
	FindDuplicates(ctx context.Context, txs []*Transaction) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Categorizer assigns a category name from a transaction's text fields.
type Categorizer interface {
	Categorize(description, destinationName, comment string) string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SaveMode selects how a batch is merged into the store.
type SaveMode string

const (
	ModeAppend  SaveMode = "append"
	ModeReplace SaveMode = "replace"
)

// Filter narrows list, count and total queries. Zero values mean "any".
type Filter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Type     Type
	Search   string
	Limit    int
	Offset   int
}

type CategoryTotal struct {
	Category string
	Type     Type
	Count    int
	Total    int64
}

type SaveResult struct {
	Inserted []*Transaction
	Skipped  int
}

type RowError struct {
	ID  uuid.UUID
	Err error
}

type RecategorizeResult struct {
	Total     int
	Updated   int
	Unchanged int
	Kept      int // manual overrides left untouched
	Failed    []RowError
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// All returns every stored transaction regardless of pagination.
func (s *Service) All(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, Filter{})
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.repo.CountTransactions(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *Service) ClearAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *Service) CategoryTotals(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	return s.repo.CategoryTotals(ctx, filter)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// UpdateCategory manually overrides the category of a stored transaction.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, category string) (*Transaction, error) {
	if err := s.repo.SetCategory(ctx, id, category, RuleManualOverride); err != nil {
		return nil, err
	}

	return s.repo.GetTransaction(ctx, id)
}

// Save persists a batch. Append skips rows already stored or repeated within
// the batch; Replace clears the store first.
func (s *Service) Save(ctx context.Context, txs []*Transaction, mode SaveMode) (*SaveResult, error) {
	if len(txs) == 0 && mode != ModeReplace {
		return &SaveResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	var existing []*Transaction

	switch mode {
	case ModeReplace:
		if err := itx.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("clear transactions: %w", err)
		}
	case ModeAppend:
		existing, err = itx.FindDuplicates(ctx, txs)
		if err != nil {
			return nil, fmt.Errorf("find duplicates: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown save mode: %s", mode)
	}

	fresh, skipped := dedupe(txs, existing)

	if err := itx.CreateTransactions(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &SaveResult{Inserted: fresh, Skipped: skipped}, nil
}

// Recategorize runs c over every stored transaction and persists changed
// categories one row at a time. A failing row is recorded and skipped.
func (s *Service) Recategorize(ctx context.Context, c Categorizer) (*RecategorizeResult, error) {
	txs, err := s.repo.ListTransactions(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	result := &RecategorizeResult{Total: len(txs)}

	for _, tx := range txs {
		if tx.RuleKind == RuleManualOverride {
			result.Kept++
			continue
		}

		category, kind := Assign(c, tx)
		if category == tx.Category && kind == tx.RuleKind {
			result.Unchanged++
			continue
		}

		if err := s.repo.SetCategory(ctx, tx.ID, category, kind); err != nil {
			result.Failed = append(result.Failed, RowError{ID: tx.ID, Err: err})
			continue
		}

		result.Updated++
	}

	return result, nil
}

// Assign categorizes tx with c and derives the matching rule kind.
func Assign(c Categorizer, tx *Transaction) (string, RuleKind) {
	category := c.Categorize(tx.Description, tx.Details.DestinationName, tx.Details.Comment)
	if category == Uncategorized {
		return category, RuleNoMatch
	}

	return category, RuleKeywordMatch
}

// Uncategorized is the category of a transaction no rule matched.
const Uncategorized = "Sin categorizar"

type dupKey struct {
	Date        string
	Description string
	Amount      int64
	Type        Type
}

func keyOf(tx *Transaction) dupKey {
	return dupKey{
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
	}
}

func dedupe(txs, existing []*Transaction) ([]*Transaction, int) {
	seen := make(map[dupKey]struct{}, len(txs)+len(existing))
	for _, e := range existing {
		seen[keyOf(e)] = struct{}{}
	}

	fresh := make([]*Transaction, 0, len(txs))

	for _, tx := range txs {
		k := keyOf(tx)
		if _, found := seen[k]; found {
			continue
		}

		seen[k] = struct{}{}
		fresh = append(fresh, tx)
	}

	return fresh, len(txs) - len(fresh)
}
