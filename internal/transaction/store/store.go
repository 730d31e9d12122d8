package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var transactionColumns = []string{
	"id", "date", "description", "amount", "type", "category", "rule_kind",
	"origin", "destination_name", "destination_tax_id", "destination_bank", "account_type",
	"destination_account", "status", "channel", "external_id", "comment", "balance",
	"created_at", "modified_at", "deleted_at",
}

// scanTransaction reads a row selected with transactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx      transaction.Transaction
		typ     string
		kind    string
		balance sql.NullInt64
		d       = &tx.Details
	)

	if err := s.Scan(
		&tx.ID, &tx.Date, &tx.Description, &tx.Amount, &typ, &tx.Category, &kind,
		&d.Origin, &d.DestinationName, &d.DestinationTaxID, &d.DestinationBank, &d.AccountType,
		&d.DestinationAccount, &d.Status, &d.Channel, &d.ExternalID, &d.Comment, &balance,
		&tx.CreatedAt, &tx.ModifiedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typ)
	tx.RuleKind = transaction.RuleKind(kind)
	tx.Period = period.Of(tx.Date)

	if balance.Valid {
		d.Balance = new(balance.Int64)
	}

	return &tx, nil
}

func applyFilter(q squirrel.SelectBuilder, f transaction.Filter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"deleted_at": nil})

	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}

	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.To})
	}

	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}

	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": f.Type})
	}

	if f.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + f.Search + "%"})
	}

	return q
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	q := applyFilter(psql.Select(transactionColumns...).From("transactions"), filter).
		OrderBy("date DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) CountTransactions(ctx context.Context, filter transaction.Filter) (int, error) {
	query, args, err := applyFilter(psql.Select("COUNT(*)").From("transactions"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

func (s *Store) SetCategory(ctx context.Context, id uuid.UUID, category string, kind transaction.RuleKind) error {
	query, args, err := psql.Update("transactions").
		Set("category", category).
		Set("rule_kind", kind).
		Set("modified_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	return expectAffected(res)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("transactions").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return expectAffected(res)
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}

	return nil
}

func (s *Store) CategoryTotals(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryTotal, error) {
	q := applyFilter(psql.Select("category", "type", "COUNT(*)", "COALESCE(SUM(amount), 0)").From("transactions"), filter).
		GroupBy("category", "type").
		OrderBy("category", "type")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summing categories: %w", err)
	}
	defer rows.Close()

	var totals []transaction.CategoryTotal

	for rows.Next() {
		var (
			t   transaction.CategoryTotal
			typ string
		)

		if err := rows.Scan(&t.Category, &typ, &t.Count, &t.Total); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}

		t.Type = transaction.Type(typ)
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category totals: %w", err)
	}

	return totals, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("DISTINCT category").
		From("transactions").
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

// importLockKey serializes concurrent imports: every import touches the
// whole table when replacing, so one key covers all of them.
func importLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("transactions:import"))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey()); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) DeleteAll(ctx context.Context) error {
	if _, err := itx.tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}

	return nil
}

type lookupKey struct {
	Date        string
	Description string
	Amount      int64
	Type        transaction.Type
}

func (itx *importTx) FindDuplicates(ctx context.Context, txs []*transaction.Transaction) ([]*transaction.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	minDate := txs[0].Date
	maxDate := txs[0].Date
	keySet := make(map[lookupKey]struct{}, len(txs))

	for _, t := range txs {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}

		if t.Date.After(maxDate) {
			maxDate = t.Date
		}

		keySet[lookupKey{
			Date:        t.Date.Format(time.DateOnly),
			Description: t.Description,
			Amount:      t.Amount,
			Type:        t.Type,
		}] = struct{}{}
	}

	query, args, err := applyFilter(psql.Select(transactionColumns...).From("transactions"), transaction.Filter{
		From: &minDate,
		To:   &maxDate,
	}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := itx.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		k := lookupKey{
			Date:        tx.Date.Format(time.DateOnly),
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        tx.Type,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		d := tx.Details
		p := period.Of(tx.Date)

		query, args, err := psql.Insert("transactions").
			Columns(
				"date", "description", "amount", "type", "category", "rule_kind",
				"origin", "destination_name", "destination_tax_id", "destination_bank", "account_type",
				"destination_account", "status", "channel", "external_id", "comment", "balance",
				"year", "month", "day", "week",
			).
			Values(
				tx.Date, tx.Description, tx.Amount, tx.Type, tx.Category, tx.RuleKind,
				d.Origin, d.DestinationName, d.DestinationTaxID, d.DestinationBank, d.AccountType,
				d.DestinationAccount, d.Status, d.Channel, d.ExternalID, d.Comment, d.Balance,
				p.Year, p.Month, p.Day, p.Week,
			).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("building insert: %w", err)
		}

		if err := itx.tx.QueryRowContext(ctx, query, args...).Scan(&tx.ID, &tx.CreatedAt); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
