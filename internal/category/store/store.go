package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/cartola/internal/category"
)

const uniqueViolation = "23505"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var columns = []string{"id", "name", "keywords", "description", "active", "created_at", "modified_at"}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*category.Category, error) {
	var (
		c        category.Category
		keywords []byte
	)

	if err := s.Scan(&c.ID, &c.Name, &keywords, &c.Description, &c.Active, &c.CreatedAt, &c.ModifiedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
		return nil, fmt.Errorf("decoding keywords: %w", err)
	}

	return &c, nil
}

func (s *Store) ListActive(ctx context.Context) ([]*category.Category, error) {
	query, args, err := psql.Select(columns...).
		From("custom_categories").
		Where(squirrel.Eq{"active": true}).
		OrderBy("created_at", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing custom categories: %w", err)
	}
	defer rows.Close()

	var out []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning custom category: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query, args, err := psql.Select(columns...).
		From("custom_categories").
		Where(squirrel.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting custom category: %w", err)
	}

	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	keywords, err := json.Marshal(c.Keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	query, args, err := psql.Insert("custom_categories").
		Columns("name", "keywords", "description", "active").
		Values(c.Name, string(keywords), c.Description, true).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return mapError(err)
	}

	c.Active = true

	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	keywords, err := json.Marshal(c.Keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	query, args, err := psql.Update("custom_categories").
		Set("name", c.Name).
		Set("keywords", string(keywords)).
		Set("description", c.Description).
		Set("modified_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID, "active": true}).
		Suffix("RETURNING modified_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ModifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		return mapError(err)
	}

	return nil
}

func (s *Store) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("custom_categories").
		Set("active", false).
		Set("modified_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deactivating custom category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return category.ErrNameConflict
	}

	return fmt.Errorf("saving custom category: %w", err)
}
