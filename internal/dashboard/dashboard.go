// Package dashboard runs the ingestion pipeline end to end: load, clean,
// categorize, enrich, aggregate and optionally persist.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/cartola/internal/aggregate"
	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/metrics"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

var ErrNoTransactions = errors.New("no transactions stored")

// SaveOptions controls whether a processed batch is persisted.
type SaveOptions struct {
	Save bool
	Mode transaction.SaveMode
}

// StoreStatus reports what happened to the batch in the store. A failed
// save does not fail processing; Error carries the reason instead.
type StoreStatus struct {
	Requested bool
	Saved     bool
	Mode      transaction.SaveMode
	Inserted  int
	Skipped   int
	Error     string
}

// Report is the full dashboard view of a transaction set.
type Report struct {
	Format       importer.Format
	Files        []string
	Failures     []*importer.FileError
	Dropped      int
	Transactions []*transaction.Transaction
	Aggregates   aggregate.Bundle
	Range        *period.Range
	Periods      period.Available
	Categories   []transaction.CategoryTotal
	Store        StoreStatus
	Warnings     []string
}

type Suggestions struct {
	Exact []categorize.Suggestion
	Fuzzy []categorize.FuzzySuggestion
}

type Stats struct {
	Available  bool
	Total      int
	Income     int64
	Expense    int64
	Categories []string
	Range      *period.Range
	Error      string
}

type Service struct {
	importer       *importer.Service
	transactions   *transaction.Service
	categories     *category.Service
	engineOpts     []categorize.Option
	fuzzyThreshold float64
}

type Option func(*Service)

// WithEngineOptions configures every engine the service builds.
func WithEngineOptions(opts ...categorize.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithPersonNames configures person detection from name lists. Empty lists
// keep the built-in names; enabled=false turns detection off.
func WithPersonNames(enabled bool, firstNames, lastNames []string) Option {
	if !enabled {
		return WithEngineOptions(categorize.WithPersonDetector(nil))
	}

	if len(firstNames) == 0 {
		firstNames = categorize.DefaultFirstNames
	}

	if len(lastNames) == 0 {
		lastNames = categorize.DefaultLastNames
	}

	return WithEngineOptions(categorize.WithPersonDetector(categorize.NewNameListDetector(firstNames, lastNames)))
}

func WithFuzzyThreshold(t float64) Option {
	return func(s *Service) {
		s.fuzzyThreshold = t
	}
}

func NewService(imp *importer.Service, txs *transaction.Service, cats *category.Service, opts ...Option) *Service {
	s := &Service{
		importer:       imp,
		transactions:   txs,
		categories:     cats,
		fuzzyThreshold: categorize.DefaultFuzzyThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// engine builds a categorization engine with the active custom categories.
// If they cannot be loaded the predefined rules are used and a warning is
// returned.
func (s *Service) engine(ctx context.Context) (*categorize.Engine, []string) {
	e, err := s.categories.Engine(ctx, s.engineOpts...)
	if err != nil {
		slog.Warn("custom categories unavailable, using predefined rules", "error", err)
		return categorize.New(s.engineOpts...), []string{"custom categories unavailable: " + err.Error()}
	}

	return e, nil
}

// Process runs the pipeline over the statement file at path.
func (s *Service) Process(ctx context.Context, path string, opts SaveOptions) (*Report, error) {
	res, err := s.importer.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return s.process(ctx, res, opts)
}

// ProcessReader is Process for an uploaded stream.
func (s *Service) ProcessReader(ctx context.Context, name string, r io.Reader, opts SaveOptions) (*Report, error) {
	res, err := s.importer.LoadReader(name, r)
	if err != nil {
		return nil, err
	}

	return s.process(ctx, res, opts)
}

func (s *Service) process(ctx context.Context, res importer.Result, opts SaveOptions) (*Report, error) {
	engine, warnings := s.engine(ctx)

	txs := categorizeAll(engine, res.Transactions)

	report := build(txs)
	report.Format = res.Format
	report.Files = []string{res.Path}
	report.Dropped = res.Dropped
	report.Warnings = warnings

	slog.Info("processed statement", "path", res.Path, "format", res.Format, "transactions", len(txs), "dropped", res.Dropped)

	if opts.Save {
		report.Store = s.save(ctx, txs, opts.Mode)
	}

	return report, nil
}

// History builds a report from the stored transactions matching filter.
func (s *Service) History(ctx context.Context, filter transaction.Filter) (*Report, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	return build(period.Enrich(txs)), nil
}

// LoadDir processes every statement file in dir as one batch. Failed files
// are reported and skipped. Rows repeated across files (same date, amount
// and description) are kept once. The batch is then saved with mode.
func (s *Service) LoadDir(ctx context.Context, dir string, mode transaction.SaveMode) (*Report, error) {
	res, err := s.importer.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	if len(res.Files) == 0 {
		return &Report{Failures: res.Failures}, fmt.Errorf("%w: no file in %s could be loaded", record.ErrNoRows, dir)
	}

	var (
		all     []*transaction.Transaction
		files   []string
		dropped int
	)

	for _, f := range res.Files {
		all = append(all, f.Transactions...)
		files = append(files, f.Path)
		dropped += f.Dropped
	}

	engine, warnings := s.engine(ctx)
	txs := categorizeAll(engine, Dedupe(all))

	report := build(txs)
	report.Files = files
	report.Failures = res.Failures
	report.Dropped = dropped
	report.Warnings = warnings
	report.Store = s.save(ctx, txs, mode)

	slog.Info("loaded directory", "dir", dir, "files", len(files), "failed", len(res.Failures), "transactions", len(txs))

	return report, nil
}

// Dedupe keeps the first transaction of every (date, amount, description).
func Dedupe(txs []*transaction.Transaction) []*transaction.Transaction {
	type key struct {
		date        string
		amount      int64
		description string
	}

	seen := make(map[key]struct{}, len(txs))
	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		k := key{tx.Date.Format("2006-01-02"), tx.Amount, tx.Description}
		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, tx)
	}

	return out
}

// Recategorize reapplies the current rules to every stored transaction.
// Stored assignments are left untouched when custom categories cannot be
// loaded.
func (s *Service) Recategorize(ctx context.Context) (*transaction.RecategorizeResult, error) {
	engine, err := s.categories.Engine(ctx, s.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading custom categories: %w", err)
	}

	res, err := s.transactions.Recategorize(ctx, engine)
	if err != nil {
		return nil, err
	}

	if res.Total == 0 {
		return res, ErrNoTransactions
	}

	metrics.RecategorizeFailures.Add(float64(len(res.Failed)))

	for _, f := range res.Failed {
		slog.Warn("failed to recategorize transaction", "id", f.ID, "error", f.Err)
	}

	return res, nil
}

// Suggest ranks categories for description. Fuzzy suggestions are computed
// only when no keyword matches exactly.
func (s *Service) Suggest(ctx context.Context, description string) Suggestions {
	engine, _ := s.engine(ctx)

	out := Suggestions{Exact: engine.Suggest(description)}
	if len(out.Exact) == 0 {
		out.Fuzzy = engine.FuzzySuggest(description, s.fuzzyThreshold)
	}

	return out
}

// Stats summarizes the store. Store errors are reported in Stats.Error.
func (s *Service) Stats(ctx context.Context) Stats {
	txs, err := s.transactions.All(ctx)
	if err != nil {
		slog.Warn("store unavailable", "error", err)
		return Stats{Error: err.Error()}
	}

	st := Stats{Available: true, Total: len(txs)}

	names := map[string]struct{}{}

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			st.Income += tx.Amount
		case transaction.TypeExpense:
			st.Expense += tx.Amount
		}

		if _, ok := names[tx.Category]; !ok {
			names[tx.Category] = struct{}{}
			st.Categories = append(st.Categories, tx.Category)
		}
	}

	if r, ok := period.DateRange(txs); ok {
		st.Range = &r
	}

	return st
}

// CategorySummary returns stored totals per category and type.
func (s *Service) CategorySummary(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryTotal, error) {
	return s.transactions.CategoryTotals(ctx, filter)
}

func (s *Service) save(ctx context.Context, txs []*transaction.Transaction, mode transaction.SaveMode) StoreStatus {
	if mode == "" {
		mode = transaction.ModeAppend
	}

	st := StoreStatus{Requested: true, Mode: mode}

	res, err := s.transactions.Save(ctx, txs, mode)
	if err != nil {
		slog.Error("failed to save transactions", "mode", mode, "error", err)
		st.Error = err.Error()

		return st
	}

	st.Saved = true
	st.Inserted = len(res.Inserted)
	st.Skipped = res.Skipped

	return st
}

func categorizeAll(engine *categorize.Engine, txs []*transaction.Transaction) []*transaction.Transaction {
	out := period.Enrich(engine.Apply(txs))

	for _, tx := range out {
		metrics.RowsCategorized.WithLabelValues(string(tx.RuleKind)).Inc()
	}

	return out
}

func build(txs []*transaction.Transaction) *Report {
	r := &Report{
		Transactions: txs,
		Aggregates:   aggregate.All(txs),
		Periods:      period.AvailablePeriods(txs),
		Categories:   aggregate.ByCategory(txs),
	}

	if rng, ok := period.DateRange(txs); ok {
		r.Range = &rng
	}

	return r
}
