package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/cartola/internal/importer/cartola"
	"github.com/MrJamesThe3rd/cartola/internal/importer/clean"
	"github.com/MrJamesThe3rd/cartola/internal/importer/generic"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
	"github.com/MrJamesThe3rd/cartola/internal/importer/tef"
	"github.com/MrJamesThe3rd/cartola/internal/metrics"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// ErrNoFiles is returned by LoadDir when dir holds no statement files.
var ErrNoFiles = errors.New("no statement files found")

// Extensions lists the file types LoadDir picks up.
var Extensions = []string{".xlsx", ".xls", ".csv"}

// Result is the outcome of ingesting one file.
type Result struct {
	Path         string
	Format       Format
	Transactions []*transaction.Transaction
	Dropped      int
}

// DirResult aggregates a directory load. Failed files are reported, not fatal.
type DirResult struct {
	Files    []Result
	Failures []*FileError
}

type Service struct {
	normalizers map[Format]Normalizer
}

type Option func(*Service)

// WithNormalizer replaces the normalizer used for a format.
func WithNormalizer(f Format, n Normalizer) Option {
	return func(s *Service) {
		s.normalizers[f] = n
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		normalizers: map[Format]Normalizer{
			FormatTEF:     tef.New(),
			FormatCartola: cartola.New(),
			FormatGeneric: generic.New(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LoadFile reads, normalizes and cleans the statement at path.
func (s *Service) LoadFile(path string) (Result, error) {
	g, err := sheet.Read(path)
	if err != nil {
		metrics.FilesProcessed.WithLabelValues(string(FormatGeneric), "unreadable").Inc()
		return Result{}, &FileError{Path: path, Err: err}
	}

	res, err := s.Load(g)
	res.Path = path

	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) {
			fe.Path = path
		}

		return res, err
	}

	return res, nil
}

// LoadReader is LoadFile for an uploaded stream; name only labels errors.
func (s *Service) LoadReader(name string, r io.Reader) (Result, error) {
	g, err := sheet.ReadFrom(r)
	if err != nil {
		metrics.FilesProcessed.WithLabelValues(string(FormatGeneric), "unreadable").Inc()
		return Result{Path: name}, &FileError{Path: name, Err: err}
	}

	res, err := s.Load(g)
	res.Path = name

	var fe *FileError
	if errors.As(err, &fe) {
		fe.Path = name
	}

	return res, err
}

// Load runs detection and normalization on an already read grid. A fixed
// layout that yields no records falls back to the generic reader.
func (s *Service) Load(g sheet.Grid) (Result, error) {
	format := Detect(g)

	recs, err := s.normalize(format, g)
	if format != FormatGeneric && (err != nil || len(recs) == 0) {
		slog.Warn("layout produced no rows, falling back to generic", "format", format, "error", err)

		format = FormatGeneric
		recs, err = s.normalize(format, g)
	}

	if err != nil {
		metrics.FilesProcessed.WithLabelValues(string(format), "failed").Inc()
		return Result{Format: format}, &FileError{Format: format, Err: err}
	}

	txs, dropped := clean.Clean(recs)
	metrics.RowsDropped.WithLabelValues(string(format)).Add(float64(dropped))

	if len(txs) == 0 {
		metrics.FilesProcessed.WithLabelValues(string(format), "empty").Inc()
		return Result{Format: format, Dropped: dropped}, &FileError{Format: format, Err: record.ErrNoRows}
	}

	metrics.FilesProcessed.WithLabelValues(string(format), "ok").Inc()

	if dropped > 0 {
		slog.Info("dropped invalid rows", "format", format, "dropped", dropped, "kept", len(txs))
	}

	return Result{Format: format, Transactions: txs, Dropped: dropped}, nil
}

func (s *Service) normalize(format Format, g sheet.Grid) ([]record.Record, error) {
	n, ok := s.normalizers[format]
	if !ok {
		return nil, fmt.Errorf("no normalizer for format %q", format)
	}

	return n.Normalize(g)
}

// LoadDir loads every statement file in dir in name order. Files that fail
// are collected in Failures and skipped.
func (s *Service) LoadDir(ctx context.Context, dir string) (DirResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirResult{}, fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		out   DirResult
		found int
	)

	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return out, err
		}

		found++
		path := filepath.Join(dir, e.Name())

		res, err := s.LoadFile(path)
		if err != nil {
			var fe *FileError
			if !errors.As(err, &fe) {
				fe = &FileError{Path: path, Format: res.Format, Err: err}
			}

			slog.Warn("skipping file", "path", path, "reason", fe.Reason(), "error", fe.Err)
			out.Failures = append(out.Failures, fe)

			continue
		}

		out.Files = append(out.Files, res)
	}

	if found == 0 {
		return out, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	return out, nil
}
