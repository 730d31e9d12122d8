package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/cartola/internal/importer/cartola"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
	"github.com/MrJamesThe3rd/cartola/internal/importer/tef"
)

// Format identifies a statement layout.
type Format string

const (
	FormatTEF     Format = "tef"
	FormatCartola Format = "cartola"
	FormatGeneric Format = "generic"
)

// Normalizer turns a raw sheet into uniform records.
type Normalizer interface {
	Normalize(g sheet.Grid) ([]record.Record, error)
}

// Detect classifies a raw grid by the header labels found at each layout's
// fixed header row. Cartola is checked before TEF.
func Detect(g sheet.Grid) Format {
	if len(g) > cartola.HeaderRow && rowHas(g[cartola.HeaderRow], "Fecha", "Descripción") {
		return FormatCartola
	}

	if len(g) > tef.HeaderRow && rowHas(g[tef.HeaderRow], "Fecha", "Origen") {
		return FormatTEF
	}

	return FormatGeneric
}

// DetectFile classifies the file at path. Unreadable files are Generic.
func DetectFile(path string) Format {
	g, err := sheet.Read(path)
	if err != nil {
		return FormatGeneric
	}

	return Detect(g)
}

// rowHas reports whether every token appears as a substring of some cell.
func rowHas(row []string, tokens ...string) bool {
	for _, token := range tokens {
		found := false

		for _, cell := range row {
			if strings.Contains(cell, token) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// FileError reports why a single file could not be ingested.
type FileError struct {
	Path   string
	Format Format
	Err    error
}

func (e *FileError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("%s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Reason returns a stable code for the failure.
func (e *FileError) Reason() string {
	switch {
	case errors.Is(e.Err, record.ErrUnreadable):
		return "unreadable"
	case errors.Is(e.Err, record.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(e.Err, record.ErrNoRows):
		return "no_rows"
	default:
		return "internal"
	}
}
