// Package sheet reads the first worksheet of a statement file into a raw
// grid of trimmed cell strings, without assuming a header row.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
)

// Grid holds rows of cells. Row i is line i+1 of the sheet.
type Grid [][]string

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}

	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}

	return strings.TrimSpace(r[col])
}

// Header maps the non-empty labels of row to their column index. The first
// occurrence of a repeated label wins.
func (g Grid) Header(row int) map[string]int {
	cols := make(map[string]int)
	if row < 0 || row >= len(g) {
		return cols
	}

	for i := range g[row] {
		name := g.Cell(row, i)
		if name == "" {
			continue
		}

		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	return cols
}

var zipMagic = []byte("PK\x03\x04")

// Read opens path and reads its first sheet.
func Read(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrUnreadable, err)
	}
	defer f.Close()

	return ReadFrom(f)
}

// ReadFrom reads an xlsx workbook or a delimited text file from r. The
// format is chosen from the content, not the file name.
func ReadFrom(r io.Reader) (Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrUnreadable, err)
	}

	if bytes.HasPrefix(data, zipMagic) {
		return readWorkbook(bytes.NewReader(data))
	}

	return readDelimited(bytes.NewReader(data))
}

func readWorkbook(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", record.ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", record.ErrUnreadable)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", record.ErrUnreadable, sheets[0], err)
	}

	return Grid(rows), nil
}

func readDelimited(r io.Reader) (Grid, error) {
	utf8r, err := NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: detect encoding: %w", record.ErrUnreadable, err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrUnreadable, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", record.ErrUnreadable)
	}

	comma, body, ok := sepHint(data)
	if !ok {
		comma = sniffDelimiter(body)
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", record.ErrUnreadable, err)
	}

	return Grid(rows), nil
}

// sepHint reads the "sep=;" line Excel writes at the top of a CSV saved
// with an explicit list separator. It returns the separator and the data
// after that line.
func sepHint(data []byte) (rune, []byte, bool) {
	line, rest, _ := bytes.Cut(data, []byte("\n"))

	line = bytes.TrimSpace(line)
	if len(line) != len("sep=")+1 || !bytes.EqualFold(line[:4], []byte("sep=")) {
		return 0, data, false
	}

	return rune(line[4]), rest, true
}

// sniffDelimiter picks the most frequent of ';', ',' and tab over the first
// lines. Ties favor ';', the default of Spanish-locale exports.
func sniffDelimiter(data []byte) rune {
	lines := bytes.SplitN(data, []byte("\n"), 30)

	counts := map[rune]int{}
	for _, line := range lines {
		for _, d := range []rune{';', ',', '\t'} {
			counts[d] += bytes.Count(line, []byte(string(d)))
		}
	}

	best := ';'
	for _, d := range []rune{',', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}
