package clean

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// autoLayouts are the unambiguous forms tried before any explicit format.
var autoLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// explicitLayouts are tried in order; the first one that parses any value
// in the series is used for the whole series.
var explicitLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2-1-2006",
	"20060102",
}

// monthFirstLayouts are the last resort, tried value by value.
var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var serialRe = regexp.MustCompile(`^\d{1,7}(\.\d+)?$`)

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

// ParseDates parses a column of date cells. Unparseable cells yield the zero
// time. The whole column is parsed with one strategy so that day/month order
// stays consistent across rows.
func ParseDates(values []string) []time.Time {
	if out, n := parseAll(values, parseAuto); n > 0 {
		return out
	}

	for _, layout := range explicitLayouts {
		if out, n := parseAll(values, layoutParser(layout)); n > 0 {
			return out
		}
	}

	out, _ := parseAll(values, func(s string) (time.Time, bool) {
		for _, layout := range monthFirstLayouts {
			if t, ok := layoutParser(layout)(s); ok {
				return t, true
			}
		}

		return time.Time{}, false
	})

	return out
}

// ParseDate parses a single cell with the unambiguous forms only.
func ParseDate(s string) (time.Time, bool) {
	return parseAuto(strings.TrimSpace(s))
}

func parseAll(values []string, parse func(string) (time.Time, bool)) ([]time.Time, int) {
	out := make([]time.Time, len(values))
	n := 0

	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		if t, ok := parse(v); ok {
			out[i] = t
			n++
		}
	}

	return out, n
}

func parseAuto(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range autoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}

	if serialRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f >= 1 && f <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return Day(t), true
			}
		}
	}

	return time.Time{}, false
}

func layoutParser(layout string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, datePart(s))
		if err != nil {
			return time.Time{}, false
		}

		return Day(t), true
	}
}

// datePart drops a trailing clock time such as "15/01/2024 00:00:00".
func datePart(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 && strings.Contains(s[i:], ":") {
		return s[:i]
	}

	return s
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
