// Package period derives calendar fields from transaction dates.
package period

import (
	"fmt"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// Of returns the calendar fields of d. Weeks follow ISO-8601, so the week
// label uses the ISO year, which differs from d.Year() around new year.
func Of(d time.Time) transaction.Period {
	isoYear, week := d.ISOWeek()

	return transaction.Period{
		Year:      d.Year(),
		Month:     int(d.Month()),
		Day:       d.Day(),
		ISOYear:   isoYear,
		Week:      week,
		Weekday:   (int(d.Weekday()) + 6) % 7,
		MonthName: d.Month().String(),
		YearMonth: d.Format("2006-01"),
		YearWeek:  WeekLabel(isoYear, week),
	}
}

// WeekLabel formats an ISO year and week as "YYYY-Www".
func WeekLabel(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthLabel formats a year and month as "YYYY-MM".
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// Enrich returns copies of txs with Period populated. Inputs are not modified.
func Enrich(txs []*transaction.Transaction) []*transaction.Transaction {
	out := make([]*transaction.Transaction, len(txs))

	for i, tx := range txs {
		c := tx.Clone()
		c.Period = Of(c.Date)
		out[i] = c
	}

	return out
}

// Range summarizes the dates covered by a transaction set.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// DateRange returns the earliest and latest dates in txs and the inclusive
// number of days between them. ok is false when txs is empty.
func DateRange(txs []*transaction.Transaction) (r Range, ok bool) {
	if len(txs) == 0 {
		return Range{}, false
	}

	r.Start, r.End = txs[0].Date, txs[0].Date

	for _, tx := range txs[1:] {
		if tx.Date.Before(r.Start) {
			r.Start = tx.Date
		}

		if tx.Date.After(r.End) {
			r.End = tx.Date
		}
	}

	r.Days = daysBetween(r.Start, r.End) + 1

	return r, true
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	return int(b.Sub(a).Hours() / 24)
}

// Available lists the distinct periods present in a transaction set, each
// sorted ascending.
type Available struct {
	Years      []int    `json:"years"`
	Months     []int    `json:"months"`
	Weeks      []int    `json:"weeks"`
	YearMonths []string `json:"year_months"`
	YearWeeks  []string `json:"year_weeks"`
}

func AvailablePeriods(txs []*transaction.Transaction) Available {
	var (
		years      = map[int]struct{}{}
		months     = map[int]struct{}{}
		weeks      = map[int]struct{}{}
		yearMonths = map[string]struct{}{}
		yearWeeks  = map[string]struct{}{}
	)

	for _, tx := range txs {
		p := Of(tx.Date)
		years[p.Year] = struct{}{}
		months[p.Month] = struct{}{}
		weeks[p.Week] = struct{}{}
		yearMonths[p.YearMonth] = struct{}{}
		yearWeeks[p.YearWeek] = struct{}{}
	}

	return Available{
		Years:      sortedKeys(years),
		Months:     sortedKeys(months),
		Weeks:      sortedKeys(weeks),
		YearMonths: sortedKeys(yearMonths),
		YearWeeks:  sortedKeys(yearWeeks),
	}
}

func sortedKeys[K int | string](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Timeframe is a named date window relative to a reference day.
type Timeframe int

const (
	ThisWeek Timeframe = iota
	LastWeek
	ThisMonth
	LastMonth
	All
	Custom
)

func (t Timeframe) String() string {
	switch t {
	case ThisWeek:
		return "This Week"
	case LastWeek:
		return "Last Week"
	case ThisMonth:
		return "This Month"
	case LastMonth:
		return "Last Month"
	case All:
		return "All Time"
	case Custom:
		return "Custom Range"
	}

	return "Unknown"
}

// Bounds returns the inclusive window of tf around now. All and Custom
// return zero times.
func (t Timeframe) Bounds(now time.Time) (time.Time, time.Time) {
	var start, end time.Time

	switch t {
	case ThisWeek:
		start = now.AddDate(0, 0, -Of(now).Weekday)
		end = now
	case LastWeek:
		end = now.AddDate(0, 0, -Of(now).Weekday-1)
		start = end.AddDate(0, 0, -6)
	case ThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = now
	case LastMonth:
		lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		start = lastMonth
		end = start.AddDate(0, 1, -1)
	default:
		return start, end
	}

	return Normalize(start, end)
}

// Normalize widens a date range to whole days in UTC.
func Normalize(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
}
