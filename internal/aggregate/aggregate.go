// Package aggregate computes calendar summaries and budget indicators over
// a transaction set. Amounts are summed in cents and reported in currency
// units rounded to two decimals.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type Status string

const (
	StatusOver   Status = "over"
	StatusWithin Status = "within"
	StatusNoData Status = "no data"
)

const (
	daysPerMonth = 30
	daysPerWeek  = 7
)

type MonthlyRow struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Label   string  `json:"year_month"`
	Income  float64 `json:"total_income"`
	Expense float64 `json:"total_expense"`
	Net     float64 `json:"net"`
}

type WeeklyRow struct {
	Year    int     `json:"year"`
	Week    int     `json:"week"`
	Label   string  `json:"year_week"`
	Income  float64 `json:"total_income"`
	Expense float64 `json:"total_expense"`
	Net     float64 `json:"net"`
}

type DailyRow struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"daily_net"`
	Balance float64 `json:"balance"`
}

type Averages struct {
	Income  float64 `json:"average_income"`
	Expense float64 `json:"average_expense"`
}

type WeeklyStatus struct {
	Status     Status  `json:"status"`
	Spent      float64 `json:"current_week_spent"`
	Budget     float64 `json:"weekly_budget"`
	Difference float64 `json:"difference"`
	Week       string  `json:"week,omitempty"`
}

// Bundle is the full aggregation result. It is always recomputed from a
// complete transaction set.
type Bundle struct {
	Monthly        []MonthlyRow `json:"monthly"`
	Weekly         []WeeklyRow  `json:"weekly"`
	Daily          []DailyRow   `json:"daily_balance"`
	Averages       Averages     `json:"averages"`
	DailyReference float64      `json:"daily_reference_spend"`
	WeeklyStatus   WeeklyStatus `json:"weekly_status"`
}

// totals holds income and expense sums in cents.
type totals struct {
	income  int64
	expense int64
}

func (t *totals) add(tx *transaction.Transaction) {
	switch tx.Type {
	case transaction.TypeIncome:
		t.income += tx.Amount
	case transaction.TypeExpense:
		t.expense += tx.Amount
	}
}

func (t totals) net() int64 { return t.income - t.expense }

func pesos(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func round(d decimal.Decimal) float64 {
	return d.RoundBank(2).InexactFloat64()
}

type monthKey struct{ year, month int }

type weekKey struct{ year, week int }

func Monthly(txs []*transaction.Transaction) []MonthlyRow {
	buckets := map[monthKey]*totals{}

	for _, tx := range txs {
		k := monthKey{tx.Date.Year(), int(tx.Date.Month())}
		if buckets[k] == nil {
			buckets[k] = &totals{}
		}

		buckets[k].add(tx)
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b monthKey) int {
		return cmp.Or(cmp.Compare(a.year, b.year), cmp.Compare(a.month, b.month))
	})

	rows := make([]MonthlyRow, 0, len(keys))

	for _, k := range keys {
		t := buckets[k]
		rows = append(rows, MonthlyRow{
			Year:    k.year,
			Month:   k.month,
			Label:   period.MonthLabel(k.year, k.month),
			Income:  round(pesos(t.income)),
			Expense: round(pesos(t.expense)),
			Net:     round(pesos(t.net())),
		})
	}

	return rows
}

// Weekly groups by ISO year and ISO week.
func Weekly(txs []*transaction.Transaction) []WeeklyRow {
	buckets := map[weekKey]*totals{}

	for _, tx := range txs {
		y, w := tx.Date.ISOWeek()

		k := weekKey{y, w}
		if buckets[k] == nil {
			buckets[k] = &totals{}
		}

		buckets[k].add(tx)
	}

	keys := make([]weekKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b weekKey) int {
		return cmp.Or(cmp.Compare(a.year, b.year), cmp.Compare(a.week, b.week))
	})

	rows := make([]WeeklyRow, 0, len(keys))

	for _, k := range keys {
		t := buckets[k]
		rows = append(rows, WeeklyRow{
			Year:    k.year,
			Week:    k.week,
			Label:   period.WeekLabel(k.year, k.week),
			Income:  round(pesos(t.income)),
			Expense: round(pesos(t.expense)),
			Net:     round(pesos(t.net())),
		})
	}

	return rows
}

// Average returns the mean monthly income and expense, or zeros when there
// are no months.
func Average(monthly []MonthlyRow) Averages {
	if len(monthly) == 0 {
		return Averages{}
	}

	var income, expense decimal.Decimal

	for _, r := range monthly {
		income = income.Add(decimal.NewFromFloat(r.Income))
		expense = expense.Add(decimal.NewFromFloat(r.Expense))
	}

	n := decimal.NewFromInt(int64(len(monthly)))

	return Averages{
		Income:  round(income.Div(n)),
		Expense: round(expense.Div(n)),
	}
}

// DailyReference is the average monthly expense spread over a 30-day month.
func DailyReference(avgExpense float64) float64 {
	if avgExpense == 0 {
		return 0
	}

	return round(decimal.NewFromFloat(avgExpense).Div(decimal.NewFromInt(daysPerMonth)))
}

// CurrentWeek compares the expenses of the week holding the latest
// transaction against seven days of the daily reference spend.
func CurrentWeek(txs []*transaction.Transaction, dailyRef float64) WeeklyStatus {
	if len(txs) == 0 || dailyRef == 0 {
		return WeeklyStatus{Status: StatusNoData}
	}

	latest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}

	year, week := latest.ISOWeek()

	var spent int64

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense {
			continue
		}

		if y, w := tx.Date.ISOWeek(); y == year && w == week {
			spent += tx.Amount
		}
	}

	budget := decimal.NewFromFloat(dailyRef).Mul(decimal.NewFromInt(daysPerWeek))
	diff := pesos(spent).Sub(budget)

	status := StatusWithin
	if diff.IsPositive() {
		status = StatusOver
	}

	return WeeklyStatus{
		Status:     status,
		Spent:      round(pesos(spent)),
		Budget:     round(budget),
		Difference: round(diff),
		Week:       period.WeekLabel(year, week),
	}
}

// DailyBalance sums each day's income and expense and accumulates the net
// into a running balance, oldest day first.
func DailyBalance(txs []*transaction.Transaction) []DailyRow {
	buckets := map[time.Time]*totals{}

	for _, tx := range txs {
		d := time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, time.UTC)
		if buckets[d] == nil {
			buckets[d] = &totals{}
		}

		buckets[d].add(tx)
	}

	days := make([]time.Time, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}

	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	rows := make([]DailyRow, 0, len(days))

	var balance int64

	for _, d := range days {
		t := buckets[d]
		balance += t.net()

		rows = append(rows, DailyRow{
			Date:    d.Format(time.DateOnly),
			Income:  round(pesos(t.income)),
			Expense: round(pesos(t.expense)),
			Net:     round(pesos(t.net())),
			Balance: round(pesos(balance)),
		})
	}

	return rows
}

func All(txs []*transaction.Transaction) Bundle {
	monthly := Monthly(txs)
	avg := Average(monthly)
	dailyRef := DailyReference(avg.Expense)

	return Bundle{
		Monthly:        monthly,
		Weekly:         Weekly(txs),
		Daily:          DailyBalance(txs),
		Averages:       avg,
		DailyReference: dailyRef,
		WeeklyStatus:   CurrentWeek(txs, dailyRef),
	}
}

// ByCategory returns the count and total of each (category, type) pair,
// ordered by category then type.
func ByCategory(txs []*transaction.Transaction) []transaction.CategoryTotal {
	type key struct {
		category string
		typ      transaction.Type
	}

	index := map[key]int{}

	var out []transaction.CategoryTotal

	for _, tx := range txs {
		k := key{tx.Category, tx.Type}

		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, transaction.CategoryTotal{Category: tx.Category, Type: tx.Type})
		}

		out[i].Count++
		out[i].Total += tx.Amount
	}

	slices.SortFunc(out, func(a, b transaction.CategoryTotal) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Type, b.Type))
	})

	return out
}
