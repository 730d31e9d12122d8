package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want transaction.Period
	}{
		{
			name: "Mid year",
			date: date(2024, 1, 15),
			want: transaction.Period{
				Year: 2024, Month: 1, Day: 15, ISOYear: 2024, Week: 3, Weekday: 0,
				MonthName: "January", YearMonth: "2024-01", YearWeek: "2024-W03",
			},
		},
		{
			name: "Sunday",
			date: date(2024, 3, 10),
			want: transaction.Period{
				Year: 2024, Month: 3, Day: 10, ISOYear: 2024, Week: 10, Weekday: 6,
				MonthName: "March", YearMonth: "2024-03", YearWeek: "2024-W10",
			},
		},
		{
			name: "New year belongs to previous ISO year",
			date: date(2021, 1, 1),
			want: transaction.Period{
				Year: 2021, Month: 1, Day: 1, ISOYear: 2020, Week: 53, Weekday: 4,
				MonthName: "January", YearMonth: "2021-01", YearWeek: "2020-W53",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Of(tt.date))
		})
	}
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	in := []*transaction.Transaction{{Date: date(2024, 2, 29)}}

	out := period.Enrich(in)

	require.Len(t, out, 1)
	assert.Equal(t, "2024-02", out[0].Period.YearMonth)
	assert.Empty(t, in[0].Period.YearMonth)
	assert.NotSame(t, in[0], out[0])
}

func TestDateRange(t *testing.T) {
	_, ok := period.DateRange(nil)
	assert.False(t, ok)

	r, ok := period.DateRange([]*transaction.Transaction{
		{Date: date(2024, 1, 10)},
		{Date: date(2024, 1, 1)},
		{Date: date(2024, 1, 31)},
	})
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 1), r.Start)
	assert.Equal(t, date(2024, 1, 31), r.End)
	assert.Equal(t, 31, r.Days)
}

func TestAvailablePeriods(t *testing.T) {
	got := period.AvailablePeriods([]*transaction.Transaction{
		{Date: date(2024, 2, 5)},
		{Date: date(2023, 12, 28)},
		{Date: date(2024, 2, 6)},
	})

	assert.Equal(t, []int{2023, 2024}, got.Years)
	assert.Equal(t, []int{2, 12}, got.Months)
	assert.Equal(t, []int{6, 52}, got.Weeks)
	assert.Equal(t, []string{"2023-12", "2024-02"}, got.YearMonths)
	assert.Equal(t, []string{"2023-W52", "2024-W06"}, got.YearWeeks)
}

func TestTimeframe_Bounds(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		name      string
		tf        period.Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"This week", period.ThisWeek, date(2024, 5, 13), time.Date(2024, 5, 15, 23, 59, 59, 0, time.UTC)},
		{"Last week", period.LastWeek, date(2024, 5, 6), time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC)},
		{"This month", period.ThisMonth, date(2024, 5, 1), time.Date(2024, 5, 15, 23, 59, 59, 0, time.UTC)},
		{"Last month", period.LastMonth, date(2024, 4, 1), time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)},
		{"All", period.All, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.tf.Bounds(now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
