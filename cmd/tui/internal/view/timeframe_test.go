package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestTimeframePicker_Select(t *testing.T) {
	p := NewTimeframePicker(period.ThisMonth)
	p.now = func() time.Time { return time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC) }

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.False(t, msg.All)
	assert.Equal(t, day(2024, 2, 1), msg.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), msg.End)
	assert.True(t, p.IsSelecting())
	assert.Contains(t, p.View(), "2024-02-01 to 2024-02-29")
}

func TestTimeframePicker_UpStopsAtMinimum(t *testing.T) {
	p := NewTimeframePicker(period.LastMonth)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg := cmd().(TimeframeSelectedMsg)
	assert.True(t, msg.All)
	assert.Equal(t, transaction.Filter{}, msg.Filter())
}

func TestTimeframePicker_CustomOpensForm(t *testing.T) {
	p := NewTimeframePicker(period.Custom)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, p.IsSelecting())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, p.IsSelecting())
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in      string
		isEnd   bool
		want    time.Time
		wantErr bool
	}{
		{in: "2024-02-10", want: day(2024, 2, 10)},
		{in: "10/02/2024", want: day(2024, 2, 10)},
		{in: "10-02-2024", want: day(2024, 2, 10)},
		{in: "2024-02", want: day(2024, 2, 1)},
		{in: "2024-02", isEnd: true, want: day(2024, 2, 29)},
		{in: "febrero", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBound(tt.in, tt.isEnd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeframePicker_SubmitCustom(t *testing.T) {
	p := NewTimeframePicker(period.Custom)

	t.Run("Inverted range", func(t *testing.T) {
		got, _ := p.submitCustom("2024-02-01", "2024-01-01")
		assert.ErrorIs(t, got.err, errInvertedRange)
		assert.False(t, got.IsSelecting())
	})

	t.Run("Months", func(t *testing.T) {
		got, cmd := p.submitCustom("2024-01", "2024-02")
		require.NotNil(t, cmd)
		assert.NoError(t, got.err)

		f := cmd().(TimeframeSelectedMsg).Filter()
		require.NotNil(t, f.From)
		require.NotNil(t, f.To)
		assert.Equal(t, day(2024, 1, 1), *f.From)
		assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), *f.To)
	})
}
