package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// TimeframeSelectedMsg carries the chosen window. Start and End are zero
// when All is set.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// Filter narrows a transaction query to the selected range.
func (m TimeframeSelectedMsg) Filter() transaction.Filter {
	if m.All {
		return transaction.Filter{}
	}

	start, end := m.Start, m.End

	return transaction.Filter{From: &start, To: &end}
}

var (
	errInvertedRange = errors.New("the range ends before it starts")
	boundLayouts     = []string{time.DateOnly, "02/01/2006", "02-01-2006"}
)

// parseBound reads one end of a custom range: a day as YYYY-MM-DD or
// DD/MM/YYYY, or a whole month as YYYY-MM. A month expands to its first
// day for the start and its last day for the end.
func parseBound(s string, isEnd bool) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse("2006-01", s); err == nil {
		if isEnd {
			return t.AddDate(0, 1, -1), nil
		}

		return t, nil
	}

	return time.Time{}, fmt.Errorf("%q is not a date (YYYY-MM-DD, DD/MM/YYYY) or month (YYYY-MM)", s)
}

// TimeframePicker lets the user choose a preset window or type a range.
type TimeframePicker struct {
	selected period.Timeframe
	minFrame period.Timeframe
	now      func() time.Time

	form *huh.Form
	err  error
}

// NewTimeframePicker offers the presets from minFrame onwards.
func NewTimeframePicker(minFrame period.Timeframe) TimeframePicker {
	return TimeframePicker{
		selected: minFrame,
		minFrame: minFrame,
		now:      time.Now,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		m.selected = max(m.selected-1, m.minFrame)
	case tea.KeyDown:
		m.selected = min(m.selected+1, period.Custom)
	case tea.KeyEnter:
		return m.choose()
	}

	return m, nil
}

func (m TimeframePicker) choose() (TimeframePicker, tea.Cmd) {
	switch m.selected {
	case period.Custom:
		m.err = nil
		m.form = newRangeForm()

		return m, m.form.Init()
	case period.All:
		return m, selected(TimeframeSelectedMsg{All: true})
	}

	start, end := m.selected.Bounds(m.now())

	return m, selected(TimeframeSelectedMsg{Start: start, End: end})
}

func newRangeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("from").
				Title("From").
				Placeholder("2024-01-01, 01/01/2024 or 2024-01").
				Validate(func(s string) error {
					_, err := parseBound(s, false)
					return err
				}),
			huh.NewInput().
				Key("to").
				Title("To").
				Placeholder("2024-03-31, 31/03/2024 or 2024-03").
				Validate(func(s string) error {
					_, err := parseBound(s, true)
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m TimeframePicker) updateForm(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.err = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m.submitCustom(m.form.GetString("from"), m.form.GetString("to"))
}

// submitCustom validates a typed range and emits it widened to whole days.
// An invalid range reopens the form with the error shown.
func (m TimeframePicker) submitCustom(from, to string) (TimeframePicker, tea.Cmd) {
	start, err := parseBound(from, false)
	if err == nil {
		var end time.Time

		end, err = parseBound(to, true)
		if err == nil && end.Before(start) {
			err = errInvertedRange
		}

		if err == nil {
			m.form, m.err = nil, nil
			start, end = period.Normalize(start, end)

			return m, selected(TimeframeSelectedMsg{Start: start, End: end})
		}
	}

	m.err = err
	m.form = newRangeForm()

	return m, m.form.Init()
}

func selected(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("\n\nError: " + m.err.Error())
	}

	if m.form != nil {
		return "Custom range:\n\n" + m.form.View() + "\n(Esc to go back)" + errStr
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	now := m.now()
	hint := lipgloss.NewStyle().Faint(true)

	for tf := m.minFrame; tf <= period.Custom; tf++ {
		cursor := " "
		if tf == m.selected {
			cursor = ">"
		}

		window := ""
		if tf != period.All && tf != period.Custom {
			start, end := tf.Bounds(now)
			window = hint.Render(fmt.Sprintf("  %s to %s", FormatDate(start), FormatDate(end)))
		}

		fmt.Fprintf(&b, "%s %-14s%s\n", cursor, tf.String(), window)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the preset list is showing.
func (m TimeframePicker) IsSelecting() bool {
	return m.form == nil
}

// Reset returns the picker to its first preset.
func (m *TimeframePicker) Reset() {
	m.selected = m.minFrame
	m.form = nil
	m.err = nil
}
