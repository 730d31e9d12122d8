package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type ReviewState int

const (
	StateSelectTimeframe ReviewState = iota
	StateReviewing
)

// ReviewModel walks through uncategorized transactions one at a time,
// offering keyword and fuzzy suggestions for each.
type ReviewModel struct {
	CommonModel
	txService *transaction.Service
	dashboard *dashboard.Service

	state           ReviewState
	timeframePicker TimeframePicker

	queue      []*transaction.Transaction
	currentTx  *transaction.Transaction
	candidates []string
	candIdx    int

	categoryInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(txSvc *transaction.Service, dash *dashboard.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Category"
	ti.Width = 50

	return ReviewModel{
		txService:       txSvc,
		dashboard:       dash,
		categoryInput:   ti,
		state:           StateSelectTimeframe,
		timeframePicker: NewTimeframePicker(period.ThisWeek),
	}
}

func (m ReviewModel) Title() string { return "Review" }

func (m ReviewModel) ShortHelp() string {
	if m.state == StateReviewing {
		return "Enter: save & next | Tab: next suggestion | Ctrl+S: skip | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = StateReviewing
		m.loading = true

		return m, m.loadPendingCmd(msg.Filter())

	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.currentTx = nil
			m.status = "No uncategorized transactions found."

			return m, nil
		}

		cmd := m.nextCmd()

		return m, cmd

	case suggestionsMsg:
		m.candidates = msg.candidates
		m.candIdx = 0
		m.categoryInput.SetValue("")

		if len(m.candidates) > 0 {
			m.categoryInput.SetValue(m.candidates[0])
		}

		m.categoryInput.Focus()

		return m, textinput.Blink

	case saveResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		cmd := m.nextCmd()

		return m, cmd
	}

	switch m.state {
	case StateSelectTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case StateReviewing:
		return m.updateReviewing(msg)
	}

	return m, nil
}

func (m ReviewModel) updateReviewing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.loading {
			return m, nil
		}

		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = StateSelectTimeframe
			m.currentTx = nil
			m.queue = nil
			m.timeframePicker.Reset()

			return m, nil

		case tea.KeyEnter:
			category := strings.TrimSpace(m.categoryInput.Value())
			if m.currentTx == nil || category == "" {
				return m, nil
			}

			return m, m.saveCmd(m.currentTx, category)

		case tea.KeyTab:
			if len(m.candidates) > 0 {
				m.candIdx = (m.candIdx + 1) % len(m.candidates)
				m.categoryInput.SetValue(m.candidates[m.candIdx])
			}

			return m, nil

		case tea.KeyCtrlS:
			if m.currentTx == nil {
				return m, nil
			}

			cmd := m.nextCmd()

			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)

	return m, cmd
}

func (m ReviewModel) View() string {
	if m.state == StateSelectTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.currentTx == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	tx := m.currentTx
	info := fmt.Sprintf(
		"Date:        %s\nType:        %s\nAmount:      %s\nDescription: %s\n",
		FormatDate(tx.Date),
		tx.Type,
		FormatAmount(tx.Amount),
		tx.Description,
	)

	suggestions := "No suggestions."
	if len(m.candidates) > 0 {
		var b strings.Builder

		for i, c := range m.candidates {
			cursor := " "
			if i == m.candIdx {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, c)
		}

		suggestions = "Suggestions:\n" + b.String()
	}

	content := fmt.Sprintf(
		"%s\n\n%s\n%s\nCategory:\n%s",
		m.status, info, suggestions, m.categoryInput.View(),
	)

	return lipgloss.NewStyle().Padding(2).Render(content)
}

// Candidates flattens suggestions into category names, exact matches
// first, without repeats.
func Candidates(s dashboard.Suggestions) []string {
	var out []string

	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, e := range s.Exact {
		add(e.Category)
	}

	for _, f := range s.Fuzzy {
		add(f.Category)
	}

	return out
}

type loadPendingMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ReviewModel) loadPendingCmd(filter transaction.Filter) tea.Cmd {
	filter.Category = transaction.Uncategorized

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadPendingMsg{txs: txs, err: err}
	}
}

type suggestionsMsg struct {
	candidates []string
}

// nextCmd pops the queue and fetches suggestions for the new head.
func (m *ReviewModel) nextCmd() tea.Cmd {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.status = "All done! No more uncategorized transactions."
		m.categoryInput.Blur()

		return nil
	}

	m.currentTx = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	desc := m.currentTx.Description

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return suggestionsMsg{candidates: Candidates(m.dashboard.Suggest(ctx, desc))}
	}
}

type saveResultMsg struct {
	err error
}

func (m ReviewModel) saveCmd(tx *transaction.Transaction, category string) tea.Cmd {
	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.UpdateCategory(ctx, id, category)

		return saveResultMsg{err: err}
	}
}
