package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var (
	typeFilters = []transaction.Type{"", transaction.TypeIncome, transaction.TypeExpense}
	dateFilters = []period.Timeframe{period.All, period.ThisMonth, period.LastMonth}
)

type ListModel struct {
	CommonModel
	txService  *transaction.Service
	categories *category.Service

	state   listState
	table   table.Model
	txs     []*transaction.Transaction
	form    *huh.Form
	options []string

	typeFilterIdx int
	dateFilterIdx int
	now           func() time.Time

	filter  transaction.Filter
	loading bool
	err     error
	status  string

	formCategory string
}

func NewListModel(txSvc *transaction.Service, catSvc *category.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 28},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		txService:  txSvc,
		categories: catSvc,
		table:      t,
		now:        time.Now,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit category | x: delete | t: type filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.options = msg.options
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilters)
			m.applyFilter()

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formCategory = tx.Category
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(huh.NewOptions(m.options...)...).
				Height(12).
				Value(&m.formCategory),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	typeLabel := "All"
	if t := typeFilters[m.typeFilterIdx]; t != "" {
		typeLabel = string(t)
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s | %d rows",
		activeStyle(typeLabel),
		activeStyle(dateFilters[m.dateFilterIdx].String()),
		len(m.txs),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		desc := ""
		if tx := m.selected(); tx != nil {
			desc = tx.Description
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Edit Category\n\n%s\n\n%s", desc, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) applyFilter() {
	m.filter.Type = typeFilters[m.typeFilterIdx]

	tf := dateFilters[m.dateFilterIdx]
	if tf == period.All {
		m.filter.From, m.filter.To = nil, nil
		return
	}

	start, end := tf.Bounds(m.now())
	m.filter.From, m.filter.To = &start, &end
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			FormatSigned(tx),
			tx.Category,
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// CategoryOptions lists every category a transaction can be assigned: the
// rules in effect, the stored names and the fixed fallbacks.
func CategoryOptions(rules []categorize.RuleSummary, stored []string) []string {
	opts := make([]string, 0, len(rules)+len(stored)+2)

	add := func(name string) {
		if name != "" && !slices.Contains(opts, name) {
			opts = append(opts, name)
		}
	}

	for _, r := range rules {
		add(r.Category)
	}

	for _, name := range stored {
		add(name)
	}

	add(categorize.Transfers)
	add(transaction.Uncategorized)

	return opts
}

// Messages

type loadListMsg struct {
	txs     []*transaction.Transaction
	options []string
	err     error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		rules, err := m.categories.Rules(ctx)
		if err != nil {
			rules = categorize.New().Rules()
		}

		stored, _ := m.txService.Categories(ctx)

		return loadListMsg{txs: txs, options: CategoryOptions(rules, stored)}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID
	name := m.form.GetString("category")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.UpdateCategory(ctx, id, name); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Category set to " + name}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, id); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Transaction deleted."}
	}
}
