package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/aggregate"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type dashState int

const (
	dashStateTimeframe dashState = iota
	dashStateLoading
	dashStateReport
)

const topCategories = 8

type DashboardModel struct {
	CommonModel
	dashboard *dashboard.Service

	state           dashState
	timeframePicker TimeframePicker
	monthly         table.Model
	report          *dashboard.Report
	err             error
}

func NewDashboardModel(svc *dashboard.Service) DashboardModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Month", Width: 10},
			{Title: "Income", Width: 14},
			{Title: "Expense", Width: 14},
			{Title: "Net", Width: 14},
		}),
		table.WithHeight(8),
	)

	return DashboardModel{
		dashboard:       svc,
		timeframePicker: NewTimeframePicker(period.ThisWeek),
		monthly:         t,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashStateReport {
		return "Esc: change timeframe | arrows: scroll months"
	}

	return "Esc: back | Enter: select"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = dashStateLoading
		return m, m.loadCmd(msg.Filter())

	case historyMsg:
		m.state = dashStateReport
		m.report = msg.report
		m.err = msg.err

		if msg.report != nil {
			m.monthly.SetRows(monthlyRows(msg.report.Aggregates.Monthly))
		}

		return m, nil
	}

	switch m.state {
	case dashStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case dashStateReport:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = dashStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}

		var cmd tea.Cmd
		m.monthly, cmd = m.monthly.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) View() string {
	switch m.state {
	case dashStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case dashStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading history...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	if len(m.report.Transactions) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No transactions in this timeframe.\n\n(Esc to go back)")
	}

	agg := m.report.Aggregates
	header := lipgloss.NewStyle().Bold(true)

	var b strings.Builder

	b.WriteString(ReportSummary(m.report) + "\n")
	b.WriteString(header.Render("Monthly") + "\n")
	b.WriteString(m.monthly.View() + "\n\n")

	fmt.Fprintf(&b, "Average income:   %.2f\n", agg.Averages.Income)
	fmt.Fprintf(&b, "Average expense:  %.2f\n", agg.Averages.Expense)
	fmt.Fprintf(&b, "Daily reference:  %.2f\n", agg.DailyReference)
	b.WriteString(weeklyStatusLine(agg.WeeklyStatus) + "\n\n")

	b.WriteString(header.Render("Top categories") + "\n")

	for i, c := range m.report.Categories {
		if i == topCategories {
			break
		}

		fmt.Fprintf(&b, "  %-32s %-8s %4d  %14s\n", c.Category, c.Type, c.Count, FormatAmount(c.Total))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func weeklyStatusLine(ws aggregate.WeeklyStatus) string {
	if ws.Status == aggregate.StatusNoData {
		return "Week status:      no data"
	}

	color := lipgloss.Color("46")
	if ws.Status == aggregate.StatusOver {
		color = lipgloss.Color("196")
	}

	return fmt.Sprintf("Week %s:    spent %.2f of %.2f (%s)",
		ws.Week, ws.Spent, ws.Budget,
		lipgloss.NewStyle().Foreground(color).Render(string(ws.Status)))
}

func monthlyRows(monthly []aggregate.MonthlyRow) []table.Row {
	rows := make([]table.Row, len(monthly))
	for i, r := range monthly {
		rows[i] = table.Row{
			r.Label,
			fmt.Sprintf("%.2f", r.Income),
			fmt.Sprintf("%.2f", r.Expense),
			fmt.Sprintf("%.2f", r.Net),
		}
	}

	return rows
}

type historyMsg struct {
	report *dashboard.Report
	err    error
}

func (m DashboardModel) loadCmd(filter transaction.Filter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.dashboard.History(ctx, filter)

		return historyMsg{report: report, err: err}
	}
}
