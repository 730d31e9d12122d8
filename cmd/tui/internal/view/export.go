package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/export"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const (
	exportTimeout     = 2 * time.Minute
	defaultExportDir  = "./exports"
	summaryPreviewMax = 20
)

// exportOutput selects what an export produces.
type exportOutput string

const (
	outputWorkbook exportOutput = "workbook"
	outputSummary  exportOutput = "summary"
	outputBoth     exportOutput = "both"
)

func (o exportOutput) writesWorkbook() bool { return o != outputSummary }
func (o exportOutput) showsSummary() bool   { return o != outputWorkbook }

var errNothingToExport = errors.New("no transactions in the selected timeframe")

type exportStep int

const (
	exportStepTimeframe exportStep = iota
	exportStepOptions
	exportStepRunning
	exportStepDone
)

// ExportModel exports stored transactions as an Excel workbook with the
// "Transacciones" and "Resumen mensual" sheets and/or a text summary.
type ExportModel struct {
	CommonModel
	exportService *export.Service
	txService     *transaction.Service

	step            exportStep
	timeframePicker TimeframePicker
	filter          transaction.Filter
	form            *huh.Form
	spinner         spinner.Model

	result exportResultMsg
}

func NewExportModel(svc *export.Service, txSvc *transaction.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService:   svc,
		txService:       txSvc,
		timeframePicker: NewTimeframePicker(period.ThisMonth),
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export to Excel" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportStepRunning:
		return "Exporting..."
	case exportStepDone:
		return "Esc: back to menu | Enter: export again"
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter = msg.Filter()
		m.form = newExportForm()
		m.step = exportStepOptions

		return m, m.form.Init()

	case exportResultMsg:
		m.step = exportStepDone
		m.result = msg

		return m, nil
	}

	switch m.step {
	case exportStepTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case exportStepOptions:
		return m.updateOptions(msg)

	case exportStepRunning:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case exportStepDone:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.Type {
			case tea.KeyEsc:
				return m, Back
			case tea.KeyEnter:
				m.step = exportStepTimeframe
				m.timeframePicker.Reset()
			}
		}
	}

	return m, nil
}

func newExportForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("output").
				Title("Output").
				Options(
					huh.NewOption("Excel workbook", string(outputWorkbook)),
					huh.NewOption("Text summary", string(outputSummary)),
					huh.NewOption("Workbook and summary", string(outputBoth)),
				),
			huh.NewInput().
				Key("dir").
				Title("Output folder").
				Description("Created if missing. Ignored for a text summary.").
				Placeholder(defaultExportDir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.step = exportStepTimeframe
		m.form = nil
		m.timeframePicker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	output := exportOutput(m.form.GetString("output"))

	dir := strings.TrimSpace(m.form.GetString("dir"))
	if dir == "" {
		dir = defaultExportDir
	}

	m.step = exportStepRunning

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.filter, output, dir))
}

func (m ExportModel) View() string {
	switch m.step {
	case exportStepTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case exportStepOptions:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case exportStepRunning:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Exporting transactions...")
	}

	return lipgloss.NewStyle().Padding(1).Render(m.result.View())
}

type exportResultMsg struct {
	output  exportOutput
	file    string
	count   int
	summary string
	err     error
}

// View renders the outcome, previewing at most summaryPreviewMax summary
// lines.
func (r exportResultMsg) View() string {
	if r.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + r.err.Error())
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Export complete") + "\n\n")

	if r.output.writesWorkbook() {
		fmt.Fprintf(&b, "%d transactions written to %s\n", r.count, r.file)
		fmt.Fprintf(&b, "Sheets: %s, %s\n", export.SheetTransactions, export.SheetMonthly)
	}

	if r.output.showsSummary() {
		lines := strings.Split(strings.TrimRight(r.summary, "\n"), "\n")

		b.WriteString("\nSummary:\n\n")
		b.WriteString(strings.Join(lines[:min(len(lines), summaryPreviewMax)], "\n"))

		if hidden := len(lines) - summaryPreviewMax; hidden > 0 {
			fmt.Fprintf(&b, "\n... and %d more", hidden)
		}
	}

	return b.String()
}

func (m ExportModel) runExportCmd(filter transaction.Filter, output exportOutput, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		res := exportResultMsg{output: output}

		txs, err := m.txService.List(ctx, filter)
		if err != nil {
			res.err = err
			return res
		}

		if len(txs) == 0 {
			res.err = errNothingToExport
			return res
		}

		res.count = len(txs)

		if output.writesWorkbook() {
			if res.file, err = m.exportService.ToDir(ctx, filter, dir); err != nil {
				res.err = err
				return res
			}
		}

		if output.showsSummary() {
			res.summary = m.exportService.GenerateSummary(txs)
		}

		return res
	}
}
