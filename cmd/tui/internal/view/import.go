package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateModeSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type importMode struct {
	label string
	save  bool
	mode  transaction.SaveMode
	dir   bool
}

var importModes = []importMode{
	{label: "Preview only (do not save)"},
	{label: "Import and append", save: true, mode: transaction.ModeAppend},
	{label: "Import and replace stored data", save: true, mode: transaction.ModeReplace},
	{label: "Load every file in the import folder", save: true, mode: transaction.ModeReplace, dir: true},
}

type ImportModel struct {
	CommonModel
	dashboard *dashboard.Service
	importDir string

	state      importState
	filePicker filepicker.Model
	modeCursor int

	report *dashboard.Report
	status string
	err    error
}

func NewImportModel(svc *dashboard.Service, importDir string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = importer.Extensions
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		dashboard:  svc,
		importDir:  importDir,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateModeSelect {
			return m.updateModeSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.report = msg.report
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Processed %d transactions.", len(msg.report.Transactions))

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Processing %s...", path)

		return m, m.processCmd(path, importModes[m.modeCursor])
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateModeSelect
		return m, nil
	case importStateResult:
		m.state = importStateModeSelect
		m.report = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateModeSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.modeCursor > 0 {
			m.modeCursor--
		}
	case tea.KeyDown:
		if m.modeCursor < len(importModes)-1 {
			m.modeCursor++
		}
	case tea.KeyEnter:
		mode := importModes[m.modeCursor]
		if mode.dir {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Loading %s...", m.importDir)

			return m, m.loadDirCmd(mode.mode)
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateModeSelect:
		return m.viewModeSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select statement (%s):\n\n%s", importModes[m.modeCursor].label, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewModeSelect() string {
	s := "Import mode:\n\n"

	for i, mode := range importModes {
		cursor := " "
		if i == m.modeCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, mode.label)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	if m.report == nil {
		return style.Render(errStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var b strings.Builder

	status := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status)
	if m.err != nil {
		status = errStyle.Render(m.status)
	}

	b.WriteString(status + "\n\n")
	b.WriteString(ReportSummary(m.report))

	for _, fe := range m.report.Failures {
		b.WriteString(errStyle.Render(fmt.Sprintf("  skipped %s: %s", fe.Path, fe.Reason())) + "\n")
	}

	for _, w := range m.report.Warnings {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("  warning: "+w) + "\n")
	}

	b.WriteString("\n(Esc to go back)")

	return style.Render(b.String())
}

// ReportSummary renders the headline numbers of a report.
func ReportSummary(r *dashboard.Report) string {
	var b strings.Builder

	if r.Format != "" {
		fmt.Fprintf(&b, "Format:        %s\n", r.Format)
	}

	fmt.Fprintf(&b, "Transactions:  %d (dropped %d)\n", len(r.Transactions), r.Dropped)

	if r.Range != nil {
		fmt.Fprintf(&b, "Range:         %s to %s (%d days)\n", FormatDate(r.Range.Start), FormatDate(r.Range.End), r.Range.Days)
	}

	if r.Store.Requested {
		if r.Store.Saved {
			fmt.Fprintf(&b, "Store (%s):  %d inserted, %d skipped\n", r.Store.Mode, r.Store.Inserted, r.Store.Skipped)
		} else {
			fmt.Fprintf(&b, "Store (%s):  not saved: %s\n", r.Store.Mode, r.Store.Error)
		}
	}

	return b.String()
}

type importResultMsg struct {
	report *dashboard.Report
	err    error
}

func (m ImportModel) processCmd(path string, mode importMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := m.dashboard.Process(ctx, path, dashboard.SaveOptions{Save: mode.save, Mode: mode.mode})

		return importResultMsg{report: report, err: err}
	}
}

func (m ImportModel) loadDirCmd(mode transaction.SaveMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := m.dashboard.LoadDir(ctx, m.importDir, mode)

		return importResultMsg{report: report, err: err}
	}
}
