package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).PaddingLeft(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(1)
)

// Frame renders v with its title above and its key help below.
func Frame(v View) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(v.Title()),
		v.View(),
		helpStyle.Render(v.ShortHelp()),
	)
}
