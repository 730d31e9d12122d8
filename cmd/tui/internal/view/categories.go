package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
)

type catState int

const (
	catStateList catState = iota
	catStateEditing
)

// catItem wraps a custom category to implement list.Item.
type catItem struct {
	c *category.Category
}

func (i catItem) Title() string       { return i.c.Name }
func (i catItem) Description() string { return strings.Join(i.c.Keywords, ", ") }
func (i catItem) FilterValue() string { return i.c.Name }

type CategoriesModel struct {
	CommonModel
	categories *category.Service
	dashboard  *dashboard.Service

	state    catState
	list     list.Model
	form     *huh.Form
	editing  *category.Category
	loading  bool
	status   string
	catCount int

	// Form field bindings
	formName     string
	formKeywords string
	formDesc     string
}

func NewCategoriesModel(catSvc *category.Service, dash *dashboard.Service) CategoriesModel {
	l := list.New([]list.Item{}, catItemDelegate{}, 0, 0)
	l.Title = "Custom Categories"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return CategoriesModel{
		categories: catSvc,
		dashboard:  dash,
		list:       l,
		loading:    true,
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == catStateEditing {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new | e: edit | d: deactivate | r: recategorize all | /: filter"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCatsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		items := make([]list.Item, len(msg.cats))
		for i, c := range msg.cats {
			items[i] = catItem{c: c}
		}

		m.catCount = len(items)
		m.list.SetItems(items)

		return m, nil

	case catResultMsg:
		m.state = catStateList
		m.form = nil
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case catStateList:
		return m.updateList(msg)
	case catStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m CategoriesModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.startEditing(nil)
		case "e":
			if selected, ok := m.list.SelectedItem().(catItem); ok {
				return m.startEditing(selected.c)
			}

			return m, nil
		case "d":
			if selected, ok := m.list.SelectedItem().(catItem); ok {
				return m, m.deactivateCmd(selected.c)
			}

			return m, nil
		case "r":
			m.status = "Recategorizing..."
			return m, m.recategorizeCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m CategoriesModel) startEditing(c *category.Category) (tea.Model, tea.Cmd) {
	m.editing = c
	m.formName, m.formKeywords, m.formDesc = "", "", ""

	title := "New Category"
	if c != nil {
		title = "Edit Category"
		m.formName = c.Name
		m.formKeywords = strings.Join(c.Keywords, ", ")
		m.formDesc = c.Description
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),

			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("keywords").
				Title("Keywords (comma separated)").
				Value(&m.formKeywords).
				Validate(func(s string) error {
					if len(SplitKeywords(s)) == 0 {
						return errors.New("at least one keyword is required")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description (optional)").
				Value(&m.formDesc),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = catStateEditing

	return m, m.form.Init()
}

func (m CategoriesModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = catStateList
		m.form = nil

		return m, nil
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

func (m CategoriesModel) View() string {
	if m.state == catStateEditing && m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	}

	statusLine := ""
	if m.status != "" {
		statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
	}

	if m.catCount == 0 {
		return lipgloss.NewStyle().Padding(2).Render(statusLine + "No custom categories yet. Press n to create one.")
	}

	return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())
}

// SplitKeywords parses a comma separated keyword list, dropping blanks.
func SplitKeywords(s string) []string {
	var out []string

	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}

	return out
}

// Messages

type loadCatsMsg struct {
	cats []*category.Category
	err  error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.categories.ListActive(ctx)

		return loadCatsMsg{cats: cats, err: err}
	}
}

type catResultMsg struct {
	status string
	err    error
}

func (m CategoriesModel) saveCmd() tea.Cmd {
	editing := m.editing
	name := strings.TrimSpace(m.form.GetString("name"))
	keywords := SplitKeywords(m.form.GetString("keywords"))
	desc := strings.TrimSpace(m.form.GetString("description"))
	svc := m.categories

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if editing == nil {
			c, err := svc.Create(ctx, category.CreateParams{Name: name, Keywords: keywords, Description: desc})
			if err != nil {
				return catResultMsg{err: err}
			}

			return catResultMsg{status: fmt.Sprintf("Created %q.", c.Name)}
		}

		c, err := svc.Update(ctx, editing.ID, category.UpdateParams{
			Name:        &name,
			Keywords:    keywords,
			Description: &desc,
		})
		if err != nil {
			return catResultMsg{err: err}
		}

		return catResultMsg{status: fmt.Sprintf("Updated %q.", c.Name)}
	}
}

func (m CategoriesModel) deactivateCmd(c *category.Category) tea.Cmd {
	id, name := c.ID, c.Name

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.categories.Deactivate(ctx, id); err != nil {
			return catResultMsg{err: err}
		}

		return catResultMsg{status: fmt.Sprintf("Deactivated %q.", name)}
	}
}

func (m CategoriesModel) recategorizeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.dashboard.Recategorize(ctx)
		if err != nil {
			return catResultMsg{err: err}
		}

		return catResultMsg{status: fmt.Sprintf(
			"Recategorized %d of %d transactions (%d kept, %d failed).",
			res.Updated, res.Total, res.Kept, len(res.Failed),
		)}
	}
}

// catItemDelegate renders categories with their keywords beneath.
type catItemDelegate struct{}

func (d catItemDelegate) Height() int                             { return 2 }
func (d catItemDelegate) Spacing() int                            { return 0 }
func (d catItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d catItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(catItem)
	if !ok {
		return
	}

	title := i.Title()
	desc := lipgloss.NewStyle().Faint(true).PaddingLeft(4).Render(i.Description())

	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("> " + title)
	} else {
		title = "  " + title
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}
