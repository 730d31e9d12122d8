package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cartola/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cartola/internal/category"
	catStore "github.com/MrJamesThe3rd/cartola/internal/category/store"
	"github.com/MrJamesThe3rd/cartola/internal/config"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/database"
	"github.com/MrJamesThe3rd/cartola/internal/export"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
	txStore "github.com/MrJamesThe3rd/cartola/internal/transaction/store"
)

type model struct {
	txService        *transaction.Service
	categoryService  *category.Service
	dashboardService *dashboard.Service
	exportService    *export.Service
	importDir        string

	currentView View

	importView     view.ImportModel
	dashboardView  view.DashboardModel
	listView       view.ListModel
	reviewView     view.ReviewModel
	categoriesView view.CategoriesModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewImport     View = 1
	ViewDashboard  View = 2
	ViewList       View = 3
	ViewReview     View = 4
	ViewCategories View = 5
	ViewExport     View = 6
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	txSvc := transaction.NewService(txStore.New(db))
	catSvc := category.NewService(catStore.New(db))
	expSvc := export.NewService(txSvc)
	dashSvc := dashboard.NewService(importer.NewService(), txSvc, catSvc,
		dashboard.WithPersonNames(cfg.Categorize.DetectPersons, cfg.Categorize.FirstNames, cfg.Categorize.LastNames),
		dashboard.WithFuzzyThreshold(cfg.Categorize.FuzzyThreshold),
	)

	return model{
		txService:        txSvc,
		categoryService:  catSvc,
		dashboardService: dashSvc,
		exportService:    expSvc,
		importDir:        cfg.Import.Dir,
		currentView:      ViewMenu,
		importView:       view.NewImportModel(dashSvc, cfg.Import.Dir),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.dashboardService, m.importDir)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.dashboardService)

				return m, m.dashboardView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.categoryService)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.txService, m.dashboardService)

				return m, m.reviewView.Init()
			case "5":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.categoryService, m.dashboardService)

				return m, m.categoriesView.Init()
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.txService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Cartola TUI\n\n" +
				"1. Import Statements\n" +
				"2. Dashboard\n" +
				"3. Transactions\n" +
				"4. Review Uncategorized\n" +
				"5. Custom Categories\n" +
				"6. Export to Excel\n\n" +
				"q. Quit",
		)
	default:
		if v := m.activeView(); v != nil {
			return view.Frame(v)
		}
	}

	return "Unknown View"
}

func (m model) activeView() view.View {
	switch m.currentView {
	case ViewImport:
		return m.importView
	case ViewDashboard:
		return m.dashboardView
	case ViewList:
		return m.listView
	case ViewReview:
		return m.reviewView
	case ViewCategories:
		return m.categoriesView
	case ViewExport:
		return m.exportView
	}

	return nil
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
