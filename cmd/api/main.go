package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cartola/internal/category"
	catStore "github.com/MrJamesThe3rd/cartola/internal/category/store"
	"github.com/MrJamesThe3rd/cartola/internal/config"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/database"
	"github.com/MrJamesThe3rd/cartola/internal/export"
	cartolaHttp "github.com/MrJamesThe3rd/cartola/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/cartola/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/cartola/internal/http/export"
	ingestHandler "github.com/MrJamesThe3rd/cartola/internal/http/ingest"
	txHandler "github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
	txStore "github.com/MrJamesThe3rd/cartola/internal/transaction/store"
)

func main() {
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
	defer db.Close()

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		categoryService    = category.NewService(catStore.New(db))
		importService      = importer.NewService()
		exportService      = export.NewService(transactionService)
		dashboardService   = dashboard.NewService(importService, transactionService, categoryService,
			dashboard.WithPersonNames(cfg.Categorize.DetectPersons, cfg.Categorize.FirstNames, cfg.Categorize.LastNames),
			dashboard.WithFuzzyThreshold(cfg.Categorize.FuzzyThreshold),
		)
	)

	var (
		ingestH      = ingestHandler.NewHandler(dashboardService, cfg.Import.Dir, cfg.MaxUploadBytes())
		transactionH = txHandler.NewHandler(transactionService)
		categoryH    = categoryHandler.NewHandler(categoryService, dashboardService)
		exportH      = exportHandler.NewHandler(exportService, transactionService)
	)

	router := cartolaHttp.New(cfg.Server.CORSOrigins, ingestH, transactionH, categoryH, exportH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "port", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
