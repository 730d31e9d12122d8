package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/cartola/internal/http/category"
	"github.com/MrJamesThe3rd/cartola/internal/http/export"
	"github.com/MrJamesThe3rd/cartola/internal/http/ingest"
	"github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/metrics"
)

func New(
	corsOrigins []string,
	ingestV1 *ingest.Handler,
	transactionsV1 *transaction.Handler,
	categoriesV1 *category.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Transaction-Count"},
		MaxAge:         300,
	}))
	router.Use(metrics.Middleware)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/ingest", ingestV1.Routes)

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			categoriesV1.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			exportV1.Routes(r)
		})
	})

	return router
}
