package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/export"
	categoryHandler "github.com/MrJamesThe3rd/cartola/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/cartola/internal/http/export"
	ingestHandler "github.com/MrJamesThe3rd/cartola/internal/http/ingest"
	txHandler "github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func newTestRouter(t *testing.T) (*transaction.MockRepository, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)

	txs := transaction.NewService(txRepo)
	cats := category.NewService(category.NewMockRepository(ctrl))
	dash := dashboard.NewService(importer.NewService(), txs, cats)

	return txRepo, New(
		[]string{"http://localhost:5173"},
		ingestHandler.NewHandler(dash, t.TempDir(), 1<<20),
		txHandler.NewHandler(txs),
		categoryHandler.NewHandler(cats, dash),
		exportHandler.NewHandler(export.NewService(txs), txs),
	)
}

func TestRouter_Metrics(t *testing.T) {
	txRepo, router := newTestRouter(t)
	txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.Filter{}).Return(nil, errors.New("down"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ingest/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cartola_http_requests_total{code="200",method="GET",route="/api/v1/ingest/stats"}`)
}

func TestRouter_CORS(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
