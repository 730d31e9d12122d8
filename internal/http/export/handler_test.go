package export

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cartola/internal/export"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

func newRouter(t *testing.T) (*transaction.MockRepository, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	txs := transaction.NewService(repo)

	r := chi.NewRouter()
	r.Route("/export", NewHandler(export.NewService(txs), txs).Routes)

	return repo, r
}

func rows() []*transaction.Transaction {
	return []*transaction.Transaction{{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "FARMACIA AHUMADA",
		Amount:      1299000,
		Type:        transaction.TypeExpense,
		Category:    "Gasto - Salud",
		RuleKind:    transaction.RuleKeywordMatch,
	}}
}

func TestHandler_Workbook(t *testing.T) {
	repo, router := newRouter(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().ListTransactions(gomock.Any(), transaction.Filter{From: &from, Type: transaction.TypeExpense}).Return(rows(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export",
		strings.NewReader(`{"from":"2024-01-01","type":"expense"}`)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Transaction-Count"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(export.SheetTransactions)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "FARMACIA AHUMADA", got[1][1])
}

func TestHandler_Workbook_BadFilter(t *testing.T) {
	_, router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"from":"enero"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Summary(t *testing.T) {
	repo, router := newRouter(t)
	repo.EXPECT().ListTransactions(gomock.Any(), transaction.Filter{}).Return(rows(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "* 2024-01-15 | FARMACIA AHUMADA | -12990.00 | Gasto - Salud\n", rec.Body.String())
}
