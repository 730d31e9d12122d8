package category

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type fixture struct {
	catRepo *category.MockRepository
	txRepo  *transaction.MockRepository
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		catRepo: category.NewMockRepository(ctrl),
		txRepo:  transaction.NewMockRepository(ctrl),
	}

	cats := category.NewService(f.catRepo)
	dash := dashboard.NewService(
		importer.NewService(),
		transaction.NewService(f.txRepo),
		cats,
		dashboard.WithEngineOptions(categorize.WithPersonDetector(nil)),
	)

	r := chi.NewRouter()
	r.Route("/categories", NewHandler(cats, dash).Routes)
	f.router = r

	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t)

	gym := &category.Category{ID: uuid.New(), Name: "Gimnasio", Keywords: []string{"SMARTFIT"}, Active: true}
	f.catRepo.EXPECT().ListActive(gomock.Any()).Return([]*category.Category{gym}, nil)

	rec := f.do(http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Predefined, len(categorize.Predefined()))
	require.Len(t, body.Custom, 1)
	assert.Equal(t, gym.ID, body.Custom[0].ID)
}

func TestHandler_Rules(t *testing.T) {
	f := newFixture(t)
	f.catRepo.EXPECT().ListActive(gomock.Any()).Return([]*category.Category{
		{ID: uuid.New(), Name: "Gimnasio", Keywords: []string{"SMARTFIT"}, Active: true},
	}, nil)

	rec := f.do(http.MethodGet, "/categories/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []categorize.RuleSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body)

	last := body[len(body)-1]
	assert.Equal(t, "Gimnasio", last.Category)
	assert.True(t, last.Editable)
	assert.False(t, body[0].Editable)
}

func TestHandler_Suggest(t *testing.T) {
	t.Run("Exact", func(t *testing.T) {
		f := newFixture(t)
		f.catRepo.EXPECT().ListActive(gomock.Any()).Return(nil, nil)

		rec := f.do(http.MethodGet, "/categories/suggest?description=netflix", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body suggestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.Suggestions)
		assert.Equal(t, "Gasto - Entretenimiento", body.Suggestions[0].Category)
		assert.Empty(t, body.Fuzzy)
	})

	t.Run("Missing description", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/categories/suggest", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mock     func(m *category.MockRepository)
		wantCode int
	}{
		{
			name: "Created",
			body: `{"name":"Gimnasio","keywords":["smartfit"]}`,
			mock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						c.ID = uuid.New()
						return nil
					})
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "Invalid",
			body:     `{"name":"Gimnasio","keywords":[]}`,
			mock:     func(*category.MockRepository) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Conflict",
			body: `{"name":"Gimnasio","keywords":["GYM"]}`,
			mock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(category.ErrNameConflict)
			},
			wantCode: http.StatusConflict,
		},
		{
			name:     "Malformed body",
			body:     `{`,
			mock:     func(*category.MockRepository) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mock(f.catRepo)

			rec := f.do(http.MethodPost, "/categories", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Update(t *testing.T) {
	id := uuid.New()

	t.Run("Renames", func(t *testing.T) {
		f := newFixture(t)
		f.catRepo.EXPECT().GetCategory(gomock.Any(), id).
			Return(&category.Category{ID: id, Name: "Gym", Keywords: []string{"SMARTFIT"}, Active: true}, nil)
		f.catRepo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)

		rec := f.do(http.MethodPut, "/categories/"+id.String(), `{"name":"Gimnasio"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body categoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Gimnasio", body.Name)
		assert.Equal(t, []string{"SMARTFIT"}, body.Keywords)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t)
		f.catRepo.EXPECT().GetCategory(gomock.Any(), id).Return(nil, category.ErrNotFound)

		rec := f.do(http.MethodPut, "/categories/"+id.String(), `{"name":"Gimnasio"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Deactivate(t *testing.T) {
	id := uuid.New()

	f := newFixture(t)
	f.catRepo.EXPECT().DeactivateCategory(gomock.Any(), id).Return(nil)

	rec := f.do(http.MethodDelete, "/categories/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodDelete, "/categories/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Recategorize(t *testing.T) {
	t.Run("Empty store", func(t *testing.T) {
		f := newFixture(t)
		f.catRepo.EXPECT().ListActive(gomock.Any()).Return(nil, nil)
		f.txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.Filter{}).Return(nil, nil)

		rec := f.do(http.MethodPost, "/categories/recategorize", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Updates rows", func(t *testing.T) {
		f := newFixture(t)

		tx := &transaction.Transaction{
			ID:          uuid.New(),
			Description: "UBER",
			Type:        transaction.TypeExpense,
			Category:    transaction.Uncategorized,
			RuleKind:    transaction.RuleNoMatch,
		}

		f.catRepo.EXPECT().ListActive(gomock.Any()).Return(nil, nil)
		f.txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.Filter{}).Return([]*transaction.Transaction{tx}, nil)
		f.txRepo.EXPECT().SetCategory(gomock.Any(), tx.ID, "Gasto - Transporte", transaction.RuleKeywordMatch).
			Return(errors.New("deadlock"))

		rec := f.do(http.MethodPost, "/categories/recategorize", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body recategorizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, []string{tx.ID.String()}, body.Failed)
	})
}
