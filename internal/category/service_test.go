package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/category"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params category.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *category.MockRepository)
		want      *category.Category
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Normalizes name and keywords",
			args: args{params: category.CreateParams{
				Name:        "  Gimnasio ",
				Keywords:    []string{" smartfit", "SMARTFIT", "", "pacific "},
				Description: " cuotas ",
			}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), &category.Category{
						Name:        "Gimnasio",
						Keywords:    []string{"SMARTFIT", "PACIFIC"},
						Description: "cuotas",
						Active:      true,
					}).
					Return(nil)
			},
			want: &category.Category{
				Name:        "Gimnasio",
				Keywords:    []string{"SMARTFIT", "PACIFIC"},
				Description: "cuotas",
				Active:      true,
			},
		},
		{
			name:    "Missing name",
			args:    args{params: category.CreateParams{Name: " ", Keywords: []string{"X"}}},
			wantErr: category.ErrInvalid,
		},
		{
			name:    "No usable keywords",
			args:    args{params: category.CreateParams{Name: "Vacío", Keywords: []string{" ", ""}}},
			wantErr: category.ErrInvalid,
		},
		{
			name: "Name taken",
			args: args{params: category.CreateParams{Name: "Gimnasio", Keywords: []string{"GYM"}}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(category.ErrNameConflict)
			},
			wantErr: category.ErrNameConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := category.NewService(repo).Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	existing := func() *category.Category {
		return &category.Category{ID: id, Name: "Gimnasio", Keywords: []string{"SMARTFIT"}, Description: "cuotas", Active: true}
	}

	t.Run("Only set fields change", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id).Return(existing(), nil)
		repo.EXPECT().
			UpdateCategory(gomock.Any(), &category.Category{
				ID: id, Name: "Deporte", Keywords: []string{"SMARTFIT"}, Description: "cuotas", Active: true,
			}).
			Return(nil)

		got, err := category.NewService(repo).Update(context.Background(), id, category.UpdateParams{Name: new("Deporte")})
		require.NoError(t, err)
		assert.Equal(t, "Deporte", got.Name)
	})

	t.Run("Keywords replaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id).Return(existing(), nil)
		repo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)

		got, err := category.NewService(repo).Update(context.Background(), id, category.UpdateParams{
			Keywords:    []string{"gym", "crossfit"},
			Description: new(""),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"GYM", "CROSSFIT"}, got.Keywords)
		assert.Empty(t, got.Description)
	})

	t.Run("Empty keyword list rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id).Return(existing(), nil)

		_, err := category.NewService(repo).Update(context.Background(), id, category.UpdateParams{Keywords: []string{}})
		assert.ErrorIs(t, err, category.ErrInvalid)
	})

	t.Run("Not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id).Return(nil, category.ErrNotFound)

		_, err := category.NewService(repo).Update(context.Background(), id, category.UpdateParams{Name: new("X")})
		assert.ErrorIs(t, err, category.ErrNotFound)
	})
}

func TestService_Engine(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().ListActive(gomock.Any()).Return([]*category.Category{
		{Name: "Gimnasio", Keywords: []string{"SMARTFIT"}, Active: true},
		{Name: "Gasto - Alimentos", Keywords: []string{"FERIA"}, Active: true},
	}, nil)

	engine, err := category.NewService(repo).Engine(context.Background(), categorize.WithPersonDetector(nil))
	require.NoError(t, err)

	assert.Equal(t, "Gimnasio", engine.Categorize("PAGO SMARTFIT", "", ""))
	assert.Equal(t, "Gasto - Alimentos", engine.Categorize("FERIA LIBRE", "", ""))
	assert.Equal(t, "Sin categorizar", engine.Categorize("SUPERMERCADO LIDER", "", ""))
}

func TestService_Rules(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().ListActive(gomock.Any()).Return([]*category.Category{
		{Name: "Gimnasio", Keywords: []string{"SMARTFIT"}, Active: true},
	}, nil)

	rules, err := category.NewService(repo).Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, len(categorize.Predefined())+1)

	last := rules[len(rules)-1]
	assert.Equal(t, "Gimnasio", last.Category)
	assert.True(t, last.Editable)
	assert.False(t, rules[0].Editable)
}

func TestService_Engine_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().ListActive(gomock.Any()).Return(nil, errors.New("db down"))

	_, err := category.NewService(repo).Engine(context.Background())
	assert.Error(t, err)
}
