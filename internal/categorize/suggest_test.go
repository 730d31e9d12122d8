package categorize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
)

func TestEngine_Suggest(t *testing.T) {
	e := categorize.New()

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, e.Suggest(""))
		assert.Empty(t, e.Suggest("   "))
	})

	t.Run("No match", func(t *testing.T) {
		assert.Empty(t, e.Suggest("QWERTY"))
	})

	t.Run("Scores and confidence", func(t *testing.T) {
		got := e.Suggest("FARMACIA CRUZ VERDE")
		require.NotEmpty(t, got)

		top := got[0]
		assert.Equal(t, "Gasto - Salud", top.Category)
		assert.Equal(t, []string{"FARMACIA", "CRUZ VERDE"}, top.Matches)
		assert.Equal(t, 10*2+len("FARMACIA")+len("CRUZ VERDE"), top.Score)
		assert.Equal(t, categorize.ConfidenceHigh, top.Confidence)
	})

	t.Run("Single match is medium", func(t *testing.T) {
		got := e.Suggest("NETFLIX")
		require.Len(t, got, 1)
		assert.Equal(t, categorize.ConfidenceMedium, got[0].Confidence)
		assert.Equal(t, 17, got[0].Score)
	})

	t.Run("At most three, sorted", func(t *testing.T) {
		got := e.Suggest("SUELDO DEPOSITO BONO SUPERMERCADO UBER FARMACIA CINE BANCO")
		assert.Len(t, got, 3)

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
	})
}

func TestEngine_FuzzySuggest(t *testing.T) {
	e := categorize.New()

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, e.FuzzySuggest("", 0.6))
	})

	t.Run("Typo is found", func(t *testing.T) {
		got := e.FuzzySuggest("FARMASIA", 0.6)
		require.NotEmpty(t, got)

		assert.Equal(t, "Gasto - Salud", got[0].Category)
		assert.Equal(t, "FARMACIA", got[0].Keyword)
		assert.InDelta(t, 0.875, got[0].Similarity, 1e-9)
		assert.Equal(t, categorize.ConfidenceMedium, got[0].Confidence)
	})

	t.Run("One entry per category", func(t *testing.T) {
		got := e.FuzzySuggest("SUPERMERCAD MERCAD", 0.6)

		seen := map[string]bool{}
		for _, s := range got {
			assert.False(t, seen[s.Category], "duplicate category %s", s.Category)
			seen[s.Category] = true
		}
	})

	t.Run("At most five", func(t *testing.T) {
		got := e.FuzzySuggest(strings.Repeat("BANCA TAXIS CINES BARES CLUBS AGUAS LUCES ", 3), 0.5)
		assert.LessOrEqual(t, len(got), 5)

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
		}
	})

	t.Run("Low confidence under 0.8", func(t *testing.T) {
		got := e.FuzzySuggest("NETFLX", 0.6)
		require.NotEmpty(t, got)
		assert.Equal(t, "NETFLIX", got[0].Keyword)
		assert.Equal(t, categorize.ConfidenceMedium, got[0].Confidence)

		got = e.FuzzySuggest("NEFLI", 0.6)
		for _, s := range got {
			if s.Keyword == "NETFLIX" {
				assert.Equal(t, categorize.ConfidenceLow, s.Confidence)
			}
		}
	})
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, categorize.Similarity("", ""))
	assert.Equal(t, 1.0, categorize.Similarity("UBER", "UBER"))
	assert.InDelta(t, 0.75, categorize.Similarity("UBER", "UBRR"), 1e-9)
	assert.Equal(t, 0.0, categorize.Similarity("ABC", "XYZ"))
}

func TestEngine_Rules(t *testing.T) {
	e := categorize.New(categorize.WithCustom(categorize.Dictionary{
		{Category: "Mascotas", Keywords: []string{"VETERINARIA"}},
	}))

	rules := e.Rules()
	require.Len(t, rules, 16)

	first := rules[0]
	assert.Equal(t, "Ingreso - Sueldos", first.Category)
	assert.Equal(t, 13, first.TotalKeywords)
	assert.Equal(t, "Si el detalle contiene alguna de estas palabras: SUELDO, SALARIO, NOMINA, PAGO EMPLEADO, HONORARIOS...", first.Description)
	assert.False(t, first.Editable)

	last := rules[15]
	assert.Equal(t, "Si el detalle contiene alguna de estas palabras: VETERINARIA", last.Description)
	assert.True(t, last.Editable)
}
