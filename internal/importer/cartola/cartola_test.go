package cartola_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/importer/cartola"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
)

func grid(rows ...[]string) sheet.Grid {
	g := make(sheet.Grid, cartola.HeaderRow)
	g[0] = []string{"Cartola Histórica"}
	g = append(g, []string{"", "Fecha", "Descripción", "Canal o Sucursal", "Cargos (PESOS)", "Abonos (PESOS)", "Saldo (PESOS)"})

	return append(g, rows...)
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestNormalize_ChargeAndCredit(t *testing.T) {
	g := grid(
		[]string{"", "15/01/2024", "Compra supermercado", " Internet ", "45000", "0", "955000"},
		[]string{"", "20/01/2024", "Abono sueldo", "Oficina", "0", "200000", "1155000"},
	)

	recs, err := cartola.New(cartola.WithClock(fixedClock)).Normalize(g)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "45000", recs[0].Amount.Decimal.String())
	assert.Equal(t, record.LabelExpense, recs[0].Type)
	assert.Equal(t, "COMPRA SUPERMERCADO", recs[0].Description)
	assert.Equal(t, "INTERNET", recs[0].Details.Channel)
	require.NotNil(t, recs[0].Details.Balance)
	assert.Equal(t, int64(95500000), *recs[0].Details.Balance)

	assert.Equal(t, "200000", recs[1].Amount.Decimal.String())
	assert.Equal(t, record.LabelIncome, recs[1].Type)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), recs[1].Date)
}

func TestNormalize_DropsRows(t *testing.T) {
	g := grid(
		[]string{"", "", "Sin fecha", "", "100", "", ""},
		[]string{"", "02/03/2024", "Sin monto", "", "0", "0", ""},
		[]string{"", "Total", "", "", "", "", ""},
		[]string{"", "05/03", "Día y mes", "", "", "1.500", ""},
	)

	recs, err := cartola.New(cartola.WithClock(fixedClock)).Normalize(g)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.Equal(t, "1500", recs[0].Amount.Decimal.String())
	assert.Nil(t, recs[0].Details.Balance)
}

func TestNormalize_MissingColumns(t *testing.T) {
	g := make(sheet.Grid, cartola.HeaderRow)
	g = append(g, []string{"Fecha", "Descripción"})

	_, err := cartola.New().Normalize(g)
	assert.ErrorIs(t, err, record.ErrMissingColumns)
}
