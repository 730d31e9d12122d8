package tef_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
	"github.com/MrJamesThe3rd/cartola/internal/importer/tef"
)

var header = []string{
	"Fecha", "Origen", "Nombre Destino", "Rut Destino", "Banco Destino", "Tipo de Cuenta",
	"N Cuenta Destino", "Monto", "Estado", "Canal", "Id Transacción", "Comentario",
}

func grid(rows ...[]string) sheet.Grid {
	g := make(sheet.Grid, tef.HeaderRow)
	g[0] = []string{"Cartola de transferencias"}
	g = append(g, header)

	return append(g, rows...)
}

func TestNormalize(t *testing.T) {
	g := grid(
		[]string{"15/01/2024", "Cuenta Corriente", "SUPERMERCADO JUMBO", "76.123.456-7", "BANCO ESTADO", "Vista", "123", "45000", "Aprobada", "Web", "A1", "compras"},
		[]string{},
		[]string{"16/01/2024", "EMPRESA SPA", "Juan Perez", "", "", "", "", "1.500.000", "Aprobada", "Web", "A2", "Sueldo enero"},
		[]string{"no es fecha", "", "X", "", "", "", "", "10", "", "", "", ""},
		[]string{"17/01/2024", "", "nan", "", "", "", "", "abc", "", "", "", ""},
	)

	recs, err := tef.New().Normalize(g)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	first := recs[0]
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "SUPERMERCADO JUMBO - COMPRAS - (BANCO ESTADO)", first.Description)
	assert.Equal(t, "45000", first.Amount.Decimal.String())
	assert.Equal(t, record.LabelExpense, first.Type)
	assert.Equal(t, "76.123.456-7", first.Details.DestinationTaxID)
	assert.Equal(t, "A1", first.Details.ExternalID)

	assert.Equal(t, record.LabelIncome, recs[1].Type)
	assert.Equal(t, "1500000", recs[1].Amount.Decimal.String())

	assert.Equal(t, "TRANSFERENCIA BANCARIA", recs[2].Description)
	assert.True(t, recs[2].Amount.Valid)
	assert.True(t, recs[2].Amount.Decimal.IsZero())
}

func TestNormalize_MissingColumns(t *testing.T) {
	g := make(sheet.Grid, tef.HeaderRow)
	g = append(g, []string{"Fecha", "Origen", "Comentario"})

	_, err := tef.New().Normalize(g)
	assert.ErrorIs(t, err, record.ErrMissingColumns)
}
