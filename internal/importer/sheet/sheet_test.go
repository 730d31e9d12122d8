package sheet_test

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/importer/sheet"
)

func TestReadFrom_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Cartola"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "B3", &[]any{"Fecha", "Descripción", "Monto"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "B4", &[]any{"15/01/2024", "SUPERMERCADO", 45000}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := sheet.ReadFrom(buf)
	require.NoError(t, err)
	require.Len(t, g, 4)

	assert.Equal(t, "Cartola", g.Cell(0, 0))
	assert.Empty(t, g[1])
	assert.Equal(t, "Descripción", g.Cell(2, 2))
	assert.Equal(t, "45000", g.Cell(3, 3))
	assert.Equal(t, map[string]int{"Fecha": 1, "Descripción": 2, "Monto": 3}, g.Header(2))
}

func TestRead_WorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movimientos.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Fecha", "Monto"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := sheet.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Monto", g.Cell(0, 1))
}

func TestReadFrom_Delimited(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sheet.Grid
	}{
		{
			name:  "Semicolon",
			input: "Fecha;Detalle;Monto\n2024-01-15;Café;1.234,50\n",
			want:  sheet.Grid{{"Fecha", "Detalle", "Monto"}, {"2024-01-15", "Café", "1.234,50"}},
		},
		{
			name:  "Comma",
			input: "Fecha,Detalle,Monto\n2024-01-15,UBER,\"4,500\"\n",
			want:  sheet.Grid{{"Fecha", "Detalle", "Monto"}, {"2024-01-15", "UBER", "4,500"}},
		},
		{
			name:  "Tab",
			input: "Fecha\tMonto\n2024-01-15\t10\n",
			want:  sheet.Grid{{"Fecha", "Monto"}, {"2024-01-15", "10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := sheet.ReadFrom(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}
}

func TestReadFrom_Latin1(t *testing.T) {
	// "Descripción;Monto\n" in Windows-1252: ó = 0xF3
	input := []byte{'D', 'e', 's', 'c', 'r', 'i', 'p', 'c', 'i', 0xF3, 'n', ';', 'M', 'o', 'n', 't', 'o', '\n'}

	g, err := sheet.ReadFrom(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Descripción", g.Cell(0, 0))
}

func TestReadFrom_Unreadable(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := sheet.ReadFrom(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, record.ErrUnreadable)
	})

	t.Run("Broken workbook", func(t *testing.T) {
		_, err := sheet.ReadFrom(bytes.NewReader([]byte("PK\x03\x04garbage")))
		assert.ErrorIs(t, err, record.ErrUnreadable)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := sheet.Read(filepath.Join(t.TempDir(), "nope.xlsx"))
		assert.ErrorIs(t, err, record.ErrUnreadable)
	})
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Fecha;Monto\n")...)

	r, err := sheet.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Fecha;Monto\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'O', 0, 'K', 0}

	r, err := sheet.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(got))
}

func TestGrid_CellOutOfRange(t *testing.T) {
	g := sheet.Grid{{"a"}}

	assert.Equal(t, "", g.Cell(5, 0))
	assert.Equal(t, "", g.Cell(0, 3))
	assert.Equal(t, "", g.Cell(-1, 0))
	assert.Empty(t, g.Header(9))
}

func TestReadFrom_Windows1252CartolaExport(t *testing.T) {
	content := "sep=;\r\n" +
		"Fecha;Descripción;Canal o Sucursal;Cargos (CLP);Abonos (CLP);Saldo (CLP)\r\n" +
		"15/01;COMPRA CAFÉ ÑUÑOA;Internet;4.500;;120.000\r\n" +
		"16/01;ABONO REMUNERACIÓN;Oficina Central;;1.500.000;1.620.000\r\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	require.NoError(t, err)

	g, err := sheet.ReadFrom(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, g, 3)

	assert.Equal(t, "Descripción", g.Cell(0, 1))
	assert.Equal(t, "COMPRA CAFÉ ÑUÑOA", g.Cell(1, 1))
	assert.Equal(t, "4.500", g.Cell(1, 3))
	assert.Equal(t, "ABONO REMUNERACIÓN", g.Cell(2, 1))
	assert.Equal(t, "1.500.000", g.Cell(2, 4))
}

func TestReadFrom_SepHintOverridesSniffing(t *testing.T) {
	// Commas outnumber semicolons, but the hint wins.
	input := "sep=;\nFecha;Detalle;Monto\n2024-01-15;UBER, VIAJE, CENTRO;1,5\n"

	g, err := sheet.ReadFrom(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, sheet.Grid{{"Fecha", "Detalle", "Monto"}, {"2024-01-15", "UBER, VIAJE, CENTRO", "1,5"}}, g)
}

func TestDetectCharset(t *testing.T) {
	truncated := append(bytes.Repeat([]byte("a"), 10), "é"[0])

	tests := []struct {
		name    string
		sample  []byte
		want    sheet.Charset
		wantBOM int
	}{
		{name: "UTF-8 BOM", sample: []byte("\xEF\xBB\xBFFecha"), want: sheet.UTF8, wantBOM: 3},
		{name: "UTF-16LE BOM", sample: []byte{0xFF, 0xFE, 'F', 0}, want: sheet.UTF16LE, wantBOM: 2},
		{name: "UTF-16BE BOM", sample: []byte{0xFE, 0xFF, 0, 'F'}, want: sheet.UTF16BE, wantBOM: 2},
		{name: "Plain UTF-8", sample: []byte("Descripción;Monto"), want: sheet.UTF8},
		{name: "UTF-8 cut mid rune", sample: truncated, want: sheet.UTF8},
		{name: "Latin single byte", sample: []byte("Descripci\xF3n;Monto;\xD1u\xF1oa"), want: sheet.Windows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bom := sheet.DetectCharset(tt.sample)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBOM, bom)
		})
	}
}
