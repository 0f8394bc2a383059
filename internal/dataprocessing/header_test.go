package dataprocessing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateHeaderFindsBuriedHeader(t *testing.T) {
	// 60-row export with the true header on row index 2.
	raw := RawTable{
		{"Informe de Encuesta", "", ""},
		{"Exportado 2024-03-01", "", ""},
		{"Programa", "Año Egreso", "¿Trabaja actualmente?"},
	}
	for i := 0; i < 57; i++ {
		raw = append(raw, []string{fmt.Sprintf("Ingeniería %d", i%3), "2019-2020", "Sí"})
	}
	require.Len(t, raw, 60)

	frame, loc := LocateHeader(raw)
	assert.Equal(t, 2, loc.RowIndex)
	assert.False(t, loc.Fallback)
	assert.Equal(t, 57, frame.NumRows())
	assert.Equal(t, []string{"Programa", "Año Egreso", "¿Trabaja actualmente?"}, frame.Columns())
}

func TestLocateHeaderNeedsBothMarkers(t *testing.T) {
	raw := RawTable{
		{"Programa", "otra cosa"},      // only program marker
		{"algo", "Año de Egreso"},      // only year marker
		{"Programa", "Año de Egreso"},  // both
		{"Programa", "AñoEgreso", "x"}, // later match must not win
	}
	_, loc := LocateHeader(raw)
	assert.Equal(t, 2, loc.RowIndex)
	assert.False(t, loc.Fallback)
}

func TestLocateHeaderMatchesSpellingVariants(t *testing.T) {
	variants := []string{"AñoEgreso", "año egreso", "AnoEgreso", "ano egreso", "Año de Egreso", "ANO DE EGRESO"}
	for _, v := range variants {
		t.Run(v, func(t *testing.T) {
			raw := RawTable{
				{"ruido", ""},
				{"Programa Académico", v},
				{"Medicina", "2020"},
			}
			frame, loc := LocateHeader(raw)
			assert.Equal(t, 1, loc.RowIndex)
			assert.Equal(t, 1, frame.NumRows())
		})
	}
}

func TestLocateHeaderFallback(t *testing.T) {
	raw := RawTable{
		{" Nombre ", "Edad"},
		{"Ana", "30"},
		{"Luis", "28"},
	}
	frame, loc := LocateHeader(raw)
	assert.True(t, loc.Fallback)
	assert.Equal(t, 0, loc.RowIndex)
	// Fallback header names are NBSP/whitespace-trimmed only.
	assert.Equal(t, []string{"Nombre", "Edad"}, frame.Columns())
	assert.Equal(t, 2, frame.NumRows())
}

func TestLocateHeaderScanWindow(t *testing.T) {
	// Header buried past the 50-row window must not be found.
	raw := make(RawTable, 0, 60)
	for i := 0; i < 55; i++ {
		raw = append(raw, []string{"relleno", "x"})
	}
	raw = append(raw, []string{"Programa", "Año Egreso"})
	raw = append(raw, []string{"Medicina", "2020"})

	frame, loc := LocateHeader(raw)
	assert.True(t, loc.Fallback)
	assert.Equal(t, 0, loc.RowIndex)
	assert.Equal(t, 56, frame.NumRows())
}

func TestReadRawTableCSVWithQuotedDelimiters(t *testing.T) {
	csvData := "encabezado basura,,\nPrograma,Año Egreso,Intereses\nMedicina,2020,\"a;b, c /d\"\n"
	raw, err := ReadRawTable(strings.NewReader(csvData), "export.csv")
	require.NoError(t, err)
	require.Len(t, raw, 3)

	frame, loc := LocateHeader(raw)
	require.Equal(t, 1, loc.RowIndex)
	val, err := frame.Cell(0, "Intereses")
	require.NoError(t, err)
	assert.Equal(t, "a;b, c /d", val)
}

func TestReadRawTableStripsBOM(t *testing.T) {
	raw, err := ReadRawTable(strings.NewReader("\uFEFFPrograma,Año Egreso\nMedicina,2020\n"), "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "Programa", raw[0][0])
}

func TestReadRawTableEmpty(t *testing.T) {
	_, err := ReadRawTable(strings.NewReader(""), "vacio.csv")
	assert.Error(t, err)
}
