package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadRawTableCSVStripsBOM(t *testing.T) {
	raw, err := ReadRawTable(strings.NewReader("\uFEFFPrograma,Año Egreso\nMedicina,2020\n"), "export.csv")
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "Programa", raw[0][0])
}

func TestReadRawTableEmptyCSV(t *testing.T) {
	_, err := ReadRawTable(strings.NewReader(""), "export.csv")
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadRawTableEmptyXLSX(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	path := filepath.Join(tmpDir, "empty.xlsx")
	require.NoError(t, f.SaveAs(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	_, err = ReadRawTable(file, "empty.xlsx")
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadRawTableXLSX(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Encuesta de Egresados", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Programa", "Año Egreso"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Medicina", "2020"}))

	path := filepath.Join(tmpDir, "export.xlsx")
	require.NoError(t, f.SaveAs(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	raw, err := ReadRawTable(file, "export.xlsx")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 3)

	frame, loc := LocateHeader(raw)
	assert.Equal(t, 1, loc.RowIndex)
	assert.False(t, loc.Fallback)

	prog, err := frame.Cell(0, "Programa")
	require.NoError(t, err)
	assert.Equal(t, "Medicina", prog)
}
