package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyColumns(t *testing.T) {
	tests := []struct {
		name        string
		columns     []string
		wantProgram string
		wantYear    string
		wantErr     bool
	}{
		{
			name:        "plain headers",
			columns:     []string{"Marca temporal", "Programa", "Año Egreso"},
			wantProgram: "Programa",
			wantYear:    "Año Egreso",
		},
		{
			name:        "accent and spacing variance",
			columns:     []string{"PROGRAMA ACADÉMICO", "AnoEgreso"},
			wantProgram: "PROGRAMA ACADÉMICO",
			wantYear:    "AnoEgreso",
		},
		{
			name:        "first matching column wins per role",
			columns:     []string{"Programa", "Programa (segundo)", "Año de Egreso", "Año de Egreso (copia)"},
			wantProgram: "Programa",
			wantYear:    "Año de Egreso",
		},
		{
			name:        "program check runs before year on the same column",
			columns:     []string{"Programa año egreso", "Año Egreso"},
			wantProgram: "Programa año egreso",
			wantYear:    "Año Egreso",
		},
		{
			name:    "missing year column",
			columns: []string{"Programa", "Fecha"},
			wantErr: true,
		},
		{
			name:    "missing both",
			columns: []string{"Nombre", "Edad"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := NewFrame(tt.columns, nil)
			roles, err := ClassifyColumns(frame)
			if tt.wantErr {
				var missing *MissingColumnsError
				require.ErrorAs(t, err, &missing)
				// The listing must be the frame's actual column names, in order.
				assert.Equal(t, tt.columns, missing.Headers)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProgram, roles.Program)
			assert.Equal(t, tt.wantYear, roles.Year)
		})
	}
}

func TestFrameColumnLookup(t *testing.T) {
	frame := NewFrame(
		[]string{"Programa", "Año Egreso"},
		[][]string{{"Medicina", "2020"}, {"Derecho"}},
	)

	col, err := frame.Column("Programa")
	require.NoError(t, err)
	assert.Equal(t, []string{"Medicina", "Derecho"}, col)

	// Short rows are padded with empty cells.
	year, err := frame.Cell(1, "Año Egreso")
	require.NoError(t, err)
	assert.Equal(t, "", year)

	_, err = frame.Column("Inexistente")
	var notFound *ErrColumnNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Inexistente", notFound.Column)
}

func TestFrameSelectRows(t *testing.T) {
	frame := NewFrame(
		[]string{"Programa"},
		[][]string{{"a"}, {"b"}, {"c"}},
	)
	filtered := frame.SelectRows([]bool{true, false, true})
	assert.Equal(t, 2, filtered.NumRows())
	col, _ := filtered.Column("Programa")
	assert.Equal(t, []string{"a", "c"}, col)
}
