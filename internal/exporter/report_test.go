package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnipulse/internal/config"
	"alumnipulse/pkg/contracts/domain"
)

func sampleReport() domain.Report {
	return domain.Report{
		Program:   domain.AllPrograms,
		Year:      domain.AllYears,
		Responses: 4,
		Sections: []domain.ReportSection{
			{
				Key:   "A",
				Title: "Situación Laboral",
				Questions: []domain.RenderedQuestion{
					{
						ID:    "a1",
						Label: "¿Trabajas actualmente?",
						Type:  domain.QuestionTypeBinary,
						Distribution: domain.Distribution{
							{Label: "Sí", Count: 3},
							{Label: "No", Count: 1},
						},
					},
					{
						ID:     "a2",
						Label:  "Columna ausente",
						Type:   domain.QuestionTypeCategorical,
						Notice: domain.NoticeMissingColumn,
					},
				},
			},
		},
	}
}

func TestReportRecords(t *testing.T) {
	records := ReportRecords(sampleReport())

	// The noticed question contributes no rows
	require.Len(t, records, 2)
	assert.Equal(t, []string{"A", "Situación Laboral", "¿Trabajas actualmente?", "BINARY", "Sí", "3", "75.00", ""}, records[0])
	assert.Equal(t, "25.00", records[1][6])
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "expected UTF-8 BOM prefix")

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\xEF\xBB\xBF")))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "Sí", rows[1][4])
}

func TestWriteReportFile(t *testing.T) {
	base := t.TempDir()
	paths := config.GetPathsWithBase(base)
	require.NoError(t, paths.EnsureDirectories())

	w := NewCSVWriter(paths)
	require.NoError(t, w.WriteReportFile("informe.csv", sampleReport()))

	data, err := os.ReadFile(filepath.Join(paths.ReportsDir, "informe.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "¿Trabajas actualmente?")
}

func TestWriteReportFileAbsolutePath(t *testing.T) {
	base := t.TempDir()
	paths := config.GetPathsWithBase(base)
	require.NoError(t, paths.EnsureDirectories())

	out := filepath.Join(base, "custom", "salida.csv")
	require.NoError(t, NewCSVWriter(paths).WriteReportFile(out, sampleReport()))

	_, err := os.Stat(out)
	require.NoError(t, err)
}
