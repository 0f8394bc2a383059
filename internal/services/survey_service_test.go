package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnipulse/internal/dataprocessing"
	"alumnipulse/pkg/contracts/domain"
)

const sampleCSV = `Encuesta de Egresados,,,
,,,
Programa,Año de Egreso,¿Trabajas actualmente?,Satisfacción general
Ingeniería de Sistemas,2019,Sí,4
Ingeniería de Sistemas,2020,No,5
Administración,2020,Sí,3
Administración,2021,Sí,4
`

func testQuestionSet() domain.QuestionSet {
	return domain.QuestionSet{
		Questions: []domain.QuestionSpec{
			{ID: "a1", Section: "A", Type: domain.QuestionTypeBinary,
				Label: "¿Trabajas actualmente?", Column: "¿Trabajas actualmente?"},
			{ID: "c1", Section: "C", Type: domain.QuestionTypeLikert,
				Label: "Satisfacción general", Column: "Satisfacción general"},
		},
	}
}

func newTestService(t *testing.T) *SurveyService {
	t.Helper()
	return NewSurveyService(testQuestionSet(), 1<<20, 4, nil, nil)
}

func TestIngestAndCandidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.False(t, info.Cached)
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 2, info.HeaderRow)
	assert.False(t, info.Fallback)

	candidates, err := svc.Candidates(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.AllPrograms, "Administración", "Ingeniería de Sistemas"}, candidates.Programs)
	assert.Equal(t, []string{domain.AllYears, "2019", "2020", "2021"}, candidates.Years)
}

func TestIngestCacheHit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, "renamed.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Ingest(context.Background(), "encuesta.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIngestRejectsOversizedUpload(t *testing.T) {
	svc := NewSurveyService(testQuestionSet(), 16, 4, nil, nil)

	_, err := svc.Ingest(context.Background(), "encuesta.csv", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestIngestMissingRoleColumns(t *testing.T) {
	svc := newTestService(t)
	csv := "Nombre,Correo\nAna,ana@example.com\n"

	_, err := svc.Ingest(context.Background(), "otros.csv", strings.NewReader(csv))
	require.Error(t, err)

	var missing *dataprocessing.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Nombre", "Correo"}, missing.Headers)
}

func TestRenderFullReport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rep, err := svc.Render(ctx, info.ID, domain.FilterSelection{
		Program: domain.AllPrograms,
		Year:    domain.AllYears,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Responses)
	assert.Empty(t, rep.Warning)
	require.Len(t, rep.Sections, 2)
	assert.Equal(t, "Situación Laboral", rep.Sections[0].Title)

	binary := rep.Sections[0].Questions[0]
	assert.Equal(t, domain.Distribution{{Label: "Sí", Count: 3}, {Label: "No", Count: 1}}, binary.Distribution)

	likert := rep.Sections[1].Questions[0]
	assert.Equal(t, "4.00", likert.Mean)
}

func TestRenderFilteredReport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rep, err := svc.Render(ctx, info.ID, domain.FilterSelection{
		Program: "Administración",
		Year:    "2020",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Responses)
}

func TestRenderEmptySelectionDefaultsToAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rep, err := svc.Render(ctx, info.ID, domain.FilterSelection{})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Responses)
	assert.Equal(t, domain.AllPrograms, rep.Program)
}

func TestRenderZeroRowsWarning(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Ingest(ctx, "encuesta.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rep, err := svc.Render(ctx, info.ID, domain.FilterSelection{
		Program: "Administración",
		Year:    "2019",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Responses)
	assert.Empty(t, rep.Sections)
	assert.Equal(t, "No hay respuestas para ese filtro. Cambia Programa/AñoEgreso.", rep.Warning)
}

func TestRenderUnknownUpload(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Render(context.Background(), "nope", domain.FilterSelection{})
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestEvictionKeepsNewestUploads(t *testing.T) {
	svc := NewSurveyService(testQuestionSet(), 1<<20, 2, nil, nil)
	ctx := context.Background()

	variant := func(year string) string {
		return "Programa,Año de Egreso\nIngeniería," + year + "\n"
	}

	first, err := svc.Ingest(ctx, "a.csv", strings.NewReader(variant("2018")))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "b.csv", strings.NewReader(variant("2019")))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "c.csv", strings.NewReader(variant("2020")))
	require.NoError(t, err)

	assert.Len(t, svc.List(), 2)
	_, err = svc.Get(first.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
