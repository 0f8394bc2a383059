package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnipulse/internal/report"
	"alumnipulse/pkg/contracts/domain"
)

func TestParseQuestionSet(t *testing.T) {
	data := []byte(`{
		"top_k_categories": 8,
		"questions": [
			{"id": "a1", "section": "A", "type": "BINARY",
			 "label": "¿Trabajas actualmente?", "column": "¿Trabajas actualmente?"},
			{"id": "a2", "section": "A", "type": "MULTI_COLUMNS",
			 "label": "Medios de búsqueda",
			 "columns": ["Bolsa de empleo", "Redes sociales"]}
		]
	}`)

	set, err := ParseQuestionSet(data)
	require.NoError(t, err)

	assert.Equal(t, 8, set.TopK)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, domain.QuestionTypeBinary, set.Questions[0].Type)
	assert.Equal(t, []string{"Bolsa de empleo", "Redes sociales"}, set.Questions[1].Columns)
}

func TestParseQuestionSetErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "invalid json",
			data: `{"questions": [`,
		},
		{
			name: "empty questions",
			data: `{"questions": []}`,
		},
		{
			name: "unknown type",
			data: `{"questions": [{"id": "x", "section": "A", "type": "PIE", "label": "q", "column": "c"}]}`,
		},
		{
			name: "missing column for binary",
			data: `{"questions": [{"id": "x", "section": "A", "type": "BINARY", "label": "q"}]}`,
		},
		{
			name: "missing columns for multi columns",
			data: `{"questions": [{"id": "x", "section": "A", "type": "MULTI_COLUMNS", "label": "q"}]}`,
		},
		{
			name: "duplicate ids",
			data: `{"questions": [
				{"id": "x", "section": "A", "type": "BINARY", "label": "q", "column": "c"},
				{"id": "x", "section": "B", "type": "LIKERT", "label": "r", "column": "d"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestionSet([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestShippedQuestionSet(t *testing.T) {
	set, err := LoadQuestionSet(filepath.Join("..", "..", "configs", "questions.json"))
	require.NoError(t, err)
	require.NotEmpty(t, set.Questions)

	// The benefits free-text question must be CATEGORICAL so the report
	// driver routes its answers through the bucketing cascade.
	var benefits *domain.QuestionSpec
	for i := range set.Questions {
		if set.Questions[i].Column == report.BenefitsColumn {
			benefits = &set.Questions[i]
		}
	}
	require.NotNil(t, benefits)
	assert.Equal(t, domain.QuestionTypeCategorical, benefits.Type)
}

func TestLoadQuestionSetMissingFile(t *testing.T) {
	_, err := LoadQuestionSet("does-not-exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read question set")
}
