package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain lowercase", input: "programa", want: "programa"},
		{name: "accents stripped", input: "Año de Egreso", want: "ano de egreso"},
		{name: "nbsp and trim", input: "  Programa  ", want: "programa"},
		{name: "whitespace collapsed", input: "a o  de\tegreso", want: "a o de egreso"},
		{name: "mixed case with tilde", input: "VINCULACIÓN Laboral", want: "vinculacion laboral"},
		{name: "enye preserved as n", input: "Señal", want: "senal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "Programa", "  año egreso ", "¿Qué beneficios?", "ÁÉÍÓÚÑü",
		"multi  palabra   con\tespacios",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestLowerKeepsAccents(t *testing.T) {
	assert.Equal(t, "vinculación laboral", Lower("Vinculación Laboral"))
	assert.Equal(t, "caminatas ecológicas", Lower("Caminatas Ecológicas"))
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "Año Egreso", CleanHeader(" Año Egreso "))
	assert.Equal(t, "Programa", CleanHeader("Programa"))
}
