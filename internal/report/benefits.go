package report

import (
	"strings"

	"alumnipulse/internal/textnorm"
)

// BenefitsColumn is the free-text question whose answers go through the
// bucketing rules before counting.
const BenefitsColumn = "¿Qué beneficios te gustaría obtener de una asociación de egresados?"

// benefitsRule is one (predicate, category) pair of the bucketing cascade.
// Rules are evaluated top to bottom, first match wins.
type benefitsRule struct {
	// matches receives the fully normalized text and the casing-only
	// lowercased original. A few accented phrases are tested against the
	// lowercased form; that asymmetry is inherited from the report template
	// and is kept on purpose.
	matches  func(norm, lower string) bool
	category string
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var benefitsRules = []benefitsRule{
	{
		category: "Ninguno / no conoce beneficios",
		matches: func(n, _ string) bool {
			// "ningun " with the trailing space matches word-starts like
			// "ningun beneficio" without firing inside other words.
			return containsAnyOf(n,
				"no aplica",
				"ninguno",
				"ningun ",
				"no tengo conocimiento",
				"no conozco los beneficios",
			)
		},
	},
	{
		category: "Descuentos y beneficios económicos",
		matches: func(n, lower string) bool {
			return strings.Contains(n, "descuento") ||
				strings.Contains(n, "caminatas ecologicas") ||
				strings.Contains(lower, "caminatas ecológicas")
		},
	},
	{
		category: "Vinculación laboral / empleabilidad",
		matches: func(n, lower string) bool {
			return containsAnyOf(n,
				"empleabilidad",
				"vinculacion laboral",
				"bolsa de empleo",
			) || strings.Contains(lower, "vinculación laboral")
		},
	},
	{
		category: "Información y comunicación con egresados",
		matches: func(n, lower string) bool {
			return strings.Contains(n, "informacion") || strings.Contains(lower, "información")
		},
	},
	{
		category: "Actividades deportivas, culturales y recreativas",
		matches: func(n, _ string) bool {
			return containsAnyOf(n,
				"actividades deportivas",
				"actividades culturales",
				"recreativas",
			)
		},
	},
	{
		category: "Todos los beneficios",
		matches:  func(n, _ string) bool { return n == "todos" },
	},
}

// BucketBenefits maps one free-text benefits answer to its category. Answers
// no rule captures come back verbatim, trimmed. Empty/missing input maps to
// the empty string, which upstream aggregation drops as no-answer.
func BucketBenefits(text string) string {
	n := textnorm.Normalize(text)
	if n == "" {
		return ""
	}
	lower := textnorm.Lower(text)
	for _, rule := range benefitsRules {
		if rule.matches(n, lower) {
			return rule.category
		}
	}
	return strings.TrimSpace(text)
}
