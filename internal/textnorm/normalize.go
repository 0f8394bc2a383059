// Package textnorm canonicalizes free-form survey text so that header
// detection, column classification and answer bucketing all match the same
// way regardless of source accentuation, casing and spacing.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks (category Mn),
// turning "Año" into "Ano". Built once; transform.String is safe for
// concurrent use with an immutable chain.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes s: NBSP to space, trim, lowercase, accents
// stripped, internal whitespace runs collapsed to single spaces. It is total
// (never fails) and idempotent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// Lower lowercases s without touching accents or spacing. The benefits
// bucketing rule tests a handful of accented phrases against this weaker
// form; keep the asymmetry, it mirrors the report template's behavior.
func Lower(s string) string {
	return strings.ToLower(s)
}

// CleanHeader prepares a raw header cell for use as a column name: NBSP to
// space and surrounding whitespace trimmed, original casing and accents
// preserved for display.
func CleanHeader(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}
