package dataprocessing

import (
	"fmt"
	"strings"

	"alumnipulse/internal/textnorm"
)

// RoleColumns names the two filter columns resolved from a Frame's headers.
type RoleColumns struct {
	Program string
	Year    string
}

// MissingColumnsError reports that one or both role columns could not be
// resolved, listing every discovered header so the operator can fix the
// source file.
type MissingColumnsError struct {
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("could not resolve program/graduation-year columns; discovered headers: [%s]",
		strings.Join(e.Headers, ", "))
}

// ClassifyColumns resolves the program and graduation-year role columns by
// normalized substring match against the role pattern sets. Columns are
// visited in definition order, program checked before year per column; the
// first match for each role wins.
func ClassifyColumns(f *Frame) (RoleColumns, error) {
	var roles RoleColumns
	for _, c := range f.Columns() {
		n := textnorm.Normalize(c)
		if roles.Program == "" && containsAny(n, programPatterns) {
			roles.Program = c
			continue
		}
		if roles.Year == "" && containsAny(n, yearPatterns) {
			roles.Year = c
		}
	}

	if roles.Program == "" || roles.Year == "" {
		headers := make([]string, len(f.Columns()))
		copy(headers, f.Columns())
		return RoleColumns{}, &MissingColumnsError{Headers: headers}
	}
	return roles, nil
}
