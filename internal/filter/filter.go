// Package filter builds the program/graduation-year row filter of a survey
// frame: candidate lists for the selection widgets and the boolean row mask
// for a concrete selection.
package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"alumnipulse/internal/dataprocessing"
	"alumnipulse/pkg/contracts/domain"
)

// yearPattern extracts the first plausible graduation year from free-form
// year-column text: 19xx, 20xx or the literal 2100.
var yearPattern = regexp.MustCompile(`(19\d{2}|20\d{2}|2100)`)

// nullSentinels are spreadsheet export artifacts treated as absent program
// values.
var nullSentinels = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"NULL": true,
	"null": true,
}

// Engine resolves filter candidates and applies selections against one
// frame and its resolved role columns.
type Engine struct {
	frame *dataprocessing.Frame
	roles dataprocessing.RoleColumns

	programs []string // trimmed program value per row
	years    []string // trimmed raw year text per row
}

// NewEngine prepares a filter engine for a frame. The role columns must
// exist in the frame; a missing column is a programming error surfaced as a
// regular error.
func NewEngine(frame *dataprocessing.Frame, roles dataprocessing.RoleColumns) (*Engine, error) {
	programCol, err := frame.Column(roles.Program)
	if err != nil {
		return nil, fmt.Errorf("program column: %w", err)
	}
	yearCol, err := frame.Column(roles.Year)
	if err != nil {
		return nil, fmt.Errorf("year column: %w", err)
	}

	programs := make([]string, len(programCol))
	for i, v := range programCol {
		programs[i] = strings.TrimSpace(v)
	}
	years := make([]string, len(yearCol))
	for i, v := range yearCol {
		years[i] = strings.TrimSpace(v)
	}

	return &Engine{frame: frame, roles: roles, programs: programs, years: years}, nil
}

// Candidates returns the selectable values for both axes, each prefixed with
// its "all" sentinel. Programs are the distinct non-empty, non-null values
// sorted lexicographically; years are the distinct extracted 4-digit years
// sorted numerically ascending.
func (e *Engine) Candidates() domain.FilterCandidates {
	seenProgram := make(map[string]bool)
	var programs []string
	for _, p := range e.programs {
		if nullSentinels[p] || seenProgram[p] {
			continue
		}
		seenProgram[p] = true
		programs = append(programs, p)
	}
	sort.Strings(programs)

	seenYear := make(map[string]bool)
	var years []string
	for _, raw := range e.years {
		m := yearPattern.FindString(raw)
		if m == "" || seenYear[m] {
			continue
		}
		seenYear[m] = true
		years = append(years, m)
	}
	sort.Slice(years, func(i, j int) bool {
		a, _ := strconv.Atoi(years[i])
		b, _ := strconv.Atoi(years[j])
		return a < b
	})

	return domain.FilterCandidates{
		Programs: append([]string{domain.AllPrograms}, programs...),
		Years:    append([]string{domain.AllYears}, years...),
	}
}

// Apply produces a new frame containing only the rows matching the
// selection. The program axis matches exactly (after trimming); the year
// axis matches when the row's raw year text contains the selected year as a
// substring, so composite values like "2019-2020" keep matching. The axes
// combine by logical AND; row order and columns are preserved.
func (e *Engine) Apply(sel domain.FilterSelection) *dataprocessing.Frame {
	mask := make([]bool, e.frame.NumRows())
	for i := range mask {
		keep := true
		if sel.Program != domain.AllPrograms {
			keep = e.programs[i] == sel.Program
		}
		if keep && sel.Year != domain.AllYears {
			keep = strings.Contains(e.years[i], sel.Year)
		}
		mask[i] = keep
	}
	return e.frame.SelectRows(mask)
}
