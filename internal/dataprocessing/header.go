package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"alumnipulse/internal/textnorm"
)

// Role name patterns, tested as substrings of normalized text. The year
// variants cover the accented/unaccented, spaced/unspaced and "de" spellings
// seen across export templates.
var (
	programPatterns = []string{"programa"}
	yearPatterns    []string
)

func init() {
	// The six template variants, normalized once so matching stays consistent
	// with textnorm.Normalize output ("año" -> "ano").
	raw := []string{
		"añoegreso",
		"año egreso",
		"anoegreso",
		"ano egreso",
		"año de egreso",
		"ano de egreso",
	}
	seen := make(map[string]bool)
	for _, v := range raw {
		n := textnorm.Normalize(v)
		if !seen[n] {
			seen[n] = true
			yearPatterns = append(yearPatterns, n)
		}
	}
}

// headerScanLimit caps how many leading rows are inspected for the header.
const headerScanLimit = 50

// HeaderFallbackIndex marks the fallback single-row-header parse in
// HeaderLocation results.
const HeaderFallbackIndex = 0

// HeaderLocation describes how the header row of a raw export was resolved.
type HeaderLocation struct {
	RowIndex int
	Fallback bool
}

// LocateHeader scans at most the first 50 rows of raw for the first row that
// contains both a program-marker cell and a year-marker cell, and builds a
// Frame from that header plus the rows strictly after it. When no row in the
// window qualifies, the first row is reinterpreted as the header (fallback);
// the resulting Frame may then lack the role columns, which surfaces in
// ClassifyColumns. LocateHeader never fails on non-empty input.
func LocateHeader(raw RawTable) (*Frame, HeaderLocation) {
	limit := len(raw)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		if rowIsHeader(raw[i]) {
			frame := frameFrom(raw, i)
			slog.Debug("header row located",
				slog.Int("row_index", i),
				slog.Int("data_rows", frame.NumRows()))
			return frame, HeaderLocation{RowIndex: i}
		}
	}

	slog.Debug("no header row in scan window, falling back to first row",
		slog.Int("scanned", limit))
	return frameFrom(raw, HeaderFallbackIndex), HeaderLocation{RowIndex: HeaderFallbackIndex, Fallback: true}
}

// rowIsHeader tests the two independent marker conditions on one raw row.
func rowIsHeader(row []string) bool {
	hasProgram, hasYear := false, false
	for _, cell := range row {
		n := textnorm.Normalize(cell)
		if n == "" {
			continue
		}
		if !hasProgram && containsAny(n, programPatterns) {
			hasProgram = true
		}
		if !hasYear && containsAny(n, yearPatterns) {
			hasYear = true
		}
		if hasProgram && hasYear {
			return true
		}
	}
	return false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// frameFrom builds a Frame using raw[headerIdx] as the header row and the
// remainder strictly after it as data. Header cells keep their display form,
// only NBSP and surrounding whitespace are stripped; blank header cells get a
// positional placeholder so column names stay unique and addressable.
func frameFrom(raw RawTable, headerIdx int) *Frame {
	header := raw[headerIdx]
	columns := make([]string, len(header))
	for i, cell := range header {
		name := textnorm.CleanHeader(cell)
		if name == "" {
			name = fmt.Sprintf("columna_%d", i)
		}
		columns[i] = name
	}
	return NewFrame(columns, raw[headerIdx+1:])
}
