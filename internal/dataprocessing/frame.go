package dataprocessing

import (
	"fmt"
)

// RawTable holds the untyped, header-position-unknown cells of a survey
// export, row-major. It is the source of truth before header detection and is
// never mutated after loading.
type RawTable [][]string

// ErrColumnNotFound is returned by Frame lookups for unknown column names.
type ErrColumnNotFound struct {
	Column string
}

func (e *ErrColumnNotFound) Error() string {
	return fmt.Sprintf("column not found: %s", e.Column)
}

// Frame is a table with a fixed ordered set of unique column names and
// row-aligned text cells. Rows shorter than the header are padded with empty
// cells at construction so lookups never index out of range.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewFrame builds a Frame from cleaned column names and data rows. Duplicate
// column names keep their first occurrence in the lookup index; later
// duplicates stay addressable by position only, matching how spreadsheet
// exports repeat question headers.
func NewFrame(columns []string, rows [][]string) *Frame {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) >= len(columns) {
			padded[i] = row[:len(columns)]
			continue
		}
		p := make([]string, len(columns))
		copy(p, row)
		padded[i] = p
	}

	return &Frame{columns: columns, index: index, rows: padded}
}

// Columns returns the column names in definition order. Callers must not
// modify the returned slice.
func (f *Frame) Columns() []string {
	return f.columns
}

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// HasColumn reports whether name is a known column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns all cell values of the named column in row order.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, &ErrColumnNotFound{Column: name}
	}
	values := make([]string, len(f.rows))
	for i, row := range f.rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Cell returns the value at (row, column name).
func (f *Frame) Cell(row int, name string) (string, error) {
	if row < 0 || row >= len(f.rows) {
		return "", fmt.Errorf("row %d out of range [0,%d)", row, len(f.rows))
	}
	idx, ok := f.index[name]
	if !ok {
		return "", &ErrColumnNotFound{Column: name}
	}
	return f.rows[row][idx], nil
}

// SelectRows produces a new Frame with the same columns and only the rows
// whose mask entry is true, preserving original row order.
func (f *Frame) SelectRows(mask []bool) *Frame {
	kept := make([][]string, 0, len(f.rows))
	for i, row := range f.rows {
		if i < len(mask) && mask[i] {
			kept = append(kept, row)
		}
	}
	return &Frame{columns: f.columns, index: f.index, rows: kept}
}
