package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyTable reports an export that contains no rows at all.
var ErrEmptyTable = errors.New("survey export contains no rows")

// ReadRawTable reads a survey export into a RawTable without any header
// assumption. The format is chosen by the filename extension: .xlsx goes
// through excelize, everything else is parsed as comma-separated UTF-8 text.
func ReadRawTable(r io.Reader, filename string) (RawTable, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return readXLSX(r)
	}
	return readCSV(r)
}

// readCSV parses comma-separated text with variable field counts; quoted
// fields may contain the `;`/`,`/`/` delimiters used by multi-select answers.
func readCSV(r io.Reader) (RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: %w", ErrEmptyTable)
	}

	// Strip a UTF-8 BOM left by spreadsheet exports.
	if len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}

	slog.Debug("csv export loaded",
		slog.Int("rows", len(rows)),
		slog.Int("first_row_cells", len(rows[0])))

	return RawTable(rows), nil
}

// readXLSX extracts the first sheet of a workbook. Survey platforms export a
// single sheet; when there are several, the first one wins.
func readXLSX(r io.Reader) (RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], ErrEmptyTable)
	}

	slog.Debug("xlsx export loaded",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))

	return RawTable(rows), nil
}
