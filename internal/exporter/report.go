package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"alumnipulse/pkg/contracts/domain"
)

// reportHeaders is the column layout of a report export.
var reportHeaders = []string{
	"seccion", "titulo_seccion", "pregunta", "tipo", "categoria", "conteo", "porcentaje", "media",
}

// ReportRecords flattens a rendered report into CSV rows, one row per
// distribution entry. Questions that produced a notice instead of a chart
// are skipped.
func ReportRecords(rep domain.Report) [][]string {
	var records [][]string

	for _, sec := range rep.Sections {
		for _, q := range sec.Questions {
			if q.Notice != "" {
				continue
			}
			total := q.Distribution.Total()
			for _, entry := range q.Distribution {
				share := 0.0
				if total > 0 {
					share = float64(entry.Count) / float64(total) * 100
				}
				records = append(records, []string{
					sec.Key,
					sec.Title,
					q.Label,
					string(q.Type),
					entry.Label,
					strconv.Itoa(entry.Count),
					formatFloat(share),
					q.Mean,
				})
			}
		}
	}

	return records
}

// WriteReport streams a rendered report as UTF-8 CSV with a BOM so Excel
// opens the accented Spanish labels correctly.
func WriteReport(w io.Writer, rep domain.Report) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range ReportRecords(rep) {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportFile persists a rendered report under the reports directory.
func (w *CSVWriter) WriteReportFile(filename string, rep domain.Report) error {
	return w.WriteCSV(filename, WriteOptions{
		Headers:   reportHeaders,
		Records:   ReportRecords(rep),
		BOMPrefix: true,
	})
}
