package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"alumnipulse/internal/dataprocessing"
	"alumnipulse/pkg/contracts/domain"
)

// sectionOrder is the fixed rendering order of the report parts. Sections
// configured outside this set render after it, in configuration order, with
// a generic "Parte X" title.
var sectionOrder = []string{"A", "B", "C", "D", "E"}

var sectionTitles = map[string]string{
	"A": "Situación Laboral",
	"B": "Emprendimiento",
	"C": "Satisfacción con los recursos ofrecidos por la Universidad",
	"D": "Autoevaluación",
	"E": "Acreditación Institucional",
}

// SectionTitle returns the display title for a section key.
func SectionTitle(key string) string {
	if title, ok := sectionTitles[strings.ToUpper(key)]; ok {
		return title
	}
	return fmt.Sprintf("Parte %s", strings.ToUpper(key))
}

// Sink receives the rendered report stream. The charting layer is external;
// it gets sorted (label, count) pairs plus a chart-kind hint per question,
// notices for questions that produced no chart, and a single warning when
// the filter left no rows.
type Sink interface {
	Section(key, title string)
	Question(q domain.RenderedQuestion)
	Warning(message string)
}

// Driver walks the configured sections/questions of one filtered frame,
// dispatches to the per-type aggregators and streams results into a Sink.
type Driver struct {
	logger *slog.Logger
}

// NewDriver creates a report driver.
func NewDriver(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger.With(slog.String("component", "report_driver"))}
}

// Run renders every configured question against frame into sink. A frame
// with zero rows short-circuits into a single top-level warning with no
// per-question output. Per-question problems (missing column, unsupported
// type, no data) are non-fatal notices; Run itself only fails on nil inputs.
func (d *Driver) Run(ctx context.Context, frame *dataprocessing.Frame, set domain.QuestionSet, sink Sink) error {
	if frame == nil || sink == nil {
		return fmt.Errorf("report driver requires a frame and a sink")
	}

	if frame.NumRows() == 0 {
		sink.Warning("No hay respuestas para ese filtro. Cambia Programa/AñoEgreso.")
		d.logger.WarnContext(ctx, "filter left zero rows, skipping all sections")
		return nil
	}

	k := set.TopKOrDefault()
	for _, key := range d.sectionKeys(set) {
		questions := questionsInSection(set, key)
		if len(questions) == 0 {
			continue
		}
		sink.Section(key, SectionTitle(key))
		for _, q := range questions {
			rendered := d.renderQuestion(frame, q, k)
			sink.Question(rendered)
			if rendered.Notice != "" {
				d.logger.InfoContext(ctx, "question rendered without chart",
					slog.String("question", q.ID),
					slog.String("notice", string(rendered.Notice)),
					slog.String("detail", rendered.NoticeDetail))
			}
		}
	}
	return nil
}

// sectionKeys yields the fixed A-E order followed by any extra configured
// sections in first-appearance order.
func (d *Driver) sectionKeys(set domain.QuestionSet) []string {
	keys := make([]string, 0, len(sectionOrder))
	seen := make(map[string]bool)
	for _, key := range sectionOrder {
		keys = append(keys, key)
		seen[key] = true
	}
	for _, q := range set.Questions {
		key := strings.ToUpper(strings.TrimSpace(q.Section))
		if key != "" && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	return keys
}

func questionsInSection(set domain.QuestionSet, key string) []domain.QuestionSpec {
	var out []domain.QuestionSpec
	for _, q := range set.Questions {
		if strings.EqualFold(strings.TrimSpace(q.Section), key) {
			out = append(out, q)
		}
	}
	return out
}

// renderQuestion aggregates one question into a RenderedQuestion, folding
// aggregation failures into notices.
func (d *Driver) renderQuestion(frame *dataprocessing.Frame, q domain.QuestionSpec, k int) domain.RenderedQuestion {
	rendered := domain.RenderedQuestion{
		ID:    q.ID,
		Label: q.Label,
		Type:  q.Type,
	}

	if !q.Type.Valid() {
		rendered.Notice = domain.NoticeUnsupportedType
		rendered.NoticeDetail = string(q.Type)
		return rendered
	}

	// All types except MULTI_COLUMNS read a single answer column that has to
	// exist in the resolved frame.
	if q.Type != domain.QuestionTypeMultiColumns && !frame.HasColumn(q.Column) {
		rendered.Notice = domain.NoticeMissingColumn
		rendered.NoticeDetail = q.Column
		return rendered
	}

	var (
		dist domain.Distribution
		mean string
		err  error
	)

	switch q.Type {
	case domain.QuestionTypeBinary:
		dist, err = AggregateBinary(d.column(frame, q.Column))
	case domain.QuestionTypeCategorical:
		var bucket func(string) string
		if strings.TrimSpace(q.Column) == BenefitsColumn {
			bucket = BucketBenefits
		}
		dist, err = AggregateCategorical(d.column(frame, q.Column), k, bucket)
	case domain.QuestionTypeMulti:
		dist, err = AggregateMulti(d.column(frame, q.Column), k)
	case domain.QuestionTypeLikert:
		var res *LikertResult
		res, err = AggregateLikert(d.column(frame, q.Column))
		if err == nil {
			dist, mean = res.Distribution, res.Mean
		}
	case domain.QuestionTypeMultiColumns:
		dist, err = AggregateMultiColumns(frame, q.Columns, k)
	}

	switch {
	case errors.Is(err, ErrNoScale):
		rendered.Notice = domain.NoticeNoLikertScale
	case errors.Is(err, ErrNoData):
		rendered.Notice = domain.NoticeNoData
	case err == nil:
		rendered.ChartKind = domain.ChartKindFor(q.Type)
		rendered.Distribution = dist
		rendered.Mean = mean
	}
	return rendered
}

// column fetches the answer column; existence was checked by the caller so a
// lookup failure only happens on races that cannot occur with an immutable
// frame, and is treated as an empty column.
func (d *Driver) column(frame *dataprocessing.Frame, name string) []string {
	values, err := frame.Column(name)
	if err != nil {
		return nil
	}
	return values
}

// Builder is a Sink that accumulates the stream into a domain.Report.
type Builder struct {
	report domain.Report
}

// NewBuilder creates an empty report builder with cover metadata.
func NewBuilder(sel domain.FilterSelection, responses int) *Builder {
	return &Builder{report: domain.Report{
		Program:   sel.Program,
		Year:      sel.Year,
		Responses: responses,
	}}
}

func (b *Builder) Section(key, title string) {
	b.report.Sections = append(b.report.Sections, domain.ReportSection{Key: key, Title: title})
}

func (b *Builder) Question(q domain.RenderedQuestion) {
	if len(b.report.Sections) == 0 {
		// The driver always opens a section before its questions.
		b.report.Sections = append(b.report.Sections, domain.ReportSection{})
	}
	last := &b.report.Sections[len(b.report.Sections)-1]
	last.Questions = append(last.Questions, q)
}

func (b *Builder) Warning(message string) {
	b.report.Warning = message
}

// Report returns the accumulated report.
func (b *Builder) Report() domain.Report {
	return b.report
}
