package domain

// QuestionType defines the rendering/aggregation strategy for a survey question.
type QuestionType string

const (
	QuestionTypeBinary       QuestionType = "BINARY"
	QuestionTypeCategorical  QuestionType = "CATEGORICAL"
	QuestionTypeMulti        QuestionType = "MULTI"
	QuestionTypeLikert       QuestionType = "LIKERT"
	QuestionTypeMultiColumns QuestionType = "MULTI_COLUMNS"
)

// Valid reports whether the question type belongs to the closed supported set.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeBinary, QuestionTypeCategorical, QuestionTypeMulti,
		QuestionTypeLikert, QuestionTypeMultiColumns:
		return true
	}
	return false
}

// QuestionSpec is one configured survey question. Column is required for all
// types except MULTI_COLUMNS, which instead carries an ordered list of
// option columns holding 0/1 style selections.
type QuestionSpec struct {
	ID      string       `json:"id" validate:"required"`
	Section string       `json:"section" validate:"required"`
	Type    QuestionType `json:"type" validate:"required,oneof=BINARY CATEGORICAL MULTI LIKERT MULTI_COLUMNS"`
	Label   string       `json:"label" validate:"required"`
	Column  string       `json:"column,omitempty" validate:"required_unless=Type MULTI_COLUMNS"`
	Columns []string     `json:"columns,omitempty" validate:"required_if=Type MULTI_COLUMNS"`
}

// QuestionSet is the external question configuration consumed by the report
// driver. It is read-only to the core pipeline.
type QuestionSet struct {
	Questions []QuestionSpec `json:"questions" validate:"required,min=1,dive"`
	TopK      int            `json:"top_k_categories" validate:"min=0"`
}

// DefaultTopK caps how many categories CATEGORICAL, MULTI and MULTI_COLUMNS
// distributions keep when the config does not say otherwise.
const DefaultTopK = 10

// TopKOrDefault returns the configured category cap, falling back to DefaultTopK.
func (s QuestionSet) TopKOrDefault() int {
	if s.TopK <= 0 {
		return DefaultTopK
	}
	return s.TopK
}

// DistributionEntry is a single (label, count) pair of a Distribution.
type DistributionEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution is an ordered sequence of (label, count) pairs summarizing one
// answer column. Produced transiently per question render.
type Distribution []DistributionEntry

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, e := range d {
		total += e.Count
	}
	return total
}

// ChartKind hints the external chart layer how a distribution should be drawn.
type ChartKind string

const (
	ChartKindBarVertical   ChartKind = "bar_vertical"
	ChartKindBarHorizontal ChartKind = "bar_horizontal"
	ChartKindLikertScale   ChartKind = "likert_scale"
)

// ChartKindFor maps a question type to its chart kind.
func ChartKindFor(t QuestionType) ChartKind {
	switch t {
	case QuestionTypeBinary:
		return ChartKindBarVertical
	case QuestionTypeLikert:
		return ChartKindLikertScale
	default:
		return ChartKindBarHorizontal
	}
}

// Sentinel values for the two filter axes. They are display-stable and cannot
// collide with real column data (real programs never carry the "Todos los"
// prefix used by the export template, and years are bare 4-digit strings).
const (
	AllPrograms = "Todos los programas"
	AllYears    = "Todos"
)

// FilterSelection is the operator's current (program, year) choice. Each axis
// is either a concrete value or its "all" sentinel. Created per interaction
// and consumed immediately; never persisted.
type FilterSelection struct {
	Program string `json:"program"`
	Year    string `json:"year"`
}

// AllRows reports whether the selection filters nothing on either axis.
func (f FilterSelection) AllRows() bool {
	return f.Program == AllPrograms && f.Year == AllYears
}

// FilterCandidates are the selectable values for the two filter widgets,
// each list prefixed with its sentinel.
type FilterCandidates struct {
	Programs []string `json:"programs"`
	Years    []string `json:"years"`
}

// NoticeKind distinguishes the non-fatal per-question conditions surfaced to
// the operator instead of a chart.
type NoticeKind string

const (
	NoticeMissingColumn   NoticeKind = "missing_column"
	NoticeUnsupportedType NoticeKind = "unsupported_type"
	NoticeNoData          NoticeKind = "no_data"
	NoticeNoLikertScale   NoticeKind = "no_likert_scale"
)

// RenderedQuestion is the per-question output handed to the rendering sink:
// either a distribution plus chart hints, or a notice explaining why no chart
// was produced.
type RenderedQuestion struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	Type         QuestionType `json:"type"`
	ChartKind    ChartKind    `json:"chart_kind,omitempty"`
	Distribution Distribution `json:"distribution,omitempty"`
	// Mean is the formatted two-decimal Likert mean, empty for other types.
	Mean   string     `json:"mean,omitempty"`
	Notice NoticeKind `json:"notice,omitempty"`
	// NoticeDetail carries the missing column name or similar context.
	NoticeDetail string `json:"notice_detail,omitempty"`
}

// ReportSection groups rendered questions under a section title.
type ReportSection struct {
	Key       string             `json:"key"`
	Title     string             `json:"title"`
	Questions []RenderedQuestion `json:"questions"`
}

// Report is a full rendered report for one filtered frame.
type Report struct {
	Program   string          `json:"program"`
	Year      string          `json:"year"`
	Responses int             `json:"responses"`
	Sections  []ReportSection `json:"sections"`
	// Warning is set instead of sections when the filter left zero rows.
	Warning string `json:"warning,omitempty"`
}
