package report

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"alumnipulse/internal/dataprocessing"
	"alumnipulse/pkg/contracts/domain"
)

// Signals a question produced zero usable answers, or (for Likert) that no
// answer could be read as a number. The driver turns these into operator
// notices instead of empty charts.
var (
	ErrNoData  = errors.New("no data for this question")
	ErrNoScale = errors.New("could not interpret the 1-5 scale")
)

var (
	binaryYes      = regexp.MustCompile(`(?i)^(si|sí|true|1|x)$`)
	binaryNo       = regexp.MustCompile(`(?i)^(no|false|0)$`)
	multiDelimiter = regexp.MustCompile(`[;,/]`)
)

// nonMissing returns the trimmed values of a column with empty cells dropped.
func nonMissing(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// AggregateBinary canonicalizes yes/no style answers ("si", "x", "1", "true"
// map to "Sí"; "no", "0", "false" map to "No"; anything else passes through
// verbatim) and counts them, descending.
func AggregateBinary(values []string) (domain.Distribution, error) {
	answers := nonMissing(values)
	if len(answers) == 0 {
		return nil, ErrNoData
	}

	c := newCounter()
	for _, v := range answers {
		switch {
		case binaryYes.MatchString(v):
			c.Add("Sí")
		case binaryNo.MatchString(v):
			c.Add("No")
		default:
			c.Add(v)
		}
	}
	return c.Descending(), nil
}

// AggregateCategorical counts distinct trimmed answers, keeping the top k.
// When bucket is non-nil each answer is mapped through it first (the
// benefits free-text question).
func AggregateCategorical(values []string, k int, bucket func(string) string) (domain.Distribution, error) {
	answers := nonMissing(values)
	if bucket != nil {
		mapped := make([]string, 0, len(answers))
		for _, v := range answers {
			if b := bucket(v); b != "" {
				mapped = append(mapped, b)
			}
		}
		answers = mapped
	}
	if len(answers) == 0 {
		return nil, ErrNoData
	}

	c := newCounter()
	for _, v := range answers {
		c.Add(v)
	}
	return topK(c.Descending(), k), nil
}

// AggregateMulti splits each answer on ";", "," and "/", pools the trimmed
// tokens from all rows and counts distinct tokens, keeping the top k.
func AggregateMulti(values []string, k int) (domain.Distribution, error) {
	c := newCounter()
	total := 0
	for _, v := range nonMissing(values) {
		for _, token := range multiDelimiter.Split(v, -1) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			c.Add(token)
			total++
		}
	}
	if total == 0 {
		return nil, ErrNoData
	}
	return topK(c.Descending(), k), nil
}

// LikertResult carries the fixed five-bucket distribution plus the mean of
// the unrounded parsed values, formatted to two decimals for display.
type LikertResult struct {
	Distribution domain.Distribution
	Mean         string
}

// AggregateLikert parses each answer as a decimal number (comma decimal
// separator accepted), silently dropping unparseable values, rounds half to
// even and buckets into the fixed categories 1..5. The
// distribution always has exactly five entries ordered 1 to 5, zero-filled.
// ErrNoData means the column had no answers at all; ErrNoScale means answers
// existed but none parsed.
func AggregateLikert(values []string) (*LikertResult, error) {
	answers := nonMissing(values)
	if len(answers) == 0 {
		return nil, ErrNoData
	}

	var parsed []float64
	for _, v := range answers {
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			continue
		}
		parsed = append(parsed, n)
	}
	if len(parsed) == 0 {
		return nil, ErrNoScale
	}

	var buckets [5]int
	sum := 0.0
	for _, n := range parsed {
		sum += n
		// Half-to-even, matching how the report template buckets scale
		// values: 2.5 belongs to bucket 2, 3.5 to bucket 4.
		r := int(math.RoundToEven(n))
		if r >= 1 && r <= 5 {
			buckets[r-1]++
		}
	}

	dist := make(domain.Distribution, 5)
	for i, count := range buckets {
		dist[i] = domain.DistributionEntry{Label: strconv.Itoa(i + 1), Count: count}
	}

	return &LikertResult{
		Distribution: dist,
		Mean:         fmt.Sprintf("%.2f", sum/float64(len(parsed))),
	}, nil
}

// AggregateMultiColumns counts, for each configured option column present in
// the frame, the rows whose value coerces to a nonzero number. The column
// name is the category label. Absent columns are skipped silently; the
// result is sorted descending and truncated to k.
func AggregateMultiColumns(frame *dataprocessing.Frame, optionColumns []string, k int) (domain.Distribution, error) {
	dist := make(domain.Distribution, 0, len(optionColumns))
	for _, name := range optionColumns {
		values, err := frame.Column(name)
		if err != nil {
			continue
		}
		count := 0
		for _, v := range values {
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				// Non-numeric and missing cells coerce to zero, i.e. not selected.
				continue
			}
			if n != 0 {
				count++
			}
		}
		dist = append(dist, domain.DistributionEntry{Label: name, Count: count})
	}
	if len(dist) == 0 {
		return nil, ErrNoData
	}

	sortDescendingStable(dist)
	return topK(dist, k), nil
}
