package artifacts

import "strings"

// Insight is the four-level analytical ladder derived from one
// DataPoint (spec.md §3.1, §4.3.3).
type Insight struct {
	DataPointID string
	Observation string
	Comparison  string
	Implication string
	Action      string
	Confidence  float64 // in [0,1]

	// Evidence supplements the required four levels with the concrete
	// figures used to derive Comparison/Implication (e.g. driver name,
	// benchmark ratio), per SPEC_FULL.md §4.3.3 expansion grounded on
	// original_source/insight_ladder.py.
	Evidence []string
}

// HasFourNonEmptyLevels checks testable property #6 (spec.md §8).
func (i Insight) HasFourNonEmptyLevels() bool {
	return strings.TrimSpace(i.Observation) != "" &&
		strings.TrimSpace(i.Comparison) != "" &&
		strings.TrimSpace(i.Implication) != "" &&
		strings.TrimSpace(i.Action) != ""
}

// ConfidenceInRange checks testable property #6's confidence bound.
func (i Insight) ConfidenceInRange() bool {
	return i.Confidence >= 0 && i.Confidence <= 1
}

// LadderLevel reports the highest populated level (1-4), used by the
// Quality Evaluator's insight sub-score (spec.md §4.6).
func (i Insight) LadderLevel() int {
	level := 0
	if strings.TrimSpace(i.Observation) != "" {
		level = 1
	}
	if strings.TrimSpace(i.Comparison) != "" {
		level = 2
	}
	if strings.TrimSpace(i.Implication) != "" {
		level = 3
	}
	if strings.TrimSpace(i.Action) != "" {
		level = 4
	}
	return level
}

// ChartType is the closed set of chart mappings (spec.md §3.1, §4.3.4).
type ChartType string

const (
	ChartBar         ChartType = "bar"
	ChartLine        ChartType = "line"
	ChartPie         ChartType = "pie"
	ChartWaterfall   ChartType = "waterfall"
	ChartStackedBar  ChartType = "stacked_bar"
)

// Visualization maps one insight to a chart spec (spec.md §3.1, §4.3.4).
type Visualization struct {
	Type      ChartType
	Title     string
	Labels    []string
	Values    []float64
	InsightID string // source insight reference (DataPointID)

	// Synthetic marks a bounded synthetic series emitted because
	// concrete comparison data was missing (spec.md §4.3.4, §7
	// Local-only degradation: "noted but not reported as error").
	Synthetic bool
}

// IsValid checks the 1..20 label/value-length invariant (spec.md §3.1).
func (v Visualization) IsValid() bool {
	n := len(v.Labels)
	return n >= 1 && n <= 20 && n == len(v.Values)
}
