package artifacts

import "strings"

// Comparison carries the optional comparison fields of a DataPoint
// (spec.md §3.1).
type Comparison struct {
	Previous   float64
	HasPrevious bool
	GrowthRate float64 // (value - previous) / previous * 100
	HasGrowth  bool
	Benchmark  float64
	HasBenchmark bool
	// Drivers maps a contributor name to its percentage contribution to
	// the change, when known (populated from LLM extraction or left
	// empty; used by the level-3 implication rule, spec.md §4.3.3).
	Drivers map[string]float64
}

// DataPoint is a validated quantitative claim extracted (or
// deterministically synthesized) by the Analyst (spec.md §3.1, §4.3.1).
type DataPoint struct {
	ID         string
	Metric     string
	Value      float64
	Unit       string
	Period     string
	Comparison *Comparison
	Context    string

	// Degraded marks a DataPoint produced by the §4.3.2 fallback
	// synthesizer rather than LLM extraction (non-silent per SPEC_FULL.md
	// §9 Open-Question resolution).
	Degraded bool
}

// IsValid checks the §3.1 validation rule: metric and unit non-empty.
// Numeric parseability is enforced at construction time by the analyst,
// since Value is already a float64 here.
func (d DataPoint) IsValid() bool {
	return strings.TrimSpace(d.Metric) != "" && strings.TrimSpace(d.Unit) != ""
}
