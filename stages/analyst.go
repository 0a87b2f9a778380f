package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/insight"
	"github.com/deckforge/deckforge/llm"
)

// AnalystOutput bundles the Analyst's artifacts (spec.md §4.3).
type AnalystOutput struct {
	DataPoints     []artifacts.DataPoint
	Insights       []artifacts.Insight
	Visualizations []artifacts.Visualization
}

// Analyst extracts quantitative data from the document, falls back to
// deterministic synthesis when extraction yields nothing usable, climbs
// the insight ladder for each datum, and maps insights to chart specs.
// Grounded on original_source/.../agents/data_analyst_agent.py's
// process() pipeline.
type Analyst struct {
	Client *llm.Client
	Logger core.Logger
}

// NewAnalyst builds an Analyst. A nil Logger is replaced with a no-op.
func NewAnalyst(client *llm.Client, logger core.Logger) *Analyst {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Analyst{Client: client, Logger: logger}
}

// Run executes extraction -> validation -> fallback -> insight ladder ->
// visualization mapping (spec.md §4.3). The only silent-degradation
// point is the fallback synthesizer; it is surfaced via
// StageResult.Degraded, never hidden.
func (a *Analyst) Run(ctx context.Context, doc artifacts.DocumentInput) StageResult[AnalystOutput] {
	doc = doc.Normalized()

	dataPoints, degraded := a.extractData(ctx, doc.Document)

	insights := make([]artifacts.Insight, 0, len(dataPoints))
	visualizations := make([]artifacts.Visualization, 0, len(dataPoints))
	for _, dp := range dataPoints {
		in := insight.Climb(dp, doc.Language)
		insights = append(insights, in)
		visualizations = append(visualizations, mapToVisualization(dp, in))
	}

	out := AnalystOutput{DataPoints: dataPoints, Insights: insights, Visualizations: visualizations}
	if degraded {
		return DegradedResult(out, "analyst: extraction yielded no valid data points, deterministic fallback applied")
	}
	return OkResult(out)
}

type dataPointComparisonReply struct {
	Previous   *float64 `json:"previous"`
	GrowthRate *float64 `json:"growth_rate"`
	Benchmark  *float64 `json:"benchmark"`
}

type dataPointReply struct {
	Metric     string                     `json:"metric"`
	Value      json.Number                `json:"value"`
	Unit       string                     `json:"unit"`
	Period     string                     `json:"period"`
	Comparison *dataPointComparisonReply  `json:"comparison"`
	Context    string                     `json:"context"`
}

// extractData runs §4.3.1 extraction + validation, falling back to
// §4.3.2 synthesis when nothing valid survives. The bool return reports
// whether the fallback path was taken.
func (a *Analyst) extractData(ctx context.Context, document string) ([]artifacts.DataPoint, bool) {
	candidates, err := a.requestDataPoints(ctx, document)
	if err != nil {
		a.Logger.Warn("analyst: extraction failed, using fallback", map[string]interface{}{"error": err.Error()})
		return fallbackDataPoints(document), true
	}

	valid := make([]artifacts.DataPoint, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsValid() {
			continue
		}
		c.ID = fmt.Sprintf("data_%03d", len(valid)+1)
		valid = append(valid, c)
	}

	if len(valid) == 0 {
		a.Logger.Warn("analyst: no valid data points extracted, using fallback", nil)
		return fallbackDataPoints(document), true
	}
	return valid, false
}

func (a *Analyst) requestDataPoints(ctx context.Context, document string) ([]artifacts.DataPoint, error) {
	prompt := buildExtractionPrompt(document)
	resp, err := a.Client.Generate(ctx, prompt, llm.Options{})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(resp.Content, llm.ShapeArray)
	if err != nil {
		return nil, err
	}

	var replies []dataPointReply
	if err := json.Unmarshal(raw, &replies); err != nil {
		return nil, err
	}

	out := make([]artifacts.DataPoint, 0, len(replies))
	for _, r := range replies {
		value, err := r.Value.Float64()
		if err != nil {
			continue
		}
		dp := artifacts.DataPoint{
			Metric:  r.Metric,
			Value:   value,
			Unit:    r.Unit,
			Period:  r.Period,
			Context: r.Context,
		}
		if r.Comparison != nil {
			cmp := &artifacts.Comparison{}
			if r.Comparison.Previous != nil {
				cmp.Previous = *r.Comparison.Previous
				cmp.HasPrevious = true
			}
			if r.Comparison.GrowthRate != nil {
				cmp.GrowthRate = *r.Comparison.GrowthRate
				cmp.HasGrowth = true
			}
			if r.Comparison.Benchmark != nil {
				cmp.Benchmark = *r.Comparison.Benchmark
				cmp.HasBenchmark = true
			}
			dp.Comparison = cmp
		}
		out = append(out, dp)
	}
	return out, nil
}

func buildExtractionPrompt(document string) string {
	var b strings.Builder
	b.WriteString("Extract every quantitative data point from this business document.\n\n")
	b.WriteString("Document:\n")
	b.WriteString(document)
	b.WriteString("\n\nRespond as a JSON array: [{\"metric\":..,\"value\":<number>,\"unit\":..,\"period\":..,\"comparison\":{\"previous\":..,\"growth_rate\":..,\"benchmark\":..},\"context\":..}]")
	b.WriteString("\nExtract at least 5 data points where possible.")
	return b.String()
}

var numberToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// fallbackDataPoints is the §4.3.2 deterministic synthesizer: scans
// numeric tokens out of the document and fills unknown fields with
// neutral defaults. Guarantees at least three DataPoints.
func fallbackDataPoints(document string) []artifacts.DataPoint {
	tokens := numberToken.FindAllString(document, -1)
	values := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if v, err := strconv.ParseFloat(t, 64); err == nil {
			values = append(values, v)
		}
	}

	pick := func(i int, def float64) float64 {
		if i < len(values) {
			return values[i]
		}
		return def
	}

	defaults := []struct {
		metric  string
		value   float64
		prev    float64
		bench   float64
		period  string
		context string
	}{
		{"Technology Investment", pick(0, 30), pick(1, 20), 35, "Next 3 Years", "Planned investment increase"},
		{"ROI Projection", pick(2, 25), pick(3, 15), 20, "3 Year", "Expected return on investment"},
		{"Market Share", pick(4, 15.5), pick(5, 12), 18, "Current", "Current market position"},
	}

	out := make([]artifacts.DataPoint, 0, len(defaults))
	for i, d := range defaults {
		growth := 0.0
		if d.prev != 0 {
			growth = (d.value - d.prev) / d.prev * 100
		}
		out = append(out, artifacts.DataPoint{
			ID:     fmt.Sprintf("data_%03d", i+1),
			Metric: d.metric,
			Value:  d.value,
			Unit:   "%",
			Period: d.period,
			Comparison: &artifacts.Comparison{
				Previous: d.prev, HasPrevious: true,
				GrowthRate: growth, HasGrowth: true,
				Benchmark: d.bench, HasBenchmark: true,
			},
			Context:  d.context,
			Degraded: true,
		})
	}
	return out
}

var yearQuarterMarkers = []string{"year", "quarter", "년", "분기", "q1", "q2", "q3", "q4"}

// mapToVisualization selects a chart type and builds its spec per the
// classification table of spec.md §4.3.4.
func mapToVisualization(dp artifacts.DataPoint, in artifacts.Insight) artifacts.Visualization {
	chartType := artifacts.ChartBar
	switch {
	case dp.Comparison != nil && dp.Comparison.HasGrowth:
		chartType = artifacts.ChartBar
	case containsAny(strings.ToLower(dp.Period), yearQuarterMarkers...):
		chartType = artifacts.ChartLine
	case strings.EqualFold(dp.Unit, "%") && dp.Value <= 100:
		chartType = artifacts.ChartPie
	}

	synthetic := dp.Comparison == nil || !(dp.Comparison.HasPrevious || dp.Comparison.HasBenchmark)
	labels, values := visualizationSeries(dp, chartType, synthetic)

	return artifacts.Visualization{
		Type:      chartType,
		Title:     dp.Metric,
		Labels:    labels,
		Values:    values,
		InsightID: dp.ID,
		Synthetic: synthetic,
	}
}

// visualizationSeries derives a labeled numeric series from the
// DataPoint's comparison fields, falling back to a bounded synthetic
// series (spec.md §4.3.4) when concrete comparison data is absent.
func visualizationSeries(dp artifacts.DataPoint, chartType artifacts.ChartType, synthetic bool) ([]string, []float64) {
	if !synthetic {
		labels := []string{"Previous", "Current"}
		values := []float64{dp.Comparison.Previous, dp.Value}
		if dp.Comparison.HasBenchmark {
			labels = append(labels, "Benchmark")
			values = append(values, dp.Comparison.Benchmark)
		}
		return labels, values
	}

	switch chartType {
	case artifacts.ChartLine:
		return []string{"Q1", "Q2", "Q3", "Q4"}, []float64{dp.Value * 0.8, dp.Value * 0.9, dp.Value * 0.95, dp.Value}
	case artifacts.ChartPie:
		remainder := 100 - dp.Value
		if remainder < 0 {
			remainder = 0
		}
		return []string{dp.Metric, "Other"}, []float64{dp.Value, remainder}
	default:
		return []string{"Current"}, []float64{dp.Value}
	}
}
