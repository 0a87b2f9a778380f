package stages

import (
	"context"
	"testing"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/llm"
)

const dataPointsJSON = `[
 {"metric":"Revenue","value":120,"unit":"억원","period":"2024년","comparison":{"previous":100,"growth_rate":20,"benchmark":110},"context":"annual revenue"},
 {"metric":"Market Share","value":15,"unit":"%","period":"Current","comparison":{"previous":12},"context":"share"},
 {"metric":"Bad Row","unit":"%"}
]`

func TestAnalystRunExtractsAndClimbsInsights(t *testing.T) {
	client, _ := newTestClient(llm.MockReply{Content: dataPointsJSON})
	analyst := NewAnalyst(client, core.NoOpLogger{})

	result := analyst.Run(context.Background(), artifacts.DocumentInput{Document: "doc with 120 and 100", Language: "ko"})
	if result.Outcome != Ok {
		t.Fatalf("expected Ok outcome, got %v", result.Outcome)
	}
	if len(result.Value.DataPoints) != 2 {
		t.Fatalf("expected 2 valid data points (invalid row dropped), got %d", len(result.Value.DataPoints))
	}
	if len(result.Value.Insights) != len(result.Value.DataPoints) {
		t.Fatal("expected one insight per data point")
	}
	for _, in := range result.Value.Insights {
		if !in.HasFourNonEmptyLevels() {
			t.Fatalf("expected four non-empty ladder levels, got %+v", in)
		}
	}
	if len(result.Value.Visualizations) != len(result.Value.DataPoints) {
		t.Fatal("expected one visualization per data point")
	}
}

func TestAnalystRunFallsBackWhenExtractionEmpty(t *testing.T) {
	client, _ := newTestClient(llm.MockReply{Content: `[]`})
	analyst := NewAnalyst(client, core.NoOpLogger{})

	result := analyst.Run(context.Background(), artifacts.DocumentInput{Document: "revenue grew from 100 to 120 this year", Language: "ko"})
	if result.Outcome != Degraded {
		t.Fatalf("expected Degraded outcome on empty extraction, got %v", result.Outcome)
	}
	if len(result.Value.DataPoints) < 3 {
		t.Fatalf("expected fallback to synthesize at least 3 data points, got %d", len(result.Value.DataPoints))
	}
	for _, dp := range result.Value.DataPoints {
		if !dp.Degraded {
			t.Fatal("expected fallback data points to be marked Degraded")
		}
	}
}

func TestAnalystRunFallsBackOnUnparseableReply(t *testing.T) {
	client, _ := newTestClient(llm.MockReply{Content: "not json"})
	analyst := NewAnalyst(client, core.NoOpLogger{})

	result := analyst.Run(context.Background(), artifacts.DocumentInput{Document: "some numbers 10 20 30 40", Language: "ko"})
	if result.Outcome != Degraded {
		t.Fatalf("expected Degraded outcome, got %v", result.Outcome)
	}
}

func TestMapToVisualizationFlagsSyntheticSeriesWhenComparisonMissing(t *testing.T) {
	dp := artifacts.DataPoint{ID: "data_001", Metric: "Revenue", Value: 50, Unit: "%", Period: "Current"}
	in := artifacts.Insight{DataPointID: dp.ID, Observation: "o", Comparison: "c", Implication: "i", Action: "a", Confidence: 0.6}

	viz := mapToVisualization(dp, in)
	if !viz.Synthetic {
		t.Fatal("expected synthetic flag when comparison data is absent")
	}
	if !viz.IsValid() {
		t.Fatalf("expected valid visualization, got %+v", viz)
	}
}

func TestMapToVisualizationUsesRealSeriesWhenComparisonPresent(t *testing.T) {
	dp := artifacts.DataPoint{
		ID: "data_001", Metric: "Revenue", Value: 120, Unit: "억원", Period: "2024년",
		Comparison: &artifacts.Comparison{Previous: 100, HasPrevious: true, GrowthRate: 20, HasGrowth: true},
	}
	in := artifacts.Insight{DataPointID: dp.ID, Observation: "o", Comparison: "c", Implication: "i", Action: "a", Confidence: 0.9}

	viz := mapToVisualization(dp, in)
	if viz.Synthetic {
		t.Fatal("expected non-synthetic series when comparison data is present")
	}
	if viz.Type != artifacts.ChartBar {
		t.Fatalf("expected bar chart for growth-rate comparison, got %v", viz.Type)
	}
}
