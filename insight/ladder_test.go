package insight

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/artifacts"
)

func baseDataPoint() artifacts.DataPoint {
	return artifacts.DataPoint{
		ID:     "dp-1",
		Metric: "매출",
		Value:  1_200_000_000,
		Unit:   "원",
		Period: "2026년",
	}
}

func TestClimbProducesFourNonEmptyLevels(t *testing.T) {
	dp := baseDataPoint()
	got := Climb(dp, "ko")
	if !got.HasFourNonEmptyLevels() {
		t.Fatalf("expected four non-empty levels, got %+v", got)
	}
	if !got.ConfidenceInRange() {
		t.Fatalf("expected confidence in [0,1], got %v", got.Confidence)
	}
}

func TestClimbIsPure(t *testing.T) {
	dp := baseDataPoint()
	dp.Comparison = &artifacts.Comparison{
		HasGrowth: true, GrowthRate: 12.5,
		HasBenchmark: true, Benchmark: 900_000_000,
		Drivers: map[string]float64{"신제품": 70, "기존제품": 30},
	}
	a := Climb(dp, "ko")
	b := Climb(dp, "ko")
	if a.Observation != b.Observation || a.Comparison != b.Comparison ||
		a.Implication != b.Implication || a.Action != b.Action || a.Confidence != b.Confidence {
		t.Fatalf("expected Climb to be pure/deterministic, got %+v vs %+v", a, b)
	}
}

func TestClimbUsesDominantDriverForImplication(t *testing.T) {
	dp := baseDataPoint()
	dp.Comparison = &artifacts.Comparison{
		Drivers: map[string]float64{"신제품": 70, "기존제품": 30},
	}
	got := Climb(dp, "ko")
	if !strings.Contains(got.Implication, "신제품") {
		t.Fatalf("expected implication to name the dominant driver, got %q", got.Implication)
	}
	if !strings.Contains(got.Implication, "70") {
		t.Fatalf("expected implication to cite the contribution percentage, got %q", got.Implication)
	}
}

func TestClimbFallsBackWithoutComparisonData(t *testing.T) {
	dp := baseDataPoint()
	got := Climb(dp, "ko")
	if got.Comparison == "" || got.Implication == "" {
		t.Fatal("expected fallback comparison/implication even without comparison data")
	}
}

func TestFormatNumberKoreanMagnitudes(t *testing.T) {
	if got := formatNumberKorean(1_200_000_000, "원"); !strings.Contains(got, "억") {
		t.Fatalf("expected 억 magnitude, got %q", got)
	}
	if got := formatNumberKorean(15_000_000_000_000, "원"); !strings.Contains(got, "조") {
		t.Fatalf("expected 조 magnitude, got %q", got)
	}
	if got := formatNumberKorean(500, "원"); got != "500.0원" {
		t.Fatalf("expected small value passthrough, got %q", got)
	}
}

func TestFormatNumberThousandsSeparator(t *testing.T) {
	got := formatNumberThousands(1234567, "")
	if got != "1,234,567" {
		t.Fatalf("expected thousands-grouped value, got %q", got)
	}
}
