package artifacts

import "testing"

func TestDocumentInputNormalizedDefaults(t *testing.T) {
	in := DocumentInput{Document: "hello"}
	out := in.Normalized()
	if out.NumSlides != 15 {
		t.Fatalf("expected default NumSlides 15, got %d", out.NumSlides)
	}
	if out.Language != "ko" {
		t.Fatalf("expected default Language ko, got %q", out.Language)
	}
}

func TestDocumentInputNormalizedKeepsExplicitValues(t *testing.T) {
	in := DocumentInput{Document: "hello", NumSlides: 20, Language: "en"}
	out := in.Normalized()
	if out.NumSlides != 20 || out.Language != "en" {
		t.Fatalf("normalized overwrote explicit values: %+v", out)
	}
}

func TestPyramidMatchesFrameworkExact(t *testing.T) {
	f := FrameworkCatalog[FrameworkSWOT]
	p := Pyramid{
		TopMessage: "x",
		SupportingArguments: []SupportingArgument{
			{Category: "Strengths"},
			{Category: "Weaknesses"},
			{Category: "Opportunities"},
			{Category: "Threats"},
		},
	}
	if !p.MatchesFramework(f) {
		t.Fatal("expected exact category match")
	}
}

func TestPyramidMatchesFrameworkRejectsMismatch(t *testing.T) {
	f := FrameworkCatalog[Framework3C]
	p := Pyramid{
		SupportingArguments: []SupportingArgument{
			{Category: "Customer"},
			{Category: "Competitor"},
		},
	}
	if p.MatchesFramework(f) {
		t.Fatal("expected mismatch for missing category")
	}
}

func TestOutlineIsStructurallyValid(t *testing.T) {
	o := Outline{
		{Number: 1, Type: SlideTypeTitle},
		{Number: 2, Type: SlideTypeContent},
		{Number: 3, Type: SlideTypeNextSteps},
	}
	if !o.IsStructurallyValid(3) {
		t.Fatal("expected valid outline")
	}
	if o.IsStructurallyValid(4) {
		t.Fatal("expected length mismatch to fail")
	}
}

func TestOutlineIsStructurallyValidRejectsWrongFirstSlide(t *testing.T) {
	o := Outline{
		{Number: 1, Type: SlideTypeContent},
		{Number: 2, Type: SlideTypeNextSteps},
	}
	if o.IsStructurallyValid(2) {
		t.Fatal("expected rejection of non-title first slide")
	}
}

func TestSCRStructureCoversInterior(t *testing.T) {
	s := SCRStructure{
		SituationSlides:    []int{2, 3},
		ComplicationSlides: []int{4, 5},
		ResolutionSlides:   []int{6, 7, 8},
	}
	if !s.CoversInterior(9) {
		t.Fatal("expected interior {2..8} to be covered by disjoint partition")
	}
}

func TestSCRStructureCoversInteriorRejectsOverlap(t *testing.T) {
	s := SCRStructure{
		SituationSlides:    []int{2, 3},
		ComplicationSlides: []int{3, 4},
		ResolutionSlides:   []int{5},
	}
	if s.CoversInterior(6) {
		t.Fatal("expected overlap to be rejected")
	}
}

func TestSCRStructureCoversInteriorRejectsBoundarySlides(t *testing.T) {
	s := SCRStructure{
		SituationSlides:    []int{1, 2},
		ComplicationSlides: []int{3},
		ResolutionSlides:   []int{4},
	}
	if s.CoversInterior(4) {
		t.Fatal("expected slide 1 inclusion to be rejected")
	}
}

func TestDataPointIsValid(t *testing.T) {
	dp := DataPoint{Metric: "revenue", Unit: "KRW"}
	if !dp.IsValid() {
		t.Fatal("expected valid data point")
	}
	if (DataPoint{Metric: "", Unit: "KRW"}).IsValid() {
		t.Fatal("expected empty metric to be invalid")
	}
}

func TestInsightHasFourNonEmptyLevels(t *testing.T) {
	full := Insight{Observation: "o", Comparison: "c", Implication: "i", Action: "a", Confidence: 0.8}
	if !full.HasFourNonEmptyLevels() {
		t.Fatal("expected all four levels populated")
	}
	if !full.ConfidenceInRange() {
		t.Fatal("expected confidence within range")
	}
	if full.LadderLevel() != 4 {
		t.Fatalf("expected ladder level 4, got %d", full.LadderLevel())
	}

	partial := Insight{Observation: "o", Comparison: "c"}
	if partial.HasFourNonEmptyLevels() {
		t.Fatal("expected partial ladder to fail")
	}
	if partial.LadderLevel() != 2 {
		t.Fatalf("expected ladder level 2, got %d", partial.LadderLevel())
	}
}

func TestVisualizationIsValid(t *testing.T) {
	v := Visualization{Type: ChartBar, Labels: []string{"a", "b"}, Values: []float64{1, 2}}
	if !v.IsValid() {
		t.Fatal("expected valid visualization")
	}
	if (Visualization{Type: ChartBar, Labels: []string{"a"}, Values: []float64{1, 2}}).IsValid() {
		t.Fatal("expected length mismatch to be invalid")
	}
	empty := Visualization{Type: ChartBar}
	if empty.IsValid() {
		t.Fatal("expected zero-length series to be invalid")
	}
}

func TestQualityScoreComputeTotal(t *testing.T) {
	q := QualityScore{
		Clarity:       0.9,
		Insight:       0.8,
		Structure:     0.7,
		Visual:        0.6,
		Actionability: 0.5,
	}
	got := q.ComputeTotal()
	want := 0.9*0.20 + 0.8*0.25 + 0.7*0.20 + 0.6*0.15 + 0.5*0.20
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("ComputeTotal mismatch: got %v want %v", got, want)
	}
}

func TestQualityScoreHighestPriorityHintCategory(t *testing.T) {
	q := QualityScore{Hints: []ImprovementHint{
		{Criterion: CriterionVisual, Priority: PriorityLow},
		{Criterion: CriterionInsight, Priority: PriorityHigh},
	}}
	c, ok := q.HighestPriorityHintCategory()
	if !ok || c != CriterionInsight {
		t.Fatalf("expected insight high-priority hint, got %v %v", c, ok)
	}

	none := QualityScore{Hints: []ImprovementHint{{Criterion: CriterionVisual, Priority: PriorityLow}}}
	if _, ok := none.HighestPriorityHintCategory(); ok {
		t.Fatal("expected no high-priority hint")
	}
}

func TestStyledDeckExtractedText(t *testing.T) {
	d := StyledDeck{Slides: []StyledSlide{
		{SlideSpec: SlideSpec{Number: 1, Title: "t", Headline: "h"}, Bullets: []string{"b1"}},
	}}
	texts := d.ExtractedText()
	if len(texts) != 1 || texts[0].Title != "t" || texts[0].Bullets[0] != "b1" {
		t.Fatalf("unexpected extracted text: %+v", texts)
	}
}

func TestFrameworkNameIsValid(t *testing.T) {
	if !Framework3C.IsValid() {
		t.Fatal("expected 3C to be valid")
	}
	if FrameworkName("BOGUS").IsValid() {
		t.Fatal("expected unknown framework name to be invalid")
	}
}
