package quality

import (
	"testing"

	"github.com/deckforge/deckforge/artifacts"
)

func goodDeck() artifacts.StyledDeck {
	return artifacts.StyledDeck{Slides: []artifacts.StyledSlide{
		{
			SlideSpec: artifacts.SlideSpec{Number: 1, Title: "시장 개요 및 배경 소개", ContentType: artifacts.ContentText},
			Bullets:   []string{"시장 규모 1조원", "경쟁 강도 중간"},
		},
		{
			SlideSpec: artifacts.SlideSpec{Number: 2, Title: "신제품 출시로 매출 20% 증가 달성", ContentType: artifacts.ContentBullets},
			Bullets:   []string{"신제품 매출 기여 70%", "전략적 투자 필요"},
		},
		{
			SlideSpec: artifacts.SlideSpec{Number: 3, Title: "투자 확대 권고 및 실행 계획 제안", ContentType: artifacts.ContentSummary},
			Bullets:   []string{"최우선 과제로 실행 추진", "ROI 30% 목표"},
		},
	}}
}

func TestEvaluateProducesScoreWithinBounds(t *testing.T) {
	deck := goodDeck()
	pyramid := artifacts.Pyramid{SupportingArguments: []artifacts.SupportingArgument{
		{Category: "Strengths"}, {Category: "Weaknesses"}, {Category: "Opportunities"}, {Category: "Threats"},
	}}
	framework := artifacts.FrameworkCatalog[artifacts.FrameworkSWOT]
	insights := []artifacts.Insight{
		{Observation: "o", Comparison: "전년 대비 20% 증가", Implication: "신제품이 70% 기여", Action: "투자 확대 전략 필요"},
	}

	score := Evaluate(EvaluationInput{Deck: deck, Insights: insights, Pyramid: pyramid, Framework: framework, Target: 0.85})

	for _, v := range []float64{score.Clarity, score.Insight, score.Structure, score.Visual, score.Actionability, score.Total} {
		if v < 0 || v > 1 {
			t.Fatalf("expected sub-score within [0,1], got %v", v)
		}
	}
	if diff := score.Total - score.ComputeTotal(); diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("Total does not match ComputeTotal: %v vs %v", score.Total, score.ComputeTotal())
	}
}

func TestEvaluateFlagsMECEViolation(t *testing.T) {
	deck := goodDeck()
	pyramid := artifacts.Pyramid{SupportingArguments: []artifacts.SupportingArgument{{Category: "Strengths"}}}
	framework := artifacts.FrameworkCatalog[artifacts.FrameworkSWOT]

	score := Evaluate(EvaluationInput{Deck: deck, Pyramid: pyramid, Framework: framework, Target: 0.85})

	found := false
	for _, issue := range score.SlideIssues {
		if issue.Criterion == artifacts.CriterionStructure && issue.Severity == "error" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a structure error issue for MECE mismatch")
	}
}

func TestEvaluateEmptyDeckScoresFloor(t *testing.T) {
	score := Evaluate(EvaluationInput{Target: 0.85})
	if score.Clarity != 0 || score.Actionability != 0 {
		t.Fatalf("expected empty deck to score at the floor, got %+v", score)
	}
	if score.Passed {
		t.Fatal("expected empty deck to fail the target")
	}
}

func TestEvaluateBuildsHintsBelowFloor(t *testing.T) {
	score := Evaluate(EvaluationInput{Target: 0.85})
	if len(score.Hints) == 0 {
		t.Fatal("expected improvement hints for a failing score")
	}
	cat, ok := score.HighestPriorityHintCategory()
	if !ok {
		t.Fatal("expected a high-priority hint for a zero score")
	}
	_ = cat
}
