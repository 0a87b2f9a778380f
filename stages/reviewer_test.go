package stages

import (
	"context"
	"testing"

	"github.com/deckforge/deckforge/artifacts"
)

func TestReviewerRunScoresDeck(t *testing.T) {
	deck := artifacts.StyledDeck{
		Slides: []artifacts.StyledSlide{
			{SlideSpec: artifacts.SlideSpec{Number: 1, Title: "투자 확대로 매출 20% 증가 가능", Headline: "h"}, Bullets: []string{"매출 증가 전략 필요"}},
		},
	}
	framework := artifacts.FrameworkCatalog[artifacts.FrameworkCustom]
	pyramid := artifacts.Pyramid{
		TopMessage: "msg",
		SupportingArguments: []artifacts.SupportingArgument{
			{Category: "Context", Argument: "a"},
			{Category: "Drivers", Argument: "b"},
			{Category: "Implications", Argument: "c"},
		},
	}

	reviewer := NewReviewer()
	result := reviewer.Run(context.Background(), deck, nil, pyramid, framework, 0.85, "ko")
	if result.Outcome != Ok {
		t.Fatalf("expected Ok outcome, got %v", result.Outcome)
	}
	if result.Value.Total < 0 || result.Value.Total > 1 {
		t.Fatalf("expected total in [0,1], got %v", result.Value.Total)
	}
}

func TestReviewerRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reviewer := NewReviewer()
	result := reviewer.Run(ctx, artifacts.StyledDeck{}, nil, artifacts.Pyramid{}, artifacts.Framework{}, 0.85, "ko")
	if result.Outcome != Fatal {
		t.Fatalf("expected Fatal outcome on cancelled context, got %v", result.Outcome)
	}
}
