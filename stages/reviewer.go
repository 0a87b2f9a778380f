package stages

import (
	"context"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/quality"
)

// Reviewer wraps the quality package's weighted rubric as a pipeline
// stage (spec.md §4.6). It fails only when its context is already done:
// an unscoreable deck simply scores at the rubric's floor.
type Reviewer struct{}

// NewReviewer builds a Reviewer.
func NewReviewer() *Reviewer { return &Reviewer{} }

// Run scores the candidate deck against insights and the pyramid,
// returning Ok unless ctx is already done, in which case it returns
// Fatal with ctx.Err() (the Reviewer has no fallback path; a low score
// is a normal result, not a degradation).
func (r *Reviewer) Run(ctx context.Context, deck artifacts.StyledDeck, insights []artifacts.Insight, pyramid artifacts.Pyramid, framework artifacts.Framework, target float64, lang string) StageResult[artifacts.QualityScore] {
	select {
	case <-ctx.Done():
		return FatalResult[artifacts.QualityScore](ctx.Err())
	default:
	}

	score := quality.Evaluate(quality.EvaluationInput{
		Deck:      deck,
		Insights:  insights,
		Pyramid:   pyramid,
		Framework: framework,
		Target:    target,
		Language:  lang,
	})
	return OkResult(score)
}
