package stages

import (
	"context"
	"fmt"

	"github.com/deckforge/deckforge/artifacts"
)

// Designer is the external-collaborator boundary of spec.md §4.5: the
// core treats it as a pure transform from outline + chart specs +
// insights to a StyledDeck, with layout/font/overflow policy entirely
// out of scope.
type Designer interface {
	Apply(ctx context.Context, outline artifacts.Outline, visualizations []artifacts.Visualization, insights []artifacts.Insight) (artifacts.StyledDeck, error)
}

// defaultPalette is a fixed McKinsey-style color/font profile, good
// enough to drive the pipeline end-to-end without a real design engine.
var defaultPalette = artifacts.ColorFontProfile{
	Primary:    "#0076A8",
	Secondary:  "#53565A",
	Accent:     "#F2A900",
	FontFamily: "Arial",
}

// DefaultDesigner is a deterministic reference implementation of
// Designer: it assigns a fixed layout/position per slide's LayoutType
// and attaches charts to data-visualization slides in outline order. It
// exists to drive tests and the example wiring end to end, not as a
// production rendering engine (spec.md §4.5).
type DefaultDesigner struct{}

// NewDefaultDesigner builds a DefaultDesigner.
func NewDefaultDesigner() *DefaultDesigner { return &DefaultDesigner{} }

func (d *DefaultDesigner) Apply(ctx context.Context, outline artifacts.Outline, visualizations []artifacts.Visualization, insights []artifacts.Insight) (artifacts.StyledDeck, error) {
	select {
	case <-ctx.Done():
		return artifacts.StyledDeck{}, ctx.Err()
	default:
	}

	slides := make([]artifacts.StyledSlide, 0, len(outline))
	chartIdx := 0
	for _, slide := range outline {
		styled := artifacts.StyledSlide{
			SlideSpec:      slide,
			Bullets:        slide.KeyPoints,
			PositionalHint: positionalHint(slide.LayoutType),
		}

		if slide.ContentType == artifacts.ContentDataVisual && chartIdx < len(visualizations) {
			v := visualizations[chartIdx]
			styled.Chart = &v
			chartIdx++
		}
		if slide.ContentType == artifacts.ContentMatrix {
			styled.MatrixCells = matrixCellsFor(slide)
		}
		if slide.ContentType == artifacts.ContentComparison {
			styled.Columns = columnsFor(slide)
		}

		slides = append(slides, styled)
	}

	return artifacts.StyledDeck{Slides: slides, Profile: defaultPalette}, nil
}

func positionalHint(layout artifacts.LayoutType) string {
	switch layout {
	case artifacts.LayoutTitleSlide:
		return "centered"
	case artifacts.LayoutThreeColumn:
		return "three_column_grid"
	case artifacts.LayoutMatrix:
		return "2x2_grid"
	case artifacts.LayoutSplitTextChart:
		return "split_left_text_right_chart"
	default:
		return "standard_body"
	}
}

func matrixCellsFor(slide artifacts.SlideSpec) []artifacts.MatrixCell {
	cells := make([]artifacts.MatrixCell, 0, len(slide.KeyPoints))
	for i, point := range slide.KeyPoints {
		cells = append(cells, artifacts.MatrixCell{
			Row:     i / 2,
			Col:     i % 2,
			Label:   fmt.Sprintf("Cell %d", i+1),
			Content: point,
		})
	}
	return cells
}

func columnsFor(slide artifacts.SlideSpec) []artifacts.Column {
	if len(slide.KeyPoints) == 0 {
		return nil
	}
	return []artifacts.Column{{Header: slide.Title, Points: slide.KeyPoints}}
}

// DeckEmitter is the slide-file emitter boundary of spec.md §6.4.
type DeckEmitter interface {
	Emit(ctx context.Context, jobID string, deck artifacts.StyledDeck) (string, error)
}

// InMemoryEmitter is a reference DeckEmitter that keeps decks in
// process memory, keyed by job id, for tests and the example wiring.
type InMemoryEmitter struct {
	decks map[string]artifacts.StyledDeck
}

// NewInMemoryEmitter builds an InMemoryEmitter.
func NewInMemoryEmitter() *InMemoryEmitter {
	return &InMemoryEmitter{decks: make(map[string]artifacts.StyledDeck)}
}

// Emit stores the deck and returns a synthetic path identifying it.
func (e *InMemoryEmitter) Emit(ctx context.Context, jobID string, deck artifacts.StyledDeck) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	e.decks[jobID] = deck
	return fmt.Sprintf("memory://decks/%s.pptx", jobID), nil
}

// Get returns a previously emitted deck, for test assertions.
func (e *InMemoryEmitter) Get(jobID string) (artifacts.StyledDeck, bool) {
	deck, ok := e.decks[jobID]
	return deck, ok
}
