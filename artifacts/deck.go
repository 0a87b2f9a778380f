package artifacts

// Column is one column of a comparison/three-column slide.
type Column struct {
	Header string
	Points []string
}

// MatrixCell is one cell of a matrix-layout slide.
type MatrixCell struct {
	Row, Col int
	Label    string
	Content  string
}

// ColorFontProfile is the finalized typography/color decision for a deck
// (spec.md §3.1, §4.5). Geometry and font metrics themselves are left as
// Designer-internal parameters per spec.md's Non-goals.
type ColorFontProfile struct {
	Primary    string
	Secondary  string
	Accent     string
	FontFamily string
}

// StyledSlide is one Outline slide enriched with finalized content and
// positional hints (spec.md §3.1).
type StyledSlide struct {
	SlideSpec
	Bullets        []string
	Columns        []Column
	MatrixCells    []MatrixCell
	Chart          *Visualization
	PositionalHint string // layout-specific positioning tag
}

// StyledDeck is the Designer's output, the input to the external
// slide-file emitter (spec.md §3.1, §4.5, §6.4).
type StyledDeck struct {
	Slides  []StyledSlide
	Profile ColorFontProfile
}

// ExtractedText flattens a deck's slide text for the Reviewer, per
// spec.md §4.6 ("rendered deck (text content extracted from the
// StyledDeck)").
func (d StyledDeck) ExtractedText() []SlideText {
	out := make([]SlideText, 0, len(d.Slides))
	for _, s := range d.Slides {
		out = append(out, SlideText{
			Number:   s.Number,
			Title:    s.Title,
			Headline: s.Headline,
			Bullets:  s.Bullets,
		})
	}
	return out
}

// SlideText is the text projection of a StyledSlide consumed by the
// Quality Evaluator.
type SlideText struct {
	Number   int
	Title    string
	Headline string
	Bullets  []string
}
