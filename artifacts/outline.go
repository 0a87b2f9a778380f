package artifacts

// SlideType is the closed set of structural slide roles (spec.md §3.1).
type SlideType string

const (
	SlideTypeTitle           SlideType = "title"
	SlideTypeExecutiveSummary SlideType = "executive_summary"
	SlideTypeContent         SlideType = "content"
	SlideTypeRecommendations SlideType = "recommendations"
	SlideTypeNextSteps       SlideType = "next_steps"
)

// ContentType is the closed set of slide content shapes (spec.md §3.1).
type ContentType string

const (
	ContentText          ContentType = "text"
	ContentBullets       ContentType = "bullets"
	ContentComparison    ContentType = "comparison"
	ContentMatrix        ContentType = "matrix"
	ContentChart         ContentType = "chart"
	ContentDataVisual    ContentType = "data_visualization"
	ContentSummary       ContentType = "summary"
)

// LayoutType is the closed set of layout tags the Designer consumes
// (spec.md §3.1, §4.5).
type LayoutType string

const (
	LayoutTitleSlide         LayoutType = "title_slide"
	LayoutTitleAndContent    LayoutType = "title_and_content"
	LayoutThreeColumn        LayoutType = "three_column"
	LayoutMatrix             LayoutType = "matrix"
	LayoutSplitTextChart     LayoutType = "split_text_chart"
)

// SlideSpec is one positioned slide in an Outline (spec.md §3.1).
type SlideSpec struct {
	Number      int
	Type        SlideType
	Title       string
	Headline    string
	ContentType ContentType
	LayoutType  LayoutType
	KeyPoints   []string
	MECESegment string // optional reference to a framework category

	// SoWhat is a derived flag set by the Strategist (SPEC_FULL.md §3.1
	// expansion): true when Title carries an action verb, a number, an
	// implication keyword, and is >= 20 characters. The Clarity sub-score
	// does not read it; it scores the title with its own so-what test.
	SoWhat bool
}

// Outline is the ordered list of SlideSpecs produced by the Strategist's
// BuildOutline substep, length == requested slide count.
type Outline []SlideSpec

// IsStructurallyValid checks testable property #2 (spec.md §8): length
// matches numSlides, slide 1 is type title, the final slide is
// recommendations or next_steps.
func (o Outline) IsStructurallyValid(numSlides int) bool {
	if len(o) != numSlides {
		return false
	}
	if len(o) == 0 {
		return false
	}
	if o[0].Type != SlideTypeTitle {
		return false
	}
	last := o[len(o)-1].Type
	return last == SlideTypeRecommendations || last == SlideTypeNextSteps
}
