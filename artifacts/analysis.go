package artifacts

// Analysis is produced by the Strategist's Analyze substep (spec.md §3.1).
type Analysis struct {
	KeyMessage string
	DataPoints []string
	Audience   string
	Purpose    string
	Industry   string
	Context    string
}

// FrameworkName is the closed catalog of MECE decomposition schemes
// (spec.md §3.1).
type FrameworkName string

const (
	Framework3C     FrameworkName = "3C"
	FrameworkSWOT   FrameworkName = "SWOT"
	FrameworkBCG    FrameworkName = "BCG"
	FrameworkCustom FrameworkName = "CUSTOM"
)

// IsValid reports whether n is one of the closed catalog values.
func (n FrameworkName) IsValid() bool {
	switch n {
	case Framework3C, FrameworkSWOT, FrameworkBCG, FrameworkCustom:
		return true
	}
	return false
}

// Framework is a MECE decomposition scheme chosen from the static
// catalog below (spec.md §4.2 step 2).
type Framework struct {
	Name        FrameworkName
	Description string
	Categories  []string
}

// CategorySet returns the framework's categories as a set, used by the
// MECE-equality invariant (spec.md §8 property 1).
func (f Framework) CategorySet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		set[c] = struct{}{}
	}
	return set
}

// FrameworkCatalog is the static table of framework definitions
// (spec.md §4.2 step 2: "no LLM call").
var FrameworkCatalog = map[FrameworkName]Framework{
	Framework3C: {
		Name:        Framework3C,
		Description: "Customer / Competitor / Company analysis for market entry and go-to-market strategy",
		Categories:  []string{"Customer", "Competitor", "Company"},
	},
	FrameworkSWOT: {
		Name:        FrameworkSWOT,
		Description: "Strengths / Weaknesses / Opportunities / Threats",
		Categories:  []string{"Strengths", "Weaknesses", "Opportunities", "Threats"},
	},
	FrameworkBCG: {
		Name:        FrameworkBCG,
		Description: "Growth-share matrix: Stars / Question Marks / Cash Cows / Dogs",
		Categories:  []string{"Stars", "Question Marks", "Cash Cows", "Dogs"},
	},
	FrameworkCustom: {
		Name:        FrameworkCustom,
		Description: "Generic three-pillar decomposition for content that fits no standard catalog entry",
		Categories:  []string{"Context", "Drivers", "Implications"},
	},
}
