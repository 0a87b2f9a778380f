package artifacts

// SupportingArgument is one framework-category argument in a Pyramid
// (spec.md §3.1).
type SupportingArgument struct {
	Category string
	Argument string
	Evidence []string // 2-4 supporting claims
}

// Pyramid is the single-root conclusion-first argument hierarchy
// produced by the Strategist's BuildPyramid substep.
type Pyramid struct {
	TopMessage          string
	SupportingArguments []SupportingArgument
}

// CategorySet returns the pyramid's argument categories as a set, used
// by the MECE-equality invariant (spec.md §8 property 1).
func (p Pyramid) CategorySet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.SupportingArguments))
	for _, a := range p.SupportingArguments {
		set[a.Category] = struct{}{}
	}
	return set
}

// MatchesFramework reports whether the pyramid's argument categories are
// exactly the framework's categories (spec.md §3.1 invariant, §8
// property 1).
func (p Pyramid) MatchesFramework(f Framework) bool {
	want := f.CategorySet()
	got := p.CategorySet()
	if len(want) != len(got) {
		return false
	}
	for c := range want {
		if _, ok := got[c]; !ok {
			return false
		}
	}
	return true
}
