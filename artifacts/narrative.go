package artifacts

// SCRStructure partitions interior slide numbers into situation,
// complication, and resolution sets (spec.md §3.1, §4.4.1). Per
// SPEC_FULL.md §9's Open-Question resolution, slide 1 and the final
// slide are excluded from the interior partition (reserved for
// title/next-steps) and are not members of any of the three sets.
type SCRStructure struct {
	SituationSlides    []int
	ComplicationSlides []int
	ResolutionSlides   []int
}

// CoversInterior checks testable property #3 (spec.md §8): the three
// sets are pairwise disjoint and their union is exactly {2, ..., N-1}.
func (s SCRStructure) CoversInterior(numSlides int) bool {
	seen := make(map[int]int, numSlides)
	for _, n := range s.SituationSlides {
		seen[n]++
	}
	for _, n := range s.ComplicationSlides {
		seen[n]++
	}
	for _, n := range s.ResolutionSlides {
		seen[n]++
	}

	for slide, count := range seen {
		if count != 1 {
			return false
		}
		if slide <= 1 || slide >= numSlides {
			return false
		}
	}

	want := numSlides - 2
	if want < 0 {
		want = 0
	}
	return len(seen) == want
}

// Narrative is produced by the Storyteller (spec.md §3.1, §4.4).
type Narrative struct {
	SCR           SCRStructure
	Transitions   []string // length == slide_count - 1
	SpeakerNotes  []string // length == slide_count
}
