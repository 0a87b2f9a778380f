package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/llm"
)

// StorytellerOutput bundles the Storyteller's artifacts (spec.md §4.4).
type StorytellerOutput struct {
	Narrative artifacts.Narrative
}

const scrAttemptTimeout = 15 * time.Second
const scrMaxAttempts = 3

// Storyteller applies the SCR structure, generates slide transitions,
// and writes speaker notes. Grounded on
// original_source/.../agents/storyteller_agent.py's process() pipeline.
type Storyteller struct {
	Client *llm.Client
	Logger core.Logger
}

// NewStoryteller builds a Storyteller. A nil Logger is replaced with a
// no-op.
func NewStoryteller(client *llm.Client, logger core.Logger) *Storyteller {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Storyteller{Client: client, Logger: logger}
}

// Run executes SCR assignment, batched transitions, and batched speaker
// notes (spec.md §4.4). Transitions and speaker notes surface a fatal
// error on irrecoverable failure per the "no silent fabrication"
// contract; SCR falls back to a deterministic partition and is never
// fatal.
func (s *Storyteller) Run(ctx context.Context, outline artifacts.Outline, pyramid artifacts.Pyramid) StageResult[StorytellerOutput] {
	if len(outline) == 0 {
		return FatalResult[StorytellerOutput](core.NewDeckError("storyteller.Run", "fatal", core.ErrMissingConfiguration))
	}

	scr, scrDegraded := s.applySCR(ctx, outline, pyramid)

	transitions, err := s.generateTransitions(ctx, outline)
	if err != nil {
		return FatalResult[StorytellerOutput](core.NewDeckError("storyteller.generateTransitions", "fatal", err))
	}

	notes, err := s.createSpeakerNotes(ctx, outline)
	if err != nil {
		return FatalResult[StorytellerOutput](core.NewDeckError("storyteller.createSpeakerNotes", "fatal", err))
	}

	out := StorytellerOutput{Narrative: artifacts.Narrative{SCR: scr, Transitions: transitions, SpeakerNotes: notes}}
	if scrDegraded {
		return DegradedResult(out, "storyteller: SCR assignment exhausted its LLM budget, deterministic fallback partition applied")
	}
	return OkResult(out)
}

type scrReply struct {
	SituationSlides    []int  `json:"situation_slides"`
	ComplicationSlides []int  `json:"complication_slides"`
	ResolutionSlides   []int  `json:"resolution_slides"`
	StoryArc           string `json:"story_arc"`
}

// applySCR attempts the LLM-driven partition up to scrMaxAttempts times,
// each bounded by scrAttemptTimeout, falling back to the deterministic
// partition table of spec.md §4.4.1 on exhaustion.
func (s *Storyteller) applySCR(ctx context.Context, outline artifacts.Outline, pyramid artifacts.Pyramid) (artifacts.SCRStructure, bool) {
	numSlides := len(outline)

	for attempt := 0; attempt < scrMaxAttempts; attempt++ {
		scr, err := s.attemptSCR(ctx, outline, pyramid)
		if err == nil && scr.CoversInterior(numSlides) {
			return scr, false
		}
		s.Logger.Warn("storyteller: SCR attempt failed", map[string]interface{}{"attempt": attempt + 1})
	}

	return fallbackSCR(numSlides), true
}

func (s *Storyteller) attemptSCR(ctx context.Context, outline artifacts.Outline, pyramid artifacts.Pyramid) (artifacts.SCRStructure, error) {
	callCtx, cancel := context.WithTimeout(ctx, scrAttemptTimeout)
	defer cancel()

	prompt := buildSCRPrompt(outline, pyramid)
	resp, err := s.Client.Generate(callCtx, prompt, llm.Options{})
	if err != nil {
		return artifacts.SCRStructure{}, err
	}

	raw, err := llm.ExtractJSON(resp.Content, llm.ShapeObject)
	if err != nil {
		return artifacts.SCRStructure{}, err
	}

	var reply scrReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return artifacts.SCRStructure{}, err
	}

	return artifacts.SCRStructure{
		SituationSlides:    reply.SituationSlides,
		ComplicationSlides: reply.ComplicationSlides,
		ResolutionSlides:   reply.ResolutionSlides,
	}, nil
}

func buildSCRPrompt(outline artifacts.Outline, pyramid artifacts.Pyramid) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify these %d slides into a Situation-Complication-Resolution structure.\n\n", len(outline))
	b.WriteString("Top message: " + pyramid.TopMessage + "\n\nSlides:\n")
	for _, s := range outline {
		fmt.Fprintf(&b, "%d. %s (%s)\n", s.Number, s.Title, s.Type)
	}
	b.WriteString("\nRespond as JSON: {\"situation_slides\":[..],\"complication_slides\":[..],\"resolution_slides\":[..],\"story_arc\":..}")
	b.WriteString("\nSlide 1 and the final slide are reserved for title/next-steps; do not include them.")
	return b.String()
}

// fallbackSCR is the deterministic partition table of spec.md §4.4.1.
func fallbackSCR(numSlides int) artifacts.SCRStructure {
	var situationEnd, complicationEnd int
	switch {
	case numSlides <= 10:
		situationEnd, complicationEnd = 2, 4
	case numSlides <= 15:
		situationEnd, complicationEnd = 3, 5
	default:
		situationEnd, complicationEnd = 4, 7
	}

	clampTo := func(n int) int {
		if n > numSlides-1 {
			return numSlides - 1
		}
		if n < 1 {
			return 1
		}
		return n
	}
	situationEnd = clampTo(situationEnd)
	complicationEnd = clampTo(complicationEnd)
	if complicationEnd < situationEnd {
		complicationEnd = situationEnd
	}

	var situation, complication, resolution []int
	for n := 2; n <= situationEnd; n++ {
		situation = append(situation, n)
	}
	for n := situationEnd + 1; n <= complicationEnd; n++ {
		complication = append(complication, n)
	}
	for n := complicationEnd + 1; n <= numSlides-1; n++ {
		resolution = append(resolution, n)
	}

	return artifacts.SCRStructure{
		SituationSlides:    situation,
		ComplicationSlides: complication,
		ResolutionSlides:   resolution,
	}
}

// generateTransitions is the §4.4.2 batched transition generator: one
// LLM call for the full array, per-pair fallback for a short tail, and a
// hard failure if neither recovers.
func (s *Storyteller) generateTransitions(ctx context.Context, outline artifacts.Outline) ([]string, error) {
	if len(outline) < 2 {
		return nil, nil
	}
	want := len(outline) - 1

	var transitions []string
	resp, err := s.Client.Generate(ctx, buildTransitionsPrompt(outline), llm.Options{})
	if err == nil {
		raw, err := llm.ExtractJSON(resp.Content, llm.ShapeArray)
		if err == nil {
			_ = json.Unmarshal(raw, &transitions)
		}
	}

	if len(transitions) > want {
		transitions = transitions[:want]
	}

	for i := len(transitions); i < want; i++ {
		single, err := s.Client.Generate(ctx, buildSingleTransitionPrompt(outline[i], outline[i+1]), llm.Options{})
		if err != nil {
			return nil, core.ErrTransitionsUnrecoverable
		}
		transitions = append(transitions, strings.TrimSpace(single.Content))
	}

	return transitions, nil
}

func buildTransitionsPrompt(outline artifacts.Outline) string {
	var b strings.Builder
	b.WriteString("Generate a natural one-sentence transition for each consecutive slide pair.\n\n")
	for i := 1; i < len(outline); i++ {
		fmt.Fprintf(&b, "%d -> %d: \"%s\" to \"%s\"\n", outline[i-1].Number, outline[i].Number, outline[i-1].Title, outline[i].Title)
	}
	b.WriteString("\nRespond as a JSON array of strings, one per pair, in order.")
	return b.String()
}

func buildSingleTransitionPrompt(prev, curr artifacts.SlideSpec) string {
	return fmt.Sprintf("Generate a single natural transition sentence from %q to %q. Return only the sentence.", prev.Title, curr.Title)
}

type speakerNoteReply struct {
	SlideNumber         int      `json:"slide_number"`
	SpeakingPoints      []string `json:"speaking_points"`
	Emphasis            string   `json:"emphasis"`
	PotentialQuestions  []string `json:"potential_questions"`
}

// createSpeakerNotes is the §4.4.3 batched speaker-note generator: one
// LLM call, normalization before parsing, per-slide fallback, final
// hard failure on exhaustion.
func (s *Storyteller) createSpeakerNotes(ctx context.Context, outline artifacts.Outline) ([]string, error) {
	resp, err := s.Client.Generate(ctx, buildSpeakerNotesPrompt(outline), llm.Options{})
	notes := make([]string, len(outline))
	var replies []speakerNoteReply

	if err == nil {
		normalized := normalizeForJSON(resp.Content)
		if raw, extractErr := llm.ExtractJSON(normalized, llm.ShapeArray); extractErr == nil {
			_ = json.Unmarshal(raw, &replies)
		}
	}

	byNumber := make(map[int]speakerNoteReply, len(replies))
	for _, r := range replies {
		byNumber[r.SlideNumber] = r
	}

	for i, slide := range outline {
		if r, ok := byNumber[slide.Number]; ok {
			notes[i] = formatSpeakerNote(slide, r)
			continue
		}
		single, err := s.Client.Generate(ctx, buildSingleSpeakerNotePrompt(slide), llm.Options{})
		if err != nil {
			return nil, fmt.Errorf("speaker note generation failed for slide %d: %w", slide.Number, err)
		}
		notes[i] = fmt.Sprintf("[Slide %d] %s\n\n%s", slide.Number, slide.Title, strings.TrimSpace(single.Content))
	}
	return notes, nil
}

// normalizeForJSON strips control characters and collapses newlines
// before parsing, matching the original's escape-repair pass.
func normalizeForJSON(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	var b strings.Builder
	for _, r := range s {
		if r >= 32 || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatSpeakerNote(slide artifacts.SlideSpec, r speakerNoteReply) string {
	var points, questions strings.Builder
	for _, p := range r.SpeakingPoints {
		fmt.Fprintf(&points, "- %s\n", p)
	}
	for _, q := range r.PotentialQuestions {
		fmt.Fprintf(&questions, "- %s\n", q)
	}
	return fmt.Sprintf("[Slide %d] %s\n\nKey message:\n%s\n\nSpeaking points:\n%sEmphasis:\n%s\n\nPotential questions:\n%s",
		slide.Number, slide.Title, slide.Headline, points.String(), r.Emphasis, questions.String())
}

func buildSpeakerNotesPrompt(outline artifacts.Outline) string {
	var b strings.Builder
	b.WriteString("Generate speaker notes for these slides.\n\n")
	for _, s := range outline {
		fmt.Fprintf(&b, "Slide %d: %s — %s\n", s.Number, s.Title, s.Headline)
	}
	b.WriteString("\nRespond as a JSON array: [{\"slide_number\":..,\"speaking_points\":[..],\"emphasis\":..,\"potential_questions\":[..]}]")
	return b.String()
}

func buildSingleSpeakerNotePrompt(slide artifacts.SlideSpec) string {
	return fmt.Sprintf("Generate speaker notes for slide %d: %q, headline: %q. Include key message, talking points, and transition.", slide.Number, slide.Title, slide.Headline)
}
