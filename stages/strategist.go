package stages

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/llm"
)

// StrategistOutput bundles the four artifacts the Strategist produces
// (spec.md §4.2).
type StrategistOutput struct {
	Analysis  artifacts.Analysis
	Framework artifacts.Framework
	Pyramid   artifacts.Pyramid
	Outline   artifacts.Outline
}

// Strategist runs Analyze -> SelectFramework -> BuildPyramid ->
// BuildOutline, sequentially, grounded on
// original_source/.../agents/strategist_agent.py's process() pipeline.
type Strategist struct {
	Client *llm.Client
	Logger core.Logger
}

// NewStrategist builds a Strategist. A nil Logger is replaced with a
// no-op.
func NewStrategist(client *llm.Client, logger core.Logger) *Strategist {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Strategist{Client: client, Logger: logger}
}

// Run executes the four substeps. Parse failures in Analyze and
// BuildPyramid are fatal (spec.md §4.2 steps 1 and 3): downstream stages
// cannot proceed without a coherent analysis and a MECE-valid pyramid.
func (s *Strategist) Run(ctx context.Context, doc artifacts.DocumentInput) StageResult[StrategistOutput] {
	doc = doc.Normalized()

	analysis, err := s.analyze(ctx, doc)
	if err != nil {
		s.Logger.Error("strategist: analyze failed", map[string]interface{}{"error": err.Error()})
		return FatalResult[StrategistOutput](core.NewDeckError("strategist.Analyze", "fatal", err))
	}

	framework := s.selectFramework(analysis)

	pyramid, err := s.buildPyramid(ctx, analysis, framework)
	if err != nil {
		s.Logger.Error("strategist: pyramid build failed", map[string]interface{}{"error": err.Error()})
		return FatalResult[StrategistOutput](core.NewDeckError("strategist.BuildPyramid", "fatal", err))
	}

	outline, err := s.buildOutline(ctx, pyramid, framework, doc.NumSlides)
	if err != nil {
		s.Logger.Error("strategist: outline build failed", map[string]interface{}{"error": err.Error()})
		return FatalResult[StrategistOutput](core.NewDeckError("strategist.BuildOutline", "fatal", err))
	}

	return OkResult(StrategistOutput{
		Analysis:  analysis,
		Framework: framework,
		Pyramid:   pyramid,
		Outline:   outline,
	})
}

type analysisReply struct {
	KeyMessage     string   `json:"key_message"`
	DataPoints     []string `json:"data_points"`
	TargetAudience string   `json:"target_audience"`
	Purpose        string   `json:"purpose"`
	Context        string   `json:"context"`
	Industry       string   `json:"industry"`
}

func (s *Strategist) analyze(ctx context.Context, doc artifacts.DocumentInput) (artifacts.Analysis, error) {
	prompt := buildAnalysisPrompt(doc)
	resp, err := s.Client.Generate(ctx, prompt, llm.Options{})
	if err != nil {
		return artifacts.Analysis{}, err
	}

	raw, err := llm.ExtractJSON(resp.Content, llm.ShapeObject)
	if err != nil {
		return artifacts.Analysis{}, err
	}

	var reply analysisReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return artifacts.Analysis{}, core.NewDeckError("strategist.analyze", "fatal", core.ErrAnalysisParseFailed)
	}
	if strings.TrimSpace(reply.KeyMessage) == "" {
		return artifacts.Analysis{}, core.NewDeckError("strategist.analyze", "fatal", core.ErrAnalysisParseFailed)
	}

	return artifacts.Analysis{
		KeyMessage: reply.KeyMessage,
		DataPoints: reply.DataPoints,
		Audience:   reply.TargetAudience,
		Purpose:    reply.Purpose,
		Industry:   reply.Industry,
		Context:    reply.Context,
	}, nil
}

func buildAnalysisPrompt(doc artifacts.DocumentInput) string {
	var b strings.Builder
	b.WriteString("Analyze the following business document and extract its core elements as JSON.\n\n")
	b.WriteString("Document:\n")
	b.WriteString(doc.Document)
	b.WriteString("\n\nRespond with JSON matching: {\"key_message\":..,\"data_points\":[..],\"target_audience\":..,\"purpose\":..,\"context\":..,\"industry\":..}")
	return b.String()
}

// selectFramework is the deterministic rule engine of spec.md §4.2 step
// 2 -- no LLM call.
func (s *Strategist) selectFramework(analysis artifacts.Analysis) artifacts.Framework {
	context := strings.ToLower(analysis.Context)
	purpose := strings.ToLower(analysis.Purpose)
	combined := context + " " + purpose

	name := artifacts.FrameworkCustom
	switch {
	case containsAny(combined, "market entry", "go-to-market", "launch", "entry"):
		name = artifacts.Framework3C
	case containsAny(combined, "swot"):
		name = artifacts.FrameworkSWOT
	case containsAny(combined, "matrix", "bcg"):
		name = artifacts.FrameworkBCG
	}
	return artifacts.FrameworkCatalog[name]
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

type pyramidArgumentReply struct {
	Argument string   `json:"argument"`
	Category string   `json:"category"`
	Evidence []string `json:"evidence"`
}

type pyramidReply struct {
	TopMessage          string                 `json:"top_message"`
	SupportingArguments []pyramidArgumentReply `json:"supporting_arguments"`
}

func (s *Strategist) buildPyramid(ctx context.Context, analysis artifacts.Analysis, framework artifacts.Framework) (artifacts.Pyramid, error) {
	prompt := buildPyramidPrompt(analysis, framework)
	resp, err := s.Client.Generate(ctx, prompt, llm.Options{})
	if err != nil {
		return artifacts.Pyramid{}, err
	}

	raw, err := llm.ExtractJSON(resp.Content, llm.ShapeObject)
	if err != nil {
		return artifacts.Pyramid{}, err
	}

	var reply pyramidReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return artifacts.Pyramid{}, core.NewDeckError("strategist.buildPyramid", "fatal", core.ErrMECEViolation)
	}

	args := make([]artifacts.SupportingArgument, 0, len(reply.SupportingArguments))
	for _, a := range reply.SupportingArguments {
		args = append(args, artifacts.SupportingArgument{
			Category: a.Category,
			Argument: a.Argument,
			Evidence: a.Evidence,
		})
	}
	pyramid := artifacts.Pyramid{TopMessage: reply.TopMessage, SupportingArguments: args}

	if !pyramid.MatchesFramework(framework) {
		return artifacts.Pyramid{}, core.ErrMECEViolation
	}
	return pyramid, nil
}

func buildPyramidPrompt(analysis artifacts.Analysis, framework artifacts.Framework) string {
	var b strings.Builder
	b.WriteString("Build a pyramid-principle argument structure from this analysis.\n\n")
	b.WriteString("Key message: " + analysis.KeyMessage + "\n")
	b.WriteString("Framework: " + string(framework.Name) + " - " + framework.Description + "\n")
	b.WriteString("Categories: " + strings.Join(framework.Categories, ", ") + "\n\n")
	b.WriteString("Emit exactly one supporting argument per category as JSON: ")
	b.WriteString(`{"top_message":..,"supporting_arguments":[{"argument":..,"category":..,"evidence":[..]}]}`)
	return b.String()
}

type outlineSlideReply struct {
	SlideNumber       int      `json:"slide_number"`
	SlideType         string   `json:"slide_type"`
	Title             string   `json:"title"`
	Headline          string   `json:"headline"`
	ContentType       string   `json:"content_type"`
	KeyPoints         []string `json:"key_points"`
	LayoutSuggestion  string   `json:"layout_suggestion"`
	LayoutType        string   `json:"layout_type"`
	Category          string   `json:"category"`
}

func (s *Strategist) buildOutline(ctx context.Context, pyramid artifacts.Pyramid, framework artifacts.Framework, numSlides int) (artifacts.Outline, error) {
	prompt := buildOutlinePrompt(pyramid, framework, numSlides)
	resp, err := s.Client.Generate(ctx, prompt, llm.Options{})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(resp.Content, llm.ShapeArray)
	if err != nil {
		return nil, core.NewDeckError("strategist.buildOutline", "fatal", core.ErrOutlineLengthMismatch)
	}

	var reply []outlineSlideReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, core.NewDeckError("strategist.buildOutline", "fatal", core.ErrOutlineLengthMismatch)
	}

	outline := make(artifacts.Outline, 0, len(reply))
	for i, r := range reply {
		slide := artifacts.SlideSpec{
			Number:      i + 1,
			Type:        resolveSlideType(r.SlideType, i == 0, i == len(reply)-1),
			Title:       r.Title,
			Headline:    r.Headline,
			ContentType: artifacts.ContentType(r.ContentType),
			KeyPoints:   r.KeyPoints,
			MECESegment: r.Category,
		}
		layout := r.LayoutType
		if layout == "" {
			layout = r.LayoutSuggestion
		}
		slide.LayoutType = artifacts.LayoutType(layout)
		fillContentAndLayout(&slide)
		slide.SoWhat = computeSoWhat(slide.Title)
		outline = append(outline, slide)
	}

	if len(outline) != numSlides {
		return nil, core.ErrOutlineLengthMismatch
	}
	if !outline.IsStructurallyValid(numSlides) {
		return nil, core.ErrOutlineLengthMismatch
	}
	return outline, nil
}

func buildOutlinePrompt(pyramid artifacts.Pyramid, framework artifacts.Framework, numSlides int) string {
	var b strings.Builder
	b.WriteString("Produce a slide-by-slide outline as a JSON array of " + strconv.Itoa(numSlides) + " slides.\n\n")
	b.WriteString("Top message: " + pyramid.TopMessage + "\n")
	b.WriteString("Framework: " + string(framework.Name) + "\n\n")
	b.WriteString("Each element: {\"slide_number\":..,\"slide_type\":..,\"title\":..,\"headline\":..,\"content_type\":..,\"key_points\":[..],\"layout_type\":..,\"category\":..}")
	return b.String()
}

func resolveSlideType(raw string, isFirst, isLast bool) artifacts.SlideType {
	switch strings.ToLower(raw) {
	case "title":
		return artifacts.SlideTypeTitle
	case "executive_summary", "executive summary":
		return artifacts.SlideTypeExecutiveSummary
	case "recommendations", "recommendation":
		return artifacts.SlideTypeRecommendations
	case "next_steps", "next steps":
		return artifacts.SlideTypeNextSteps
	case "content":
		return artifacts.SlideTypeContent
	}
	if isFirst {
		return artifacts.SlideTypeTitle
	}
	if isLast {
		return artifacts.SlideTypeRecommendations
	}
	return artifacts.SlideTypeContent
}

// fillContentAndLayout fills missing content_type/layout_type using the
// deterministic heuristic of spec.md §4.2 step 4, including the Korean
// tokens verbatim.
func fillContentAndLayout(slide *artifacts.SlideSpec) {
	title := strings.ToLower(slide.Title)

	if slide.ContentType == "" {
		switch {
		case containsAny(title, "comparison", "비교", "pros/cons"):
			slide.ContentType = artifacts.ContentComparison
		case containsAny(title, "matrix", "2x2", "3x3"):
			slide.ContentType = artifacts.ContentMatrix
		case containsAny(title, "roi", "chart", "data", "분석"):
			slide.ContentType = artifacts.ContentDataVisual
		case slide.Number == 1 || containsAny(title, "summary", "executive"):
			slide.ContentType = artifacts.ContentSummary
		default:
			slide.ContentType = artifacts.ContentText
		}
	}

	if slide.LayoutType == "" {
		switch slide.ContentType {
		case artifacts.ContentComparison:
			slide.LayoutType = artifacts.LayoutThreeColumn
		case artifacts.ContentMatrix:
			slide.LayoutType = artifacts.LayoutMatrix
		case artifacts.ContentDataVisual:
			slide.LayoutType = artifacts.LayoutSplitTextChart
		case artifacts.ContentSummary:
			slide.LayoutType = artifacts.LayoutTitleSlide
		default:
			slide.LayoutType = artifacts.LayoutTitleAndContent
		}
	}
}

// computeSoWhat applies the so-what test to a title (spec.md §4.6): an
// action verb, a number, an implication keyword, and >= 20 characters.
func computeSoWhat(title string) bool {
	if len([]rune(title)) < 20 {
		return false
	}
	hasNumber := false
	for _, r := range title {
		if r >= '0' && r <= '9' {
			hasNumber = true
			break
		}
	}
	if !hasNumber {
		return false
	}
	return containsAny(title, actionVerbTokens...) && containsAny(title, implicationTokens...)
}

var actionVerbTokens = []string{"제공", "정보", "달성", "실현", "가능", "필요", "개선", "증가", "감소"}
var implicationTokens = []string{"가능", "필요", "실현", "정보", "기회", "위협", "중요", "핵심"}
