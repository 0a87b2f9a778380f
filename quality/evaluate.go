// Package quality implements the Reviewer's five-criterion weighted
// rubric (spec.md §4.6), grounded on the original quality_controller.py
// and slide_validator.py's per-slide diagnostics, translated from
// scanning a rendered PowerPoint file into scoring the pipeline's own
// typed artifacts directly.
package quality

import (
	"regexp"
	"strings"

	"github.com/deckforge/deckforge/artifacts"
)

var numberPattern = regexp.MustCompile(`\d+`)

// keywordSet holds the Korean and English variants of a rubric's
// substring-matching keyword table, selected by EvaluationInput.Language
// (spec.md §8 S1: the rubric must be able to clear 0.85 on English
// content, not just Korean).
type keywordSet struct {
	ko []string
	en []string
}

func (k keywordSet) forLang(lang string) []string {
	if lang == "ko" {
		return k.ko
	}
	return k.en
}

var actionVerbsSet = keywordSet{
	ko: []string{"제공", "정보", "달성", "실현", "가능", "필요", "개선", "증가", "감소"},
	en: []string{"deliver", "achieve", "enable", "drive", "improve", "increase", "decrease", "reduce", "grow"},
}
var implicationKeywordsSet = keywordSet{
	ko: []string{"가능", "필요", "실현", "정보", "기회", "위협", "중요", "핵심"},
	en: []string{"opportunity", "risk", "threat", "critical", "key", "implication", "means", "matters"},
}
var businessTermsSet = keywordSet{
	ko: []string{"전략", "성장", "시장", "경쟁", "가치", "효율", "최적화", "혁신", "차별화", "실행", "ROI", "KPI"},
	en: []string{"strategy", "growth", "market", "competitive", "value", "efficiency", "optimize", "innovation", "differentiation", "execution", "ROI", "KPI"},
}
var comparisonKeywordsSet = keywordSet{
	ko: []string{"대비", "비교", "배", "차이", "증가", "감소", "높은", "낮은"},
	en: []string{"versus", "compared", "than", "difference", "increase", "decrease", "higher", "lower", "above", "below", "up", "down"},
}
var strategyKeywordsSet = keywordSet{
	ko: []string{"전략", "필요", "가능", "권고", "제안", "실행", "투자", "강화"},
	en: []string{"strategy", "need", "should", "recommend", "propose", "execute", "invest", "strengthen"},
}
var actionKeywordsSet = keywordSet{
	ko: []string{"권고", "제안", "실행", "추진", "필요", "해야", "시행", "투자", "강화", "개선"},
	en: []string{"recommend", "propose", "execute", "pursue", "should", "must", "implement", "invest", "strengthen", "improve"},
}
var priorityKeywordsSet = keywordSet{
	ko: []string{"우선", "핵심", "중요", "긴급", "최우선"},
	en: []string{"priority", "key", "critical", "urgent", "top"},
}
var introKeywordsSet = keywordSet{
	ko: []string{"개요", "소개", "배경", "목적", "요약"},
	en: []string{"overview", "introduction", "background", "purpose", "summary"},
}
var analysisKeywordsSet = keywordSet{
	ko: []string{"분석", "현황", "문제", "이슈", "기회", "위협"},
	en: []string{"analysis", "current", "problem", "issue", "opportunity", "threat"},
}
var conclusionKeywordsSet = keywordSet{
	ko: []string{"결론", "권고", "제안", "실행", "다음", "요약"},
	en: []string{"conclusion", "recommend", "propose", "execute", "next", "summary"},
}
var conclusionMarkersSet = keywordSet{
	ko: []string{"결론", "권고", "요약", "recommend", "summary"},
	en: []string{"conclusion", "recommend", "summary", "next steps"},
}

// EvaluationInput bundles everything the Reviewer needs to score a
// candidate deck (spec.md §4.6: "rendered deck, the Insight list, and
// the MECE Pyramid"). Language selects which keyword tables the rubric
// matches against (spec.md §8 S1); it defaults to Korean when empty.
type EvaluationInput struct {
	Deck      artifacts.StyledDeck
	Insights  []artifacts.Insight
	Pyramid   artifacts.Pyramid
	Framework artifacts.Framework
	Target    float64
	Language  string
}

// Evaluate scores the candidate deck against the weighted rubric
// (spec.md §4.6). It never errors: a deck that cannot be scored
// meaningfully (e.g. zero slides) scores at the rubric's floor rather
// than panicking, mirroring the original's catch-all fallback.
func Evaluate(in EvaluationInput) artifacts.QualityScore {
	lang := in.Language
	if lang == "" {
		lang = "ko"
	}
	slides := in.Deck.ExtractedText()

	clarity, clarityIssues := evaluateClarity(slides, lang)
	insightScore := evaluateInsight(in.Insights, lang)
	structure, structureIssues := evaluateStructure(in.Pyramid, in.Framework, slides, lang)
	visual, visualIssues := evaluateVisual(in.Deck)
	actionability := evaluateActionability(slides, lang)

	score := artifacts.QualityScore{
		Clarity:       clarity,
		Insight:       insightScore,
		Structure:     structure,
		Visual:        visual,
		Actionability: actionability,
	}
	score.Total = score.ComputeTotal()
	score.Passed = score.Total >= in.Target

	score.SlideIssues = append(score.SlideIssues, clarityIssues...)
	score.SlideIssues = append(score.SlideIssues, structureIssues...)
	score.SlideIssues = append(score.SlideIssues, visualIssues...)

	score.Hints = buildHints(score)
	return score
}

func evaluateClarity(slides []artifacts.SlideText, lang string) (float64, []artifacts.SlideIssue) {
	if len(slides) == 0 {
		return 0, nil
	}

	var total float64
	var issues []artifacts.SlideIssue

	for _, s := range slides {
		var slideScore float64

		soWhat := soWhatScore(s.Title, lang)
		slideScore += soWhat * 0.4

		headline := headlineQualityScore(s.Title, lang)
		slideScore += headline * 0.3

		consistency := messageConsistencyScore(s.Title, s.Bullets)
		slideScore += consistency * 0.2

		terminology := terminologyScore(s.Bullets, lang)
		slideScore += terminology * 0.1

		if soWhat < 0.5 {
			issues = append(issues, artifacts.SlideIssue{
				Slide: s.Number, Criterion: artifacts.CriterionClarity, Severity: "warning",
				Detail: "headline does not pass the so-what test",
			})
		}

		total += slideScore
	}

	return total / float64(len(slides)), issues
}

func soWhatScore(title string, lang string) float64 {
	score := 0.0
	if containsAny(title, actionVerbsSet.forLang(lang)) {
		score += 0.4
	}
	if numberPattern.MatchString(title) {
		score += 0.3
	}
	if len([]rune(title)) >= 20 {
		score += 0.3
	}
	return minf(1.0, score)
}

func headlineQualityScore(title string, lang string) float64 {
	if title == "" {
		return 0
	}
	score := 0.0
	if containsAny(title, actionVerbsSet.forLang(lang)) {
		score += 0.3
	}
	if numberPattern.MatchString(title) {
		score += 0.3
	}
	if len([]rune(title)) >= 20 {
		score += 0.2
	}
	if containsAny(title, implicationKeywordsSet.forLang(lang)) {
		score += 0.2
	}
	return minf(1.0, score)
}

func messageConsistencyScore(title string, bullets []string) float64 {
	if title == "" || len(bullets) == 0 {
		return 0.5
	}
	titleWords := wordSet(title)
	bodyWords := wordSet(strings.Join(bullets, " "))
	if len(titleWords) == 0 || len(bodyWords) == 0 {
		return 0.5
	}
	overlap := 0
	for w := range titleWords {
		if _, ok := bodyWords[w]; ok {
			overlap++
		}
	}
	union := len(titleWords) + len(bodyWords) - overlap
	if union == 0 {
		return 0.5
	}
	ratio := float64(overlap) / float64(union)
	return clampf(0.3, 1.0, ratio*2)
}

func terminologyScore(bullets []string, lang string) float64 {
	content := strings.Join(bullets, " ")
	count := countMatches(content, businessTermsSet.forLang(lang))
	switch {
	case count >= 2:
		return 1.0
	case count == 1:
		return 0.7
	default:
		return 0.5
	}
}

func evaluateInsight(insights []artifacts.Insight, lang string) float64 {
	if len(insights) == 0 {
		return 0
	}
	var total float64
	for _, ins := range insights {
		var score float64
		score += (float64(ins.LadderLevel()) / 4.0) * 0.4
		if numberPattern.MatchString(ins.Observation + ins.Comparison) {
			score += 0.3
		}
		if containsAny(ins.Comparison, comparisonKeywordsSet.forLang(lang)) {
			score += 0.2
		}
		if containsAny(ins.Action, strategyKeywordsSet.forLang(lang)) {
			score += 0.1
		}
		total += score
	}
	return total / float64(len(insights))
}

func evaluateStructure(p artifacts.Pyramid, f artifacts.Framework, slides []artifacts.SlideText, lang string) (float64, []artifacts.SlideIssue) {
	mece := 0.0
	if p.MatchesFramework(f) {
		mece = 1.0
	}

	flow := flowScore(slides, lang)
	pyramidScore := pyramidPrincipleScore(slides, lang)

	structureScore := mece*0.40 + flow*0.35 + pyramidScore*0.25

	var issues []artifacts.SlideIssue
	if mece < 1.0 {
		issues = append(issues, artifacts.SlideIssue{
			Slide: 0, Criterion: artifacts.CriterionStructure, Severity: "error",
			Detail: "pyramid argument categories do not match the selected framework (MECE violation)",
		})
	}

	return clampf(0, 1, structureScore), issues
}

func flowScore(slides []artifacts.SlideText, lang string) float64 {
	if len(slides) < 3 {
		return 0.7
	}
	score := 0.0
	if containsAny(slides[0].Title, introKeywordsSet.forLang(lang)) {
		score += 0.3
	}
	middle := slides[1 : len(slides)-1]
	for _, s := range middle {
		if containsAny(s.Title, analysisKeywordsSet.forLang(lang)) {
			score += 0.4
			break
		}
	}
	if containsAny(slides[len(slides)-1].Title, conclusionKeywordsSet.forLang(lang)) {
		score += 0.3
	}
	return maxf(0.7, score)
}

func pyramidPrincipleScore(slides []artifacts.SlideText, lang string) float64 {
	if len(slides) == 0 {
		return 0
	}
	score := 0.0
	first := strings.ToLower(slides[0].Headline)
	if first == "" {
		first = strings.ToLower(slides[0].Title)
	}
	if containsAny(first, conclusionMarkersSet.forLang(lang)) {
		score += 0.6
	}
	for _, s := range slides[1:] {
		if len(s.Bullets) >= 2 {
			score += 0.4
			break
		}
	}
	return score
}

func evaluateVisual(deck artifacts.StyledDeck) (float64, []artifacts.SlideIssue) {
	if len(deck.Slides) == 0 {
		return 0.5, nil
	}

	var issues []artifacts.SlideIssue
	for _, s := range deck.Slides {
		if s.ContentType == artifacts.ContentChart || s.ContentType == artifacts.ContentDataVisual {
			if s.Chart == nil || !s.Chart.IsValid() {
				issues = append(issues, artifacts.SlideIssue{
					Slide: s.Number, Criterion: artifacts.CriterionVisual, Severity: "critical",
					Detail: "chart-typed slide has no valid visualization",
				})
			}
		}
		if len(s.Bullets) > 6 {
			issues = append(issues, artifacts.SlideIssue{
				Slide: s.Number, Criterion: artifacts.CriterionVisual, Severity: "warning",
				Detail: "slide exceeds the recommended bullet density",
			})
		}
	}

	avgIssues := float64(len(issues)) / float64(len(deck.Slides))
	return maxf(0, 1.0-avgIssues/10.0), issues
}

func evaluateActionability(slides []artifacts.SlideText, lang string) float64 {
	if len(slides) == 0 {
		return 0
	}
	var total float64
	for _, s := range slides {
		content := strings.Join(s.Bullets, " ") + " " + s.Headline
		var score float64
		if containsAny(content, actionKeywordsSet.forLang(lang)) {
			score += 0.5
		}
		if numberPattern.MatchString(content) {
			score += 0.3
		}
		if containsAny(content, priorityKeywordsSet.forLang(lang)) {
			score += 0.2
		}
		total += score
	}
	return total / float64(len(slides))
}

// buildHints surfaces an ImprovementHint for any criterion below the
// rubric's 0.7 per-criterion floor, with priority scaled to how far
// short it falls (spec.md §4.6, §4.7.3).
func buildHints(score artifacts.QualityScore) []artifacts.ImprovementHint {
	var hints []artifacts.ImprovementHint
	add := func(c artifacts.Criterion, v float64, suggestion string) {
		if v >= 0.7 {
			return
		}
		priority := artifacts.PriorityMedium
		if v < 0.5 {
			priority = artifacts.PriorityHigh
		}
		hints = append(hints, artifacts.ImprovementHint{Criterion: c, Priority: priority, Suggestion: suggestion})
	}

	add(artifacts.CriterionClarity, score.Clarity, "sharpen headlines to pass the so-what test and align with slide body content")
	add(artifacts.CriterionInsight, score.Insight, "deepen analysis to the implication/action levels of the insight ladder")
	add(artifacts.CriterionStructure, score.Structure, "re-derive the pyramid so its arguments exactly match the chosen framework's categories")
	add(artifacts.CriterionVisual, score.Visual, "simplify dense slides and ensure chart-typed slides carry a valid visualization")
	add(artifacts.CriterionActionability, score.Actionability, "add concrete, quantified, prioritized recommendations")

	return hints
}

// containsAny and countMatches lowercase before matching so English
// keyword tables match regardless of title casing; lowercasing a
// Korean string is a no-op.
func containsAny(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func countMatches(s string, keywords []string) int {
	s = strings.ToLower(s)
	count := 0
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			count++
		}
	}
	return count
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampf(lo, hi, v float64) float64 {
	return maxf(lo, minf(hi, v))
}
