// Package insight implements the four-level analytical ladder that
// turns one validated data point into a progressively sharper
// narrative: what happened, how it compares, why, and what to do
// about it (spec.md §4.3.3).
package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deckforge/deckforge/artifacts"
)

// Climb derives a four-level Insight from dp. It is a pure function:
// given the same DataPoint and language, it always returns the same
// Insight (testable property #11, spec.md §8). lang selects Korean
// prose and magnitude formatting ("ko") or English prose with a
// thousands-separator fallback for any other value (spec.md §8 S1).
func Climb(dp artifacts.DataPoint, lang string) artifacts.Insight {
	observation := observe(dp, lang)
	comparison, compConfidence, evidence := compare(dp, lang)
	implication, kind, driver, implConfidence, evidence := implicate(dp, lang, evidence)
	action := recommend(dp, lang, kind, driver)

	confidence := (1.0 + compConfidence + implConfidence + 0.75) / 4.0

	return artifacts.Insight{
		DataPointID: dp.ID,
		Observation: observation,
		Comparison:  comparison,
		Implication: implication,
		Action:      action,
		Confidence:  confidence,
		Evidence:    evidence,
	}
}

func observe(dp artifacts.DataPoint, lang string) string {
	period := dp.Period
	if period == "" {
		if lang == "ko" {
			period = "현재"
		} else {
			period = "currently"
		}
	}
	if lang == "ko" {
		return fmt.Sprintf("%s %s이(가) %s", period, dp.Metric, formatNumber(dp.Value, dp.Unit, lang))
	}
	return fmt.Sprintf("%s %s was %s", period, dp.Metric, formatNumber(dp.Value, dp.Unit, lang))
}

func compare(dp artifacts.DataPoint, lang string) (statement string, confidence float64, evidence []string) {
	if dp.Comparison == nil {
		if lang == "ko" {
			return fmt.Sprintf("%s %s로 높은 수준", dp.Metric, formatNumber(dp.Value, dp.Unit, lang)), 0.6, nil
		}
		return fmt.Sprintf("%s at a high level of %s", dp.Metric, formatNumber(dp.Value, dp.Unit, lang)), 0.6, nil
	}

	var parts []string
	c := dp.Comparison

	if c.HasGrowth {
		switch {
		case c.GrowthRate > 0:
			if lang == "ko" {
				parts = append(parts, fmt.Sprintf("전년 대비 %.1f%% 증가", absf(c.GrowthRate)))
			} else {
				parts = append(parts, fmt.Sprintf("up %.1f%% year over year", absf(c.GrowthRate)))
			}
		case c.GrowthRate < 0:
			if lang == "ko" {
				parts = append(parts, fmt.Sprintf("전년 대비 %.1f%% 감소", absf(c.GrowthRate)))
			} else {
				parts = append(parts, fmt.Sprintf("down %.1f%% year over year", absf(c.GrowthRate)))
			}
		default:
			if lang == "ko" {
				parts = append(parts, "전년과 동일")
			} else {
				parts = append(parts, "flat year over year")
			}
		}
	}

	if c.HasBenchmark && c.Benchmark > 0 {
		ratio := dp.Value / c.Benchmark
		switch {
		case ratio > 1.2:
			if lang == "ko" {
				parts = append(parts, fmt.Sprintf("업계 평균 대비 %.1f배 높음", ratio))
			} else {
				parts = append(parts, fmt.Sprintf("%.1fx above the industry average", ratio))
			}
		case ratio < 0.8:
			if lang == "ko" {
				parts = append(parts, fmt.Sprintf("업계 평균 대비 %.1f%% 낮음", (1-ratio)*100))
			} else {
				parts = append(parts, fmt.Sprintf("%.1f%% below the industry average", (1-ratio)*100))
			}
		default:
			if lang == "ko" {
				parts = append(parts, "업계 평균 수준")
			} else {
				parts = append(parts, "in line with the industry average")
			}
		}
	}

	if len(parts) == 0 {
		if lang == "ko" {
			return fmt.Sprintf("%s %s로 높은 수준", dp.Metric, formatNumber(dp.Value, dp.Unit, lang)), 0.6, nil
		}
		return fmt.Sprintf("%s at a high level of %s", dp.Metric, formatNumber(dp.Value, dp.Unit, lang)), 0.6, nil
	}
	if lang == "ko" {
		return strings.Join(parts, ", "), 0.9, []string{fmt.Sprintf("관찰: %s", observe(dp, lang))}
	}
	return strings.Join(parts, ", "), 0.9, []string{fmt.Sprintf("Observation: %s", observe(dp, lang))}
}

// implicationKind classifies why a metric moved, independent of the
// language the statement is rendered in -- recommend() branches on this
// instead of substring-matching translated prose.
type implicationKind string

const (
	implicationDriver implicationKind = "driver"
	implicationGrowth implicationKind = "growth"
	implicationDecline implicationKind = "decline"
	implicationMixed implicationKind = "mixed"
)

func implicate(dp artifacts.DataPoint, lang string, priorEvidence []string) (statement string, kind implicationKind, driver string, confidence float64, evidence []string) {
	evidence = append([]string{}, priorEvidence...)

	if dp.Comparison != nil && len(dp.Comparison.Drivers) > 0 {
		driverName, contribution := topDriver(dp.Comparison.Drivers)
		if lang == "ko" {
			statement = fmt.Sprintf("%s이 %s의 %.0f%% 기여", driverName, dp.Metric, contribution)
			evidence = append(evidence, fmt.Sprintf("기여도 분석: %s %.0f%%", driverName, contribution))
		} else {
			statement = fmt.Sprintf("%s contributed %.0f%% of %s", driverName, contribution, dp.Metric)
			evidence = append(evidence, fmt.Sprintf("Contribution analysis: %s %.0f%%", driverName, contribution))
		}
		return statement, implicationDriver, driverName, 0.85, evidence
	}

	switch {
	case dp.Comparison != nil && dp.Comparison.HasGrowth && dp.Comparison.GrowthRate > 0:
		kind, confidence = implicationGrowth, 0.7
		if lang == "ko" {
			statement = "시장 확대 및 제품 경쟁력 강화가 주요 원인"
		} else {
			statement = "market expansion and strengthened competitiveness are the main drivers"
		}
	case dp.Comparison != nil && dp.Comparison.HasGrowth && dp.Comparison.GrowthRate < 0:
		kind, confidence = implicationDecline, 0.7
		if lang == "ko" {
			statement = "시장 환경 악화 또는 경쟁 심화가 주요 원인"
		} else {
			statement = "deteriorating market conditions or intensified competition are the main drivers"
		}
	default:
		kind, confidence = implicationMixed, 0.6
		if lang == "ko" {
			statement = "복합적 요인에 의한 결과로 추정"
		} else {
			statement = "likely the result of multiple contributing factors"
		}
	}
	return statement, kind, "", confidence, evidence
}

func recommend(dp artifacts.DataPoint, lang string, kind implicationKind, driver string) string {
	metric := dp.Metric

	switch kind {
	case implicationDriver:
		if driver != "" {
			if lang == "ko" {
				return fmt.Sprintf("%s 영역 투자 확대로 %s 30%% 추가 성장 가능", driver, metric)
			}
			return fmt.Sprintf("expanding investment in %s could drive 30%% additional growth in %s", driver, metric)
		}
		if lang == "ko" {
			return fmt.Sprintf("핵심 성장 동력 강화로 %s 지속 성장 가능", metric)
		}
		return fmt.Sprintf("strengthening core growth drivers can sustain growth in %s", metric)
	case implicationGrowth:
		if lang == "ko" {
			return "경쟁 우위 확보 위한 차별화 전략 수립 및 실행 필요"
		}
		return "a differentiation strategy is needed to secure competitive advantage"
	case implicationDecline:
		if lang == "ko" {
			return fmt.Sprintf("%s 개선 위한 즉각적 대응 조치 및 구조 개선 필요", metric)
		}
		return fmt.Sprintf("immediate corrective action and structural improvement are needed for %s", metric)
	default:
		if lang == "ko" {
			return fmt.Sprintf("%s 최적화 위한 전략적 접근 및 투자 필요", metric)
		}
		return fmt.Sprintf("a strategic approach and investment are needed to optimize %s", metric)
	}
}

func topDriver(drivers map[string]float64) (name string, contribution float64) {
	keys := make([]string, 0, len(drivers))
	for k := range drivers {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic tie-break (testable property #11)

	best := keys[0]
	for _, k := range keys {
		if drivers[k] > drivers[best] {
			best = k
		}
	}
	return best, drivers[best]
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// formatNumber renders value in Korean 억/조 magnitude units when
// lang == "ko" (spec.md §4.3.3), and with thousands separators
// otherwise.
func formatNumber(value float64, unit string, lang string) string {
	if lang == "ko" {
		return formatNumberKorean(value, unit)
	}
	return formatNumberThousands(value, unit)
}

func formatNumberKorean(value float64, unit string) string {
	switch {
	case value >= 100000000: // 억 (100 million)
		eok := value / 100000000
		if eok >= 10000 {
			return fmt.Sprintf("%.1f조%s", eok/10000, unit)
		}
		return fmt.Sprintf("%.1f억%s", eok, unit)
	case value >= 1000:
		return fmt.Sprintf("%s%s", groupThousands(value), unit)
	default:
		return fmt.Sprintf("%.1f%s", value, unit)
	}
}

func formatNumberThousands(value float64, unit string) string {
	if value >= 1000 {
		return fmt.Sprintf("%s%s", groupThousands(value), unit)
	}
	return fmt.Sprintf("%.1f%s", value, unit)
}

func groupThousands(value float64) string {
	whole := fmt.Sprintf("%.0f", value)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	n := len(whole)
	if n <= 3 {
		if neg {
			return "-" + whole
		}
		return whole
	}

	var b strings.Builder
	lead := n % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out
}
