// Package telemetry provides the pipeline's metric instruments and the
// progress sink used by the orchestrator to report per-job status.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "deckforge"

// Instruments holds the fixed set of metric instruments the pipeline
// emits (spec.md §6.2 progress reporting, §4.7 iteration counts).
// Unlike the teacher's MetricInstruments, these are created once at
// construction rather than lazily cached by name, since the pipeline's
// metric surface is small and known in advance.
type Instruments struct {
	meter metric.Meter

	StagesExecuted    metric.Int64Counter
	StagesDegraded    metric.Int64Counter
	StagesFatal       metric.Int64Counter
	Iterations        metric.Int64Histogram
	JobDuration       metric.Float64Histogram
	LLMRetries        metric.Int64Counter
	QualityScoreTotal metric.Float64Histogram
}

// NewInstruments registers the pipeline's instruments against the
// global otel MeterProvider (callers install one before this runs, for
// example through NewOTelProvider or otel.SetMeterProvider, or accept
// the no-op default).
func NewInstruments() (*Instruments, error) {
	meter := otel.Meter(meterName)

	stagesExecuted, err := meter.Int64Counter("deckforge.stages.executed",
		metric.WithDescription("stage executions by stage name and outcome"))
	if err != nil {
		return nil, fmt.Errorf("instruments: stages.executed: %w", err)
	}
	stagesDegraded, err := meter.Int64Counter("deckforge.stages.degraded",
		metric.WithDescription("stage executions that fell back to a degraded result"))
	if err != nil {
		return nil, fmt.Errorf("instruments: stages.degraded: %w", err)
	}
	stagesFatal, err := meter.Int64Counter("deckforge.stages.fatal",
		metric.WithDescription("stage executions that aborted the job"))
	if err != nil {
		return nil, fmt.Errorf("instruments: stages.fatal: %w", err)
	}
	iterations, err := meter.Int64Histogram("deckforge.pipeline.iterations",
		metric.WithDescription("refinement iterations consumed per job"))
	if err != nil {
		return nil, fmt.Errorf("instruments: pipeline.iterations: %w", err)
	}
	jobDuration, err := meter.Float64Histogram("deckforge.pipeline.duration_seconds",
		metric.WithDescription("end-to-end job duration"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("instruments: pipeline.duration: %w", err)
	}
	llmRetries, err := meter.Int64Counter("deckforge.llm.retries",
		metric.WithDescription("llm call retry attempts"))
	if err != nil {
		return nil, fmt.Errorf("instruments: llm.retries: %w", err)
	}
	qualityScoreTotal, err := meter.Float64Histogram("deckforge.quality.score_total",
		metric.WithDescription("weighted total quality score per review"))
	if err != nil {
		return nil, fmt.Errorf("instruments: quality.score_total: %w", err)
	}

	return &Instruments{
		meter:             meter,
		StagesExecuted:    stagesExecuted,
		StagesDegraded:    stagesDegraded,
		StagesFatal:       stagesFatal,
		Iterations:        iterations,
		JobDuration:       jobDuration,
		LLMRetries:        llmRetries,
		QualityScoreTotal: qualityScoreTotal,
	}, nil
}

// RecordStage records one stage execution's outcome.
func (in *Instruments) RecordStage(ctx context.Context, stage string, outcome string) {
	attrs := metric.WithAttributes(attribute.String("stage", stage), attribute.String("outcome", outcome))
	in.StagesExecuted.Add(ctx, 1, attrs)
	switch outcome {
	case "degraded":
		in.StagesDegraded.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	case "fatal":
		in.StagesFatal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}
