// Package pipeline drives the deck-generation sequence end to end:
// Strategist -> Analyst -> Storyteller -> Designer -> Reviewer, with
// quality-driven partial re-runs (spec.md §4.7). Grounded on the
// teacher's orchestration style of sequential stage composition plus
// per-stage timeout/cancellation enforcement.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/stages"
	"github.com/deckforge/deckforge/telemetry"
)

// Status is the closed set of terminal job states (spec.md §4.7.1).
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Response is the orchestrator's execution contract (spec.md §4.7.1).
type Response struct {
	Status       Status
	DeckPath     string
	QualityScore float64
	Iterations   int
	Elapsed      time.Duration
	Errors       []string
	Degraded     []string
}

// Config configures an Orchestrator's timeouts and quality policy
// (spec.md §4.7, §6.5).
type Config struct {
	TargetQuality   float64
	MaxIterations   int
	PerStageTimeout time.Duration
	JobTimeout      time.Duration
}

// DefaultConfig matches spec.md §6.5 / core.Config defaults.
func DefaultConfig() Config {
	return Config{
		TargetQuality:   0.85,
		MaxIterations:   3,
		PerStageTimeout: 60 * time.Second,
		JobTimeout:      10 * time.Minute,
	}
}

// Orchestrator composes the five stages, publishes progress, and
// applies the partial re-run strategy of spec.md §4.7.3.
type Orchestrator struct {
	Strategist  *stages.Strategist
	Analyst     *stages.Analyst
	Storyteller *stages.Storyteller
	Designer    stages.Designer
	Reviewer    *stages.Reviewer
	Emitter     stages.DeckEmitter
	Progress    *telemetry.ProgressSink
	Metrics     *telemetry.Instruments
	Logger      core.Logger
	Config      Config
}

// New builds an Orchestrator. A nil Logger is replaced with a no-op; a
// zero Config is replaced with DefaultConfig.
func New(strategist *stages.Strategist, analyst *stages.Analyst, storyteller *stages.Storyteller, designer stages.Designer, reviewer *stages.Reviewer, emitter stages.DeckEmitter, progress *telemetry.ProgressSink, metrics *telemetry.Instruments, logger core.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if cfg.MaxIterations == 0 {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		Strategist: strategist, Analyst: analyst, Storyteller: storyteller,
		Designer: designer, Reviewer: reviewer, Emitter: emitter,
		Progress: progress, Metrics: metrics, Logger: logger, Config: cfg,
	}
}

// run holds the mutable per-job state threaded through the main
// sequence and its partial re-runs.
type run struct {
	strategistOut  stages.StrategistOutput
	analystOut     stages.AnalystOutput
	storytellerOut stages.StorytellerOutput
	deck           artifacts.StyledDeck
	score          artifacts.QualityScore
	degraded       map[string]struct{}
	lastProgress   float64
}

func newRun() *run {
	return &run{degraded: make(map[string]struct{})}
}

func (r *run) markDegraded(stage string) {
	r.degraded[stage] = struct{}{}
}

func (r *run) degradedList() []string {
	out := make([]string, 0, len(r.degraded))
	for s := range r.degraded {
		out = append(out, s)
	}
	return out
}

// Execute runs the pipeline for one job to completion: the main
// sequence (spec.md §4.7.2), followed by up to MaxIterations-1
// additional partial re-runs when the quality target is not met
// (spec.md §4.7.3). Safe for concurrent invocation with distinct jobIDs.
func (o *Orchestrator) Execute(ctx context.Context, jobID string, in artifacts.DocumentInput) (Response, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.Config.JobTimeout)
	defer cancel()
	ctx = core.ContextWithJobID(ctx, jobID)

	ctx, span := telemetry.StartSpan(ctx, "pipeline.execute")
	defer span.End()
	telemetry.SetSpanAttributes(ctx, attribute.String("job_id", jobID), attribute.String("language", in.Normalized().Language))

	r := newRun()
	var errs []string

	if err := o.checkCancelled(ctx); err != nil {
		return o.timeoutResponse(ctx, jobID, start, err, r), err
	}

	o.publish(ctx, jobID, "document_analysis", 0.20, nil, r)
	strategistResult := withStageTimeout(o, ctx, func(c context.Context) stages.StageResult[stages.StrategistOutput] {
		return o.Strategist.Run(c, in)
	})
	if strategistResult.IsFatal() {
		errs = append(errs, strategistResult.Err.Error())
		return o.failedResponse(ctx, jobID, start, errs, r), strategistResult.Err
	}
	if strategistResult.IsDegraded() {
		r.markDegraded("strategist")
	}
	r.strategistOut = strategistResult.Value

	if err := o.checkCancelled(ctx); err != nil {
		return o.timeoutResponse(ctx, jobID, start, err, r), err
	}

	o.publish(ctx, jobID, "data_extraction", 0.40, nil, r)
	if err := o.runAnalyst(ctx, in, r); err != nil {
		errs = append(errs, err.Error())
		return o.failedResponse(ctx, jobID, start, errs, r), err
	}

	if err := o.checkCancelled(ctx); err != nil {
		return o.timeoutResponse(ctx, jobID, start, err, r), err
	}

	o.publish(ctx, jobID, "structure_design", 0.60, structurePreview(r.strategistOut.Outline), r)
	if err := o.runStoryteller(ctx, r); err != nil {
		errs = append(errs, err.Error())
		return o.failedResponse(ctx, jobID, start, errs, r), err
	}

	if err := o.checkCancelled(ctx); err != nil {
		return o.timeoutResponse(ctx, jobID, start, err, r), err
	}

	o.publish(ctx, jobID, "design_application", 0.80, nil, r)
	if err := o.runDesigner(ctx, r); err != nil {
		errs = append(errs, err.Error())
		return o.failedResponse(ctx, jobID, start, errs, r), err
	}

	iterations := 1
	var deckPath string
	for {
		if err := o.checkCancelled(ctx); err != nil {
			return o.timeoutResponse(ctx, jobID, start, err, r), err
		}

		o.publish(ctx, jobID, "quality_review", 0.95, nil, r)
		path, err := withStageTimeoutErr(o, ctx, func(c context.Context) (string, error) {
			return o.Emitter.Emit(c, jobID, r.deck)
		})
		if err != nil {
			errs = append(errs, err.Error())
			return o.failedResponse(ctx, jobID, start, errs, r), err
		}
		deckPath = path

		reviewResult := withStageTimeout(o, ctx, func(c context.Context) stages.StageResult[artifacts.QualityScore] {
			return o.Reviewer.Run(c, r.deck, r.analystOut.Insights, r.strategistOut.Pyramid, r.strategistOut.Framework, o.Config.TargetQuality, in.Normalized().Language)
		})
		if reviewResult.IsFatal() {
			errs = append(errs, reviewResult.Err.Error())
			return o.failedResponse(ctx, jobID, start, errs, r), reviewResult.Err
		}
		r.score = reviewResult.Value

		if r.score.Passed || iterations >= o.Config.MaxIterations {
			break
		}

		category, ok := r.score.HighestPriorityHintCategory()
		if !ok {
			break
		}
		if err := o.replay(ctx, jobID, in, r, category); err != nil {
			errs = append(errs, err.Error())
			return o.failedResponse(ctx, jobID, start, errs, r), err
		}
		iterations++
	}

	o.publish(ctx, jobID, "completed", 1.0, nil, r)

	return Response{
		Status:       StatusCompleted,
		DeckPath:     deckPath,
		QualityScore: r.score.Total,
		Iterations:   iterations,
		Elapsed:      time.Since(start),
		Errors:       errs,
		Degraded:     r.degradedList(),
	}, nil
}

func (o *Orchestrator) runAnalyst(ctx context.Context, in artifacts.DocumentInput, r *run) error {
	result := withStageTimeout(o, ctx, func(c context.Context) stages.StageResult[stages.AnalystOutput] {
		return o.Analyst.Run(c, in)
	})
	if result.IsFatal() {
		return result.Err
	}
	if result.IsDegraded() {
		r.markDegraded("analyst")
	}
	r.analystOut = result.Value
	return nil
}

func (o *Orchestrator) runStoryteller(ctx context.Context, r *run) error {
	result := withStageTimeout(o, ctx, func(c context.Context) stages.StageResult[stages.StorytellerOutput] {
		return o.Storyteller.Run(c, r.strategistOut.Outline, r.strategistOut.Pyramid)
	})
	if result.IsFatal() {
		return result.Err
	}
	if result.IsDegraded() {
		r.markDegraded("storyteller")
	}
	r.storytellerOut = result.Value
	return nil
}

func (o *Orchestrator) runDesigner(ctx context.Context, r *run) error {
	deck, err := withStageTimeoutErr(o, ctx, func(c context.Context) (artifacts.StyledDeck, error) {
		return o.Designer.Apply(c, r.strategistOut.Outline, r.analystOut.Visualizations, r.analystOut.Insights)
	})
	if err != nil {
		return err
	}
	r.deck = deck
	return nil
}

// replay implements the §4.7.3 partial re-run category mapping.
func (o *Orchestrator) replay(ctx context.Context, jobID string, in artifacts.DocumentInput, r *run, category artifacts.Criterion) error {
	switch category {
	case artifacts.CriterionClarity, artifacts.CriterionInsight:
		if err := o.runAnalyst(ctx, in, r); err != nil {
			return err
		}
		return o.runDesigner(ctx, r)
	case artifacts.CriterionActionability:
		if err := o.runStoryteller(ctx, r); err != nil {
			return err
		}
		return o.runDesigner(ctx, r)
	case artifacts.CriterionStructure:
		strategistResult := withStageTimeout(o, ctx, func(c context.Context) stages.StageResult[stages.StrategistOutput] {
			return o.Strategist.Run(c, in)
		})
		if strategistResult.IsFatal() {
			return strategistResult.Err
		}
		if strategistResult.IsDegraded() {
			r.markDegraded("strategist")
		}
		r.strategistOut = strategistResult.Value
		if err := o.runAnalyst(ctx, in, r); err != nil {
			return err
		}
		if err := o.runStoryteller(ctx, r); err != nil {
			return err
		}
		return o.runDesigner(ctx, r)
	case artifacts.CriterionVisual:
		return o.runDesigner(ctx, r)
	}
	return nil
}

// withStageTimeout bounds a single synchronous stage call to
// PerStageTimeout (spec.md §4.7.4), releasing the timer as soon as fn
// returns rather than leaking it for the life of the job.
func withStageTimeout[T any](o *Orchestrator, ctx context.Context, fn func(context.Context) T) T {
	c, cancel := context.WithTimeout(ctx, o.Config.PerStageTimeout)
	defer cancel()
	return fn(c)
}

func withStageTimeoutErr[T any](o *Orchestrator, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	c, cancel := context.WithTimeout(ctx, o.Config.PerStageTimeout)
	defer cancel()
	return fn(c)
}

func (o *Orchestrator) checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return core.ErrAborted
	default:
		return nil
	}
}

func (o *Orchestrator) publish(ctx context.Context, jobID, stage string, progress float64, preview []string, r *run) {
	r.lastProgress = progress
	telemetry.AddSpanEvent(ctx, "stage."+stage, attribute.Float64("progress", progress))
	if o.Progress == nil {
		return
	}
	snap := telemetry.Snapshot{CurrentStage: stage, Progress: progress, UpdatedAt: time.Now(), StructurePreview: preview}
	if err := o.Progress.Publish(ctx, jobID, snap); err != nil {
		o.Logger.Warn("pipeline: progress publish failed", map[string]interface{}{"stage": stage, "error": err.Error()})
	}
	if o.Metrics != nil {
		o.Metrics.RecordStage(ctx, stage, "running")
	}
}

// publishFailed writes the terminal `failed` snapshot (spec.md §6.2,
// §4.7.1 S4/S5) using a fresh background context: the job's own ctx may
// already be cancelled or past its deadline, but the terminal snapshot
// must still land durably.
func (o *Orchestrator) publishFailed(jobID string, r *run) {
	if o.Progress == nil {
		return
	}
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := telemetry.Snapshot{CurrentStage: "failed", Progress: r.lastProgress, UpdatedAt: time.Now()}
	if err := o.Progress.Publish(c, jobID, snap); err != nil {
		o.Logger.Warn("pipeline: progress publish failed", map[string]interface{}{"stage": "failed", "error": err.Error()})
	}
	if o.Metrics != nil {
		o.Metrics.RecordStage(c, "failed", "fatal")
	}
}

func structurePreview(outline artifacts.Outline) []string {
	preview := make([]string, 0, len(outline))
	for _, s := range outline {
		preview = append(preview, fmt.Sprintf("%d:%s:%s", s.Number, s.Title, s.LayoutType))
	}
	return preview
}

func (o *Orchestrator) failedResponse(ctx context.Context, jobID string, start time.Time, errs []string, r *run) Response {
	if len(errs) > 0 {
		telemetry.RecordSpanError(ctx, fmt.Errorf("%s", errs[len(errs)-1]))
	}
	o.publishFailed(jobID, r)
	return Response{
		Status:   StatusFailed,
		Elapsed:  time.Since(start),
		Errors:   errs,
		Degraded: r.degradedList(),
	}
}

func (o *Orchestrator) timeoutResponse(ctx context.Context, jobID string, start time.Time, err error, r *run) Response {
	telemetry.RecordSpanError(ctx, err)
	o.publishFailed(jobID, r)
	return Response{
		Status:  StatusFailed,
		Elapsed: time.Since(start),
		Errors:  []string{err.Error()},
	}
}
