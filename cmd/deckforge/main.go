// Command deckforge wires the five stage agents into a single
// Orchestrator and runs one deck-generation job end to end. It mirrors
// the teacher's example-main wiring style: functional-option config,
// environment-driven provider selection, a banner of what is about to
// run, then a single synchronous call.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/deckforge/deckforge/artifacts"
	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/pipeline"
	"github.com/deckforge/deckforge/redisstore"
	"github.com/deckforge/deckforge/stages"
	"github.com/deckforge/deckforge/telemetry"
	"github.com/google/uuid"
)

func main() {
	cfg, err := core.NewConfig(
		core.WithLogger(core.NewProductionLogger()),
	)
	if err != nil {
		log.Fatalf("failed to build config: %v", err)
	}
	logger := cfg.Logger

	if shutdown := enableTelemetry(logger); shutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("deckforge: telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	provider := newProvider(logger)
	client := llm.NewClient(provider, llm.DefaultClientConfig())

	store, err := newStateStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build state store: %v", err)
	}
	progress := telemetry.NewProgressSink(store)

	metrics, err := telemetry.NewInstruments()
	if err != nil {
		log.Fatalf("failed to build instruments: %v", err)
	}

	orch := pipeline.New(
		stages.NewStrategist(client, logger),
		stages.NewAnalyst(client, logger),
		stages.NewStoryteller(client, logger),
		stages.NewDefaultDesigner(),
		stages.NewReviewer(),
		stages.NewInMemoryEmitter(),
		progress,
		metrics,
		logger,
		pipeline.Config{
			TargetQuality:   cfg.TargetQuality,
			MaxIterations:   cfg.MaxIterations,
			PerStageTimeout: cfg.PerStageTimeout,
			JobTimeout:      cfg.JobTimeout,
		},
	)

	jobID := uuid.New().String()
	doc := artifacts.DocumentInput{
		Document:  sampleDocument,
		NumSlides: 5,
		Language:  cfg.Language,
	}

	log.Println("deckforge: starting job", jobID)
	log.Printf("deckforge: target_quality=%.2f max_iterations=%d language=%s", cfg.TargetQuality, cfg.MaxIterations, cfg.Language)

	start := time.Now()
	resp, err := orch.Execute(context.Background(), jobID, doc)
	if err != nil {
		log.Fatalf("deckforge: job %s failed after %s: %v", jobID, time.Since(start), err)
	}

	log.Printf("deckforge: job %s %s in %s (iterations=%d quality=%.2f)", jobID, resp.Status, resp.Elapsed, resp.Iterations, resp.QualityScore)
	log.Println("deckforge: deck available at", resp.DeckPath)
	if len(resp.Degraded) > 0 {
		log.Println("deckforge: degraded stages:", resp.Degraded)
	}
}

// enableTelemetry wires a real OTLP/HTTP-backed trace and metric
// provider when OTEL_EXPORTER_OTLP_ENDPOINT is set, mirroring the
// teacher's env-gated EnableTelemetry pattern. With no endpoint
// configured, otel's no-op globals stay in place and every span/metric
// call is a harmless no-op.
func enableTelemetry(logger core.Logger) func(context.Context) error {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil
	}
	provider, err := telemetry.NewOTelProvider(context.Background(), "deckforge", "0.1.0", endpoint)
	if err != nil {
		logger.Warn("deckforge: otel provider init failed, continuing without tracing", map[string]interface{}{"endpoint": endpoint, "error": err.Error()})
		return nil
	}
	logger.Info("deckforge: otel tracing/metrics enabled", map[string]interface{}{"endpoint": endpoint})
	return provider.Shutdown
}

// newProvider auto-detects an LLM backend from the environment,
// falling back to a deterministic mock so the pipeline stays runnable
// without any credentials configured.
func newProvider(logger core.Logger) llm.Provider {
	endpoint := os.Getenv("DECKFORGE_LLM_ENDPOINT")
	apiKey := os.Getenv("DECKFORGE_LLM_API_KEY")
	if endpoint != "" && apiKey != "" {
		model := os.Getenv("DECKFORGE_LLM_MODEL")
		if model == "" {
			model = "gpt-4"
		}
		logger.Info("deckforge: using HTTP LLM provider", map[string]interface{}{"endpoint": endpoint, "model": model})
		return llm.NewHTTPProvider(endpoint, apiKey, model)
	}

	logger.Warn("deckforge: no DECKFORGE_LLM_ENDPOINT/DECKFORGE_LLM_API_KEY set, using mock provider", nil)
	return llm.NewMockProvider(mockReplies...)
}

// newStateStore picks Redis when a URL is configured, an in-memory
// store otherwise (local runs, tests, demos).
func newStateStore(cfg *core.Config, logger core.Logger) (core.StateStore, error) {
	if cfg.RedisURL == "" {
		logger.Warn("deckforge: no redis_url configured, using in-memory state store", nil)
		return core.NewInMemoryStateStore(), nil
	}
	return redisstore.New(redisstore.Options{RedisURL: cfg.RedisURL, Logger: logger})
}

const sampleDocument = `Our company projects 30% revenue growth next year, up from 20% in the prior period, ` +
	`driven by expansion into three new regional markets and a refreshed enterprise pricing tier. ` +
	`Competitors have been slower to adapt, giving us a window to capture share before the market ` +
	`consolidates. Delaying the regional rollout by even one quarter risks ceding that opening to ` +
	`better-capitalized rivals already running pilot programs in two of the three target regions.`

// mockReplies feeds the deterministic fallback provider a full
// first-pass sequence (Strategist x3, Analyst x1, Storyteller x3) so a
// credential-free run still produces a complete deck.
var mockReplies = []llm.MockReply{
	{Content: `{"key_message":"Invest now to capture regional growth","data_points":["30% growth","20% prior"],"target_audience":"executives","purpose":"investment decision","context":"quarterly business review","industry":"technology"}`},
	{Content: `{"top_message":"Invest now to capture regional growth","supporting_arguments":[{"argument":"Market context favors expansion","category":"Context","evidence":["three new regions"]},{"argument":"Three drivers support acting now","category":"Drivers","evidence":["pricing tier","competitor lag"]},{"argument":"Delay risks losing the window","category":"Implications","evidence":["rival pilots underway"]}]}`},
	{Content: `[{"slide_number":1,"slide_type":"title","title":"Regional Growth Investment","headline":"A window to capture share is open now","key_points":["overview"]},{"slide_number":2,"slide_type":"content","title":"Market Context","headline":"Three new regions are ready for entry","key_points":["expansion plan"]},{"slide_number":3,"slide_type":"content","title":"Growth Drivers","headline":"Pricing and timing favor us","key_points":["pricing tier","competitor lag"]},{"slide_number":4,"slide_type":"content","title":"Risk of Delay","headline":"Rivals are already piloting in our target regions","key_points":["competitive risk"]},{"slide_number":5,"slide_type":"recommendations","title":"Recommendation","headline":"Approve the regional rollout this quarter","key_points":["approve budget","launch pilots"]}]`},
	{Content: `[{"metric":"Revenue Growth","value":30,"unit":"%","period":"next year","comparison":{"previous":20,"growth_rate":50},"context":"company-wide"}]`},
	{Content: `{"situation_slides":[2],"complication_slides":[3],"resolution_slides":[4],"story_arc":"context, drivers, risk, recommendation"}`},
	{Content: `["Let's start with the market context.","Given that context, here is what is driving it.","That driver creates real risk if we wait.","Here is what we recommend doing about it."]`},
	{Content: `[{"slide_number":1,"speaking_points":["Open with the ask: approve the rollout"],"emphasis":"urgency","potential_questions":["Why now?"]},{"slide_number":2,"speaking_points":["Three regions are pilot-ready"],"emphasis":"readiness","potential_questions":["Which regions?"]},{"slide_number":3,"speaking_points":["Pricing tier drives margin"],"emphasis":"drivers","potential_questions":["What changed in pricing?"]},{"slide_number":4,"speaking_points":["Rivals are already piloting"],"emphasis":"risk","potential_questions":["Who specifically?"]},{"slide_number":5,"speaking_points":["Approve budget this quarter"],"emphasis":"call to action","potential_questions":["What is the budget?"]}]`},
}
