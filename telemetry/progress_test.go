package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/deckforge/deckforge/core"
)

func TestProgressSinkPublishAndRead(t *testing.T) {
	store := core.NewInMemoryStateStore()
	sink := NewProgressSink(store)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := sink.Publish(ctx, "job-1", Snapshot{
		CurrentStage:     "analyst",
		Progress:         0.4,
		UpdatedAt:        now,
		StructurePreview: []string{"Title", "Exec Summary"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got, err := sink.Read(ctx, "job-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.CurrentStage != "analyst" || got.Progress != 0.4 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt %v, got %v", now, got.UpdatedAt)
	}
	if len(got.StructurePreview) != 2 || got.StructurePreview[0] != "Title" {
		t.Fatalf("unexpected structure preview: %v", got.StructurePreview)
	}
}

func TestProgressSinkLastWriteWinsPerField(t *testing.T) {
	store := core.NewInMemoryStateStore()
	sink := NewProgressSink(store)
	ctx := context.Background()

	_ = sink.Publish(ctx, "job-2", Snapshot{CurrentStage: "strategist", Progress: 0.1})
	_ = sink.Publish(ctx, "job-2", Snapshot{CurrentStage: "analyst", Progress: 0.3})

	got, err := sink.Read(ctx, "job-2")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.CurrentStage != "analyst" || got.Progress != 0.3 {
		t.Fatalf("expected latest write to win, got %+v", got)
	}
}

func TestProgressSinkIsolatesJobs(t *testing.T) {
	store := core.NewInMemoryStateStore()
	sink := NewProgressSink(store)
	ctx := context.Background()

	_ = sink.Publish(ctx, "job-a", Snapshot{CurrentStage: "designer", Progress: 0.9})
	_ = sink.Publish(ctx, "job-b", Snapshot{CurrentStage: "reviewer", Progress: 0.95})

	a, _ := sink.Read(ctx, "job-a")
	b, _ := sink.Read(ctx, "job-b")
	if a.CurrentStage != "designer" || b.CurrentStage != "reviewer" {
		t.Fatalf("expected isolated per-job snapshots, got a=%+v b=%+v", a, b)
	}
}
