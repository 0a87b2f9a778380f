package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/deckforge/deckforge/core"
)

// Snapshot is one last-write-wins progress update for a job (spec.md
// §3.1, §6.2).
type Snapshot struct {
	CurrentStage     string
	Progress         float64 // 0..1
	UpdatedAt        time.Time
	StructurePreview []string // one "number:title:layout" entry per slide, once the Strategist completes
}

const progressTTL = 30 * time.Minute

// ProgressSink is a write-only publisher of job progress, backed by a
// core.StateStore (in-memory for tests, Redis in production via
// redisstore.Store). Keys are namespaced by (job_id, field) so that
// concurrent jobs never collide and a late write for one field can
// never clobber another (spec.md §6.2: "write-only... last write for a
// given (job_id, field) pair wins").
type ProgressSink struct {
	store core.StateStore
}

func NewProgressSink(store core.StateStore) *ProgressSink {
	return &ProgressSink{store: store}
}

func (p *ProgressSink) key(jobID, field string) string {
	return fmt.Sprintf("progress:%s:%s", jobID, field)
}

// Publish writes the snapshot's fields independently, so a stale write
// racing a fresher one only loses on the fields it actually carries.
func (p *ProgressSink) Publish(ctx context.Context, jobID string, snap Snapshot) error {
	if err := p.store.Set(ctx, p.key(jobID, "current_stage"), snap.CurrentStage, progressTTL); err != nil {
		return fmt.Errorf("progress sink: current_stage: %w", err)
	}
	if err := p.store.Set(ctx, p.key(jobID, "progress"), strconv.FormatFloat(snap.Progress, 'f', -1, 64), progressTTL); err != nil {
		return fmt.Errorf("progress sink: progress: %w", err)
	}
	if err := p.store.Set(ctx, p.key(jobID, "updated_at"), snap.UpdatedAt.Format(time.RFC3339Nano), progressTTL); err != nil {
		return fmt.Errorf("progress sink: updated_at: %w", err)
	}
	if snap.StructurePreview != nil {
		encoded, err := json.Marshal(snap.StructurePreview)
		if err != nil {
			return fmt.Errorf("progress sink: structure_preview: %w", err)
		}
		if err := p.store.Set(ctx, p.key(jobID, "structure_preview"), string(encoded), progressTTL); err != nil {
			return fmt.Errorf("progress sink: structure_preview: %w", err)
		}
	}
	return nil
}

// Read reassembles the most recently published snapshot for a job, for
// tests and for any operator-facing status endpoint built atop this
// sink. A missing field simply leaves its zero value.
func (p *ProgressSink) Read(ctx context.Context, jobID string) (Snapshot, error) {
	var snap Snapshot
	if v, ok, err := p.store.Get(ctx, p.key(jobID, "current_stage")); err != nil {
		return snap, err
	} else if ok {
		snap.CurrentStage = v
	}
	if v, ok, err := p.store.Get(ctx, p.key(jobID, "progress")); err != nil {
		return snap, err
	} else if ok {
		if f, perr := strconv.ParseFloat(v, 64); perr == nil {
			snap.Progress = f
		}
	}
	if v, ok, err := p.store.Get(ctx, p.key(jobID, "updated_at")); err != nil {
		return snap, err
	} else if ok {
		if t, perr := time.Parse(time.RFC3339Nano, v); perr == nil {
			snap.UpdatedAt = t
		}
	}
	if v, ok, err := p.store.Get(ctx, p.key(jobID, "structure_preview")); err != nil {
		return snap, err
	} else if ok {
		var preview []string
		if perr := json.Unmarshal([]byte(v), &preview); perr == nil {
			snap.StructurePreview = preview
		}
	}
	return snap, nil
}
