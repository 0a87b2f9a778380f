package telemetry

import (
	"context"
	"testing"
)

func TestNewInstrumentsRegistersWithoutError(t *testing.T) {
	in, err := NewInstruments()
	if err != nil {
		t.Fatalf("expected instruments to register against the default meter provider, got %v", err)
	}
	in.RecordStage(context.Background(), "strategist", "ok")
	in.RecordStage(context.Background(), "analyst", "degraded")
	in.RecordStage(context.Background(), "storyteller", "fatal")
}
