package llm

import (
	"context"
	"testing"
)

func TestMockProviderServesRepliesInOrder(t *testing.T) {
	p := NewMockProvider(MockReply{Content: "first"}, MockReply{Content: "second"})

	r1, err := p.Generate(context.Background(), "p1", Options{})
	if err != nil || r1.Content != "first" {
		t.Fatalf("unexpected first reply: %v %v", r1, err)
	}
	r2, err := p.Generate(context.Background(), "p2", Options{})
	if err != nil || r2.Content != "second" {
		t.Fatalf("unexpected second reply: %v %v", r2, err)
	}
	if len(p.Requests) != 2 || p.Requests[0] != "p1" || p.Requests[1] != "p2" {
		t.Fatalf("unexpected recorded requests: %v", p.Requests)
	}
}

func TestMockProviderExhaustionErrors(t *testing.T) {
	p := NewMockProvider(MockReply{Content: "only"})
	_, _ = p.Generate(context.Background(), "p1", Options{})
	_, err := p.Generate(context.Background(), "p2", Options{})
	if err == nil {
		t.Fatal("expected error once replies are exhausted")
	}
}
