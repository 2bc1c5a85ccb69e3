package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestBatches(t *testing.T) {
	texts := make([]string, 250)
	got := batches(texts, 100)
	if len(got) != 3 || len(got[0]) != 100 || len(got[1]) != 100 || len(got[2]) != 50 {
		t.Fatalf("unexpected batch sizes: %d", len(got))
	}
	if batches(nil, 100) != nil {
		t.Fatal("expected no batches for no texts")
	}
}

func TestToFloat32(t *testing.T) {
	v := toFloat32(&genai.ContentEmbedding{Values: []float32{0.5, -1}})
	if len(v) != 2 || v[0] != 0.5 || v[1] != -1 {
		t.Fatalf("unexpected vector %v", v)
	}
	if toFloat32(nil) != nil {
		t.Fatal("expected nil for nil embedding")
	}
}

func TestLimiterHonoursCancellation(t *testing.T) {
	l := newLimiter(0.001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestNewEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
