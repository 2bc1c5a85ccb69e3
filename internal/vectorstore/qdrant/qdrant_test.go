package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore"
)

// fakeQdrant serves the handful of endpoints the store uses.
type fakeQdrant struct {
	mu      sync.Mutex
	exists  bool
	created int
	points  []map[string]any
	calls   []string
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	switch {
	case r.URL.Path == "/collections/docs" && r.Method == http.MethodGet:
		if !f.exists {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	case r.URL.Path == "/collections/docs" && r.Method == http.MethodPut:
		f.exists = true
		f.created++
		_, _ = w.Write([]byte(`{"result":true}`))
	case r.URL.Path == "/collections/docs" && r.Method == http.MethodDelete:
		f.exists = false
		f.points = nil
		_, _ = w.Write([]byte(`{"result":true}`))
	case r.URL.Path == "/collections/docs/points":
		var body struct {
			Points []map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points = append(f.points, body.Points...)
		_, _ = w.Write([]byte(`{"result":{"status":"completed"}}`))
	case r.URL.Path == "/collections/docs/points/search":
		if !f.exists {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":[
			{"id":"x","score":0.9,"payload":{"id":"doc-0","page_content":"faturamento","metadata":{"page":0}}},
			{"id":"y","score":0.4,"payload":{"id":"doc-1","page_content":"clientes","metadata":{"page":1}}}]}`))
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func newTestStorage(t *testing.T) (*Storage, *fakeQdrant) {
	t.Helper()
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewStorage(Config{URL: srv.URL, Collection: "docs"}), fake
}

func TestStorage_UpsertCreatesCollectionOnce(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStorage(t)

	recs := []domain.Record{
		{ID: "doc-0", Embedding: []float32{1, 0}, Content: "faturamento", Metadata: map[string]any{"page": 0}},
		{ID: "doc-1", Embedding: []float32{0, 1}, Content: "clientes"},
	}
	if err := s.Upsert(ctx, recs); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, recs[:1]); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if fake.created != 1 {
		t.Fatalf("expected collection created once, got %d", fake.created)
	}
	if len(fake.points) != 3 {
		t.Fatalf("expected 3 points sent, got %d", len(fake.points))
	}
	p := fake.points[0]
	if p["id"] != PointID("doc-0") {
		t.Fatalf("unexpected point id %v", p["id"])
	}
	payload := p["payload"].(map[string]any)
	if payload["id"] != "doc-0" || payload["page_content"] != "faturamento" {
		t.Fatalf("unexpected payload %v", payload)
	}

	err := s.Upsert(ctx, []domain.Record{{ID: "doc-2", Embedding: []float32{1, 0, 0}}})
	if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStorage_QueryConvertsSimilarityToDistance(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	if err := s.Upsert(ctx, []domain.Record{{ID: "doc-0", Embedding: []float32{1, 0}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	res, err := s.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res) != 2 || res[0].Content != "faturamento" || res[1].Content != "clientes" {
		t.Fatalf("unexpected results: %+v", res)
	}
	if math.Abs(res[0].Score-0.1) > 1e-9 || math.Abs(res[1].Score-0.6) > 1e-9 {
		t.Fatalf("unexpected distances: %f %f", res[0].Score, res[1].Score)
	}
	if res[0].Metadata["page"] != float64(0) {
		t.Fatalf("metadata lost: %v", res[0].Metadata)
	}
}

func TestStorage_MissingCollectionIsEmpty(t *testing.T) {
	s, _ := newTestStorage(t)
	res, err := s.Query(context.Background(), []float32{1, 0}, 3)
	if err != nil || len(res) != 0 {
		t.Fatalf("expected empty result, got %v, %v", res, err)
	}
}

func TestStorage_Reset(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStorage(t)
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset on missing collection: %v", err)
	}
	_ = s.Upsert(ctx, []domain.Record{{ID: "doc-0", Embedding: []float32{1, 0}}})
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	// a new dimension is accepted once the collection is gone
	if err := s.Upsert(ctx, []domain.Record{{ID: "doc-0", Embedding: []float32{1, 0, 0}}}); err != nil {
		t.Fatalf("Upsert after reset: %v", err)
	}
	if fake.created != 2 {
		t.Fatalf("expected collection recreated, got %d creations", fake.created)
	}
}

func TestPointID(t *testing.T) {
	if PointID("doc-0") != PointID("doc-0") || PointID("doc-0") == PointID("doc-1") {
		t.Fatal("point ids must be stable and distinct")
	}
}
