package service

import (
	"context"
	"errors"
	"testing"

	"pdfchat/internal/domain"
	"pdfchat/internal/logger"
	"pdfchat/internal/vectorstore/memory"
)

func TestSearch_KeepsStoreOrder(t *testing.T) {
	store := &stubStore{results: []domain.SearchResult{
		{Content: "primeiro", Score: 0.1},
		{Content: "segundo", Score: 0.2},
		{Content: "terceiro", Score: 0.3},
	}}
	s := NewSearcher(&keywordEmbedder{}, store, logger.Discard())

	res := s.Search(context.Background(), "pergunta", 2)
	if len(res) != 2 || res[0].Content != "primeiro" || res[1].Content != "segundo" {
		t.Fatalf("unexpected results: %+v", res)
	}
	if got := s.GetContext(context.Background(), "pergunta", 3); got != "primeiro\n\nsegundo\n\nterceiro" {
		t.Fatalf("unexpected context: %q", got)
	}
}

func TestSearch_ErrorsYieldEmpty(t *testing.T) {
	tests := []struct {
		name  string
		emb   *keywordEmbedder
		store *stubStore
	}{
		{"no results", &keywordEmbedder{}, &stubStore{}},
		{"embed error", &keywordEmbedder{err: errors.New("invalid api key")}, &stubStore{results: []domain.SearchResult{{Content: "x"}}}},
		{"store error", &keywordEmbedder{}, &stubStore{queryErr: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSearcher(tt.emb, tt.store, logger.Discard())
			if res := s.Search(context.Background(), "q", 10); len(res) != 0 {
				t.Fatalf("expected no results, got %+v", res)
			}
			if got := s.GetContext(context.Background(), "q", 10); got != "" {
				t.Fatalf("expected empty context, got %q", got)
			}
		})
	}
}

func TestSearch_EndToEndWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	emb := &keywordEmbedder{keywords: []string{"faturamento", "clientes", "fundação"}}
	store := memory.NewStorage()
	l := stubLoader{docs: []domain.Document{
		{Content: "O faturamento foi de 10 milhões.", Metadata: map[string]any{"page": 0}},
		{Content: "A empresa tem 300 clientes ativos.", Metadata: map[string]any{"page": 1}},
		{Content: "Data de fundação: 1998.", Metadata: map[string]any{"page": 2}},
	}}
	if _, err := newTestIngestor(l, IngestOptions{}).Ingest(ctx, "document.pdf", emb, store); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	res := NewSearcher(emb, store, logger.Discard()).Search(ctx, "Qual o faturamento da empresa?", 3)
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	if res[0].Content != "O faturamento foi de 10 milhões." {
		t.Fatalf("expected revenue chunk first, got %q", res[0].Content)
	}
	if res[0].Metadata["page"] != 0 {
		t.Fatalf("metadata lost: %v", res[0].Metadata)
	}
	for i := 1; i < len(res); i++ {
		if res[i-1].Score > res[i].Score {
			t.Fatalf("results not ordered by distance: %+v", res)
		}
	}
}
