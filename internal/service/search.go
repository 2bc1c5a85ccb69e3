package service

import (
	"context"
	"log/slog"
	"strings"

	"pdfchat/internal/domain"
)

// DefaultTopK is the number of chunks retrieved for an answer.
const DefaultTopK = 10

// Searcher answers semantic queries against a vector store.
type Searcher struct {
	embedder domain.Embedder
	store    domain.VectorStore
	log      *slog.Logger
}

func NewSearcher(embedder domain.Embedder, store domain.VectorStore, log *slog.Logger) *Searcher {
	return &Searcher{embedder: embedder, store: store, log: log}
}

// Search returns at most k results, nearest first, in the order the store
// reports them. Embedding and store errors are logged and yield no results.
func (s *Searcher) Search(ctx context.Context, query string, k int) []domain.SearchResult {
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		s.log.Error("search failed", "stage", "embed", "error", err)
		return nil
	}
	res, err := s.store.Query(ctx, vec, k)
	if err != nil {
		s.log.Error("search failed", "stage", "query", "error", err)
		return nil
	}
	if len(res) > k {
		res = res[:k]
	}
	return res
}

// GetContext joins the content of the search results with a blank line.
func (s *Searcher) GetContext(ctx context.Context, query string, k int) string {
	results := s.Search(ctx, query, k)
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, "\n\n")
}
