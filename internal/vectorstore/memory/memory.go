package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine distance.
// Contents live only as long as the process.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	records   map[string]domain.Record
}

func NewStorage() *Storage { return &Storage{records: make(map[string]domain.Record)} }

// Upsert inserts records or replaces those with the same id.
func (s *Storage) Upsert(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s: empty embedding", r.ID)
		}
		if s.dimension == 0 {
			s.dimension = len(r.Embedding)
		}
		if len(r.Embedding) != s.dimension {
			return fmt.Errorf("record %s: %w", r.ID, vectorstore.ErrDimensionMismatch)
		}
	}
	for _, r := range records {
		if _, ok := s.records[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		r.Metadata = maps.Clone(r.Metadata)
		s.records[r.ID] = r
	}
	return nil
}

// Query returns the k nearest records, nearest first.
func (s *Storage) Query(_ context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}
	results := make([]domain.SearchResult, 0, len(s.order))
	for _, id := range s.order {
		r := s.records[id]
		results = append(results, domain.SearchResult{
			Content:  r.Content,
			Metadata: maps.Clone(r.Metadata),
			Score:    vectorstore.CosineDistance(vector, r.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len reports the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Reset drops every record.
func (s *Storage) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = 0
	s.order = nil
	s.records = make(map[string]domain.Record)
	return nil
}

func (s *Storage) Close() error { return nil }
