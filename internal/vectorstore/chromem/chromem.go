package chromem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"pdfchat/internal/domain"
)

// Config points to a local chromem-go database directory. An empty Path
// keeps the database in memory.
type Config struct {
	Path       string
	Compress   bool
	Collection string
}

// Storage is an embedded vector store backed by chromem-go.
type Storage struct {
	db         *chromem.DB
	name       string
	collection *chromem.Collection
}

// errNoEmbeddingFunc is returned if chromem is ever asked to embed text itself.
var errNoEmbeddingFunc = errors.New("chromem: records must carry precomputed embeddings")

func noEmbedding(context.Context, string) ([]float32, error) { return nil, errNoEmbeddingFunc }

func Open(cfg Config) (*Storage, error) {
	if cfg.Collection == "" {
		return nil, errors.New("chromem: collection name is required")
	}
	var (
		db  *chromem.DB
		err error
	)
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db %s: %w", cfg.Path, err)
		}
	}
	c, err := db.GetOrCreateCollection(cfg.Collection, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}
	return &Storage{db: db, name: cfg.Collection, collection: c}, nil
}

func (s *Storage) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		meta, err := encodeMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		docs[i] = chromem.Document{
			ID:        r.ID,
			Metadata:  meta,
			Embedding: r.Embedding,
			Content:   r.Content,
		}
	}
	return s.collection.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Query returns up to k documents. chromem reports cosine similarity; it is
// converted to a distance so that lower scores are nearer.
func (s *Storage) Query(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	n := min(k, s.collection.Count())
	if n <= 0 {
		return nil, nil
	}
	res, err := s.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, len(res))
	for i, r := range res {
		out[i] = domain.SearchResult{
			Content:  r.Content,
			Metadata: decodeMetadata(r.Metadata),
			Score:    1 - float64(r.Similarity),
		}
	}
	return out, nil
}

// Reset drops and recreates the collection.
func (s *Storage) Reset(context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection %s: %w", s.name, err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("recreate collection %s: %w", s.name, err)
	}
	s.collection = c
	return nil
}

// Close is a no-op; persistent databases are written on every change.
func (s *Storage) Close() error { return nil }

// chromem metadata is string-only, so every value is stored as JSON.
func encodeMetadata(meta map[string]any) (map[string]string, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode metadata %s: %w", k, err)
		}
		out[k] = string(b)
	}
	return out, nil
}

func decodeMetadata(meta map[string]string) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, raw := range meta {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[k] = v
	}
	return out
}
