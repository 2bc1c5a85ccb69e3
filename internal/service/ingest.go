package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pdfchat/internal/domain"
)

// IngestReport summarises an ingestion run.
type IngestReport struct {
	Chunks  int
	Written int
}

// IngestOptions tunes how chunks are written.
type IngestOptions struct {
	IDs             IDFunc
	BatchSize       int
	ResetCollection bool
}

// Ingestor turns a PDF into records of a vector store.
type Ingestor struct {
	loader  domain.Loader
	chunker domain.Chunker
	opts    IngestOptions
	log     *slog.Logger
}

func NewIngestor(loader domain.Loader, chunker domain.Chunker, opts IngestOptions, log *slog.Logger) *Ingestor {
	if opts.IDs == nil {
		opts.IDs = SequentialIDs
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &Ingestor{loader: loader, chunker: chunker, opts: opts, log: log}
}

// Ingest loads, chunks, embeds and stores the PDF at path.
// A PDF without text is a no-op: neither the embedder nor the store is called.
func (s *Ingestor) Ingest(ctx context.Context, path string, embedder domain.Embedder, store domain.VectorStore) (IngestReport, error) {
	chunks, err := s.Chunks(ctx, path)
	if err != nil {
		return IngestReport{}, err
	}
	return s.Index(ctx, chunks, embedder, store)
}

// Chunks loads the PDF and splits it. Unreadable files yield no chunks;
// only cancellation is reported as an error.
func (s *Ingestor) Chunks(ctx context.Context, path string) ([]domain.Chunk, error) {
	docs, err := s.loader.Load(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.log.Warn("could not load document, treating it as empty", "path", path, "error", err)
		return nil, nil
	}
	chunks := s.chunker.Split(docs)
	for i := range chunks {
		chunks[i].Metadata = cleanMetadata(chunks[i].Metadata)
	}
	s.log.Info("document split", "path", path, "pages", len(docs), "chunks", len(chunks))
	return chunks, nil
}

// Index embeds every chunk and upserts the records in batches. All vectors
// are computed before the first write. A failed batch is returned as is;
// batches already written stay in the store.
func (s *Ingestor) Index(ctx context.Context, chunks []domain.Chunk, embedder domain.Embedder, store domain.VectorStore) (IngestReport, error) {
	report := IngestReport{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return report, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]domain.Record, len(chunks))
	for i, ch := range chunks {
		records[i] = domain.Record{
			ID:        s.opts.IDs(i, ch),
			Embedding: vectors[i],
			Content:   ch.Content,
			Metadata:  ch.Metadata,
		}
	}

	if s.opts.ResetCollection {
		r, ok := store.(domain.Resetter)
		if !ok {
			return report, errors.New("vector store does not support reset")
		}
		if err := r.Reset(ctx); err != nil {
			return report, fmt.Errorf("reset collection: %w", err)
		}
		s.log.Info("collection reset")
	}

	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(records))
		if err := store.Upsert(ctx, records[start:end]); err != nil {
			return report, fmt.Errorf("upsert records %d-%d: %w", start, end-1, err)
		}
		report.Written = end
		s.log.Debug("batch written", "from", start, "to", end-1)
	}
	return report, nil
}

// cleanMetadata drops nil values and empty strings.
func cleanMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}
