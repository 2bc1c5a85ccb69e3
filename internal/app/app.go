package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	embgemini "pdfchat/internal/embedding/gemini"
	embopenai "pdfchat/internal/embedding/openai"
	"pdfchat/internal/llm"
	llmgemini "pdfchat/internal/llm/gemini"
	llmopenai "pdfchat/internal/llm/openai"
	"pdfchat/internal/loader"
	"pdfchat/internal/service"
	"pdfchat/internal/vectorstore"
	"pdfchat/internal/vectorstore/chromem"
	"pdfchat/internal/vectorstore/memory"
	"pdfchat/internal/vectorstore/pgvector"
	"pdfchat/internal/vectorstore/qdrant"
)

// NewIngestor assembles the load and split stages of ingestion.
func NewIngestor(cfg *config.Config, log *slog.Logger) (*service.Ingestor, error) {
	ids, err := service.IDStrategy(cfg.Ingest.IDStrategy)
	if err != nil {
		return nil, err
	}
	return service.NewIngestor(
		loader.NewPDFLoader(log),
		chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap),
		service.IngestOptions{IDs: ids, BatchSize: cfg.Ingest.BatchSize, ResetCollection: cfg.Ingest.ResetCollection},
		log,
	), nil
}

// NewEmbedder builds the embedding client of the configured provider.
func NewEmbedder(ctx context.Context, cfg *config.Config) (domain.Embedder, error) {
	switch cfg.Provider.Type {
	case "gemini":
		g := cfg.Provider.Gemini
		if g == nil {
			return nil, fmt.Errorf("gemini provider config missing")
		}
		e, err := embgemini.NewEmbedder(ctx, embgemini.Config{
			APIKey:         g.APIKey,
			Model:          g.EmbeddingModel,
			RequestsPerSec: g.RequestsPerSec,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai":
		o := cfg.Provider.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai provider config missing")
		}
		c, err := embopenai.NewClient(embopenai.Config{
			BaseURL: o.BaseURL,
			APIKey:  o.APIKey,
			Model:   o.EmbeddingModel,
			Timeout: time.Duration(o.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider.Type)
	}
}

// NewModel builds the chat model of the configured provider behind a circuit breaker.
func NewModel(ctx context.Context, cfg *config.Config, log *slog.Logger) (*llm.Breaker, error) {
	var model domain.LanguageModel
	switch cfg.Provider.Type {
	case "gemini":
		g := cfg.Provider.Gemini
		if g == nil {
			return nil, fmt.Errorf("gemini provider config missing")
		}
		c, err := llmgemini.NewClient(ctx, llmgemini.Config{APIKey: g.APIKey, Model: g.ChatModel})
		if err != nil {
			return nil, err
		}
		model = c
	case "openai":
		o := cfg.Provider.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai provider config missing")
		}
		c, err := llmopenai.NewClient(llmopenai.Config{
			BaseURL: o.BaseURL,
			APIKey:  o.APIKey,
			Model:   o.ChatModel,
			Timeout: time.Duration(o.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		model = c
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider.Type)
	}
	return llm.NewBreaker(model, llm.DefaultBreakerSettings(cfg.Provider.Type), log), nil
}

// NewStore opens the configured vector store for the configured collection.
func NewStore(ctx context.Context, cfg *config.Config) (vectorstore.Storage, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "pgvector":
		if vs.PGVector == nil {
			return nil, fmt.Errorf("pgvector config missing")
		}
		s, err := pgvector.Open(ctx, pgvector.Config{URL: vs.PGVector.URL, Collection: vs.Collection})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "chromem":
		if vs.Chromem == nil {
			return nil, fmt.Errorf("chromem config missing")
		}
		s, err := chromem.Open(chromem.Config{Path: vs.Chromem.Path, Compress: vs.Chromem.Compress, Collection: vs.Collection})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "qdrant":
		if vs.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        vs.Qdrant.URL,
			APIKey:     vs.Qdrant.APIKey,
			Collection: vs.Collection,
			Timeout:    time.Duration(vs.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vs.Type)
	}
}

// Close releases every value holding resources, logging failures.
func Close(log *slog.Logger, values ...any) {
	for _, v := range values {
		c, ok := v.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			log.Warn("close failed", "type", fmt.Sprintf("%T", v), "error", err)
		}
	}
}
