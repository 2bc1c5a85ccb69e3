package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// maxBatch is the largest number of texts the API accepts per batch call.
const maxBatch = 100

// Embedder embeds text with a Gemini embedding model. Calls are paced by a
// rate limiter so that large documents stay within the provider quota.
type Embedder struct {
	client  *genai.Client
	docs    *genai.EmbeddingModel
	queries *genai.EmbeddingModel
	limiter *rate.Limiter
}

// Config configures the Gemini embedder.
type Config struct {
	APIKey string
	Model  string
	// RequestsPerSec caps API calls; zero or less disables pacing.
	RequestsPerSec float64
}

func NewEmbedder(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "embedding-001"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	docs := client.EmbeddingModel(cfg.Model)
	docs.TaskType = genai.TaskTypeRetrievalDocument
	queries := client.EmbeddingModel(cfg.Model)
	queries.TaskType = genai.TaskTypeRetrievalQuery

	return &Embedder{
		client:  client,
		docs:    docs,
		queries: queries,
		limiter: newLimiter(cfg.RequestsPerSec),
	}, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// EmbedDocuments embeds texts in batches, preserving their order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, maxBatch) {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		b := e.docs.NewBatch()
		for _, t := range batch {
			b.AddContent(genai.Text(t))
		}
		resp, err := e.docs.BatchEmbedContents(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("gemini batch embed: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("gemini batch embed: got %d embeddings for %d texts", len(resp.Embeddings), len(batch))
		}
		for _, emb := range resp.Embeddings {
			out = append(out, toFloat32(emb))
		}
	}
	return out, nil
}

// EmbedQuery embeds a single search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := e.queries.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, errors.New("gemini embed: empty embedding")
	}
	return toFloat32(resp.Embedding), nil
}

func (e *Embedder) Close() error { return e.client.Close() }

func toFloat32(emb *genai.ContentEmbedding) []float32 {
	if emb == nil {
		return nil
	}
	v := make([]float32, len(emb.Values))
	for i, x := range emb.Values {
		v[i] = float32(x)
	}
	return v
}

func batches(texts []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(texts); start += size {
		out = append(out, texts[start:min(start+size, len(texts))])
	}
	return out
}
