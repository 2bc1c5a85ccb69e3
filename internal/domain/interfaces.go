package domain

import "context"

// Document is a single page of text loaded from a source file.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Chunk is a bounded window of a page used as the unit of retrieval.
type Chunk struct {
	Content  string
	Metadata map[string]any
	// Index is the position of the chunk within its page.
	Index int
}

// Record is what gets written to a vector store.
type Record struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  map[string]any
}

// SearchResult represents a matching record with its cosine distance.
// Lower scores are nearer.
type SearchResult struct {
	Content  string
	Metadata map[string]any
	Score    float64
}

// Loader reads a file into page-level documents.
type Loader interface {
	Load(ctx context.Context, path string) ([]Document, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Split(documents []Document) []Chunk
}

// Embedder converts free text into a numeric vector representation.
// Documents and queries are embedded separately since providers may
// optimise the vector for each task.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists records in a collection and supports similarity search.
type VectorStore interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, k int) ([]SearchResult, error)
}

// Resetter is implemented by stores that can drop every record of their collection.
type Resetter interface {
	Reset(ctx context.Context) error
}

// LanguageModel produces a completion for a fully rendered prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
