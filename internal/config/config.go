package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingEnv is returned when a required environment variable is not set.
var ErrMissingEnv = errors.New("environment variable is not set")

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
	DefaultTopK         = 10
	DefaultPDFPath      = "document.pdf"
)

// GeminiConfig holds configuration for the Google Generative AI provider.
type GeminiConfig struct {
	APIKeyEnv      string  `yaml:"api_key_env"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	APIKey         string  `yaml:"-"`
}

// OpenAIConfig holds configuration for an OpenAI-compatible provider.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	APIKey         string `yaml:"-"`
}

// ProviderConfig selects the embedding and generation provider.
type ProviderConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how pages are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// PGVectorConfig contains connection details for a Postgres+pgvector store.
type PGVectorConfig struct {
	URL string `yaml:"-"`
}

// ChromemConfig points to a local chromem-go database directory.
type ChromemConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string          `yaml:"type"`
	Collection string          `yaml:"-"`
	PGVector   *PGVectorConfig `yaml:"pgvector,omitempty"`
	Chromem    *ChromemConfig  `yaml:"chromem,omitempty"`
	Qdrant     *QdrantConfig   `yaml:"qdrant,omitempty"`
}

// IngestConfig tunes the ingestion run.
type IngestConfig struct {
	PDFPath         string `yaml:"pdf_path"`
	IDStrategy      string `yaml:"id_strategy"`
	ResetCollection bool   `yaml:"reset_collection"`
	BatchSize       int    `yaml:"batch_size"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root application configuration structure.
type Config struct {
	Provider    ProviderConfig    `yaml:"provider"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Ingest      IngestConfig      `yaml:"ingest"`
	TopK        int               `yaml:"top_k"`
	Log         LogConfig         `yaml:"log"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates that every required value is present.
// The YAML file is RAG_CONFIG when set, otherwise ./config.yaml if it exists.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for tools that never reach a provider or a store.
func Read() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	path := os.Getenv("RAG_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadFile reads a config from a specified path. If the file does not exist, returns defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no YAML file is present.
func Default() *Config {
	cfg := &Config{
		Provider:    ProviderConfig{Type: "gemini"},
		Chunker:     ChunkerConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap},
		VectorStore: VectorStoreConfig{Type: "pgvector"},
		Ingest:      IngestConfig{PDFPath: DefaultPDFPath, IDStrategy: "sequential", BatchSize: 100},
		TopK:        DefaultTopK,
		Log:         LogConfig{Level: "info", Format: "text"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = DefaultChunkSize
	}
	if cfg.Chunker.ChunkOverlap < 0 {
		cfg.Chunker.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Ingest.PDFPath == "" {
		cfg.Ingest.PDFPath = DefaultPDFPath
	}
	if cfg.Ingest.IDStrategy == "" {
		cfg.Ingest.IDStrategy = "sequential"
	}
	if cfg.Ingest.BatchSize <= 0 {
		cfg.Ingest.BatchSize = 100
	}
	switch cfg.Provider.Type {
	case "gemini", "":
		cfg.Provider.Type = "gemini"
		if cfg.Provider.Gemini == nil {
			cfg.Provider.Gemini = &GeminiConfig{}
		}
		g := cfg.Provider.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GOOGLE_API_KEY"
		}
		if g.EmbeddingModel == "" {
			g.EmbeddingModel = "embedding-001"
		}
		if g.ChatModel == "" {
			g.ChatModel = "gemini-1.5-flash"
		}
		if g.RequestsPerSec == 0 {
			g.RequestsPerSec = 10
		}
	case "openai":
		if cfg.Provider.OpenAI == nil {
			cfg.Provider.OpenAI = &OpenAIConfig{}
		}
		o := cfg.Provider.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.EmbeddingModel == "" {
			o.EmbeddingModel = "text-embedding-3-small"
		}
		if o.ChatModel == "" {
			o.ChatModel = "gpt-4o-mini"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 60
		}
	}
	switch cfg.VectorStore.Type {
	case "pgvector", "":
		cfg.VectorStore.Type = "pgvector"
		if cfg.VectorStore.PGVector == nil {
			cfg.VectorStore.PGVector = &PGVectorConfig{}
		}
	case "chromem":
		if cfg.VectorStore.Chromem == nil {
			cfg.VectorStore.Chromem = &ChromemConfig{}
		}
		if cfg.VectorStore.Chromem.Path == "" {
			cfg.VectorStore.Chromem.Path = "./vectors.db"
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnv copies secrets and deployment values from the environment.
func applyEnv(cfg *Config) {
	if g := cfg.Provider.Gemini; g != nil {
		g.APIKey = os.Getenv(g.APIKeyEnv)
	}
	if o := cfg.Provider.OpenAI; o != nil {
		o.APIKey = os.Getenv(o.APIKeyEnv)
	}
	cfg.VectorStore.Collection = os.Getenv("PGVECTOR_COLLECTION")
	if p := cfg.VectorStore.PGVector; p != nil {
		p.URL = os.Getenv("PGVECTOR_URL")
	}
	cfg.Ingest.PDFPath = getEnv("PDF_PATH", cfg.Ingest.PDFPath)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if v := os.Getenv("RESET_COLLECTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Ingest.ResetCollection = b
		}
	}
}

// Validate checks that every value required by the selected backends is set.
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case "gemini":
		if c.Provider.Gemini == nil {
			return missing("GOOGLE_API_KEY")
		}
		if c.Provider.Gemini.APIKey == "" {
			return missing(c.Provider.Gemini.APIKeyEnv)
		}
	case "openai":
		if c.Provider.OpenAI == nil {
			return missing("OPENAI_API_KEY")
		}
		if c.Provider.OpenAI.APIKey == "" {
			return missing(c.Provider.OpenAI.APIKeyEnv)
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider.Type)
	}
	switch c.VectorStore.Type {
	case "pgvector":
		if c.VectorStore.PGVector == nil || c.VectorStore.PGVector.URL == "" {
			return missing("PGVECTOR_URL")
		}
	case "chromem", "qdrant", "memory":
	default:
		return fmt.Errorf("unknown vector store: %s", c.VectorStore.Type)
	}
	if c.VectorStore.Collection == "" {
		return missing("PGVECTOR_COLLECTION")
	}
	switch c.Ingest.IDStrategy {
	case "sequential", "content":
	default:
		return fmt.Errorf("unknown id strategy: %s", c.Ingest.IDStrategy)
	}
	if c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	}
	return nil
}

// Describe lists the required values with secrets masked, for startup diagnostics.
func (c *Config) Describe() []string {
	var out []string
	switch {
	case c.Provider.Type == "gemini" && c.Provider.Gemini != nil:
		out = append(out, c.Provider.Gemini.APIKeyEnv+": "+mask(c.Provider.Gemini.APIKey))
	case c.Provider.Type == "openai" && c.Provider.OpenAI != nil:
		out = append(out, c.Provider.OpenAI.APIKeyEnv+": "+mask(c.Provider.OpenAI.APIKey))
	}
	if c.VectorStore.PGVector != nil {
		out = append(out, "PGVECTOR_URL: "+c.VectorStore.PGVector.URL)
	}
	out = append(out, "PGVECTOR_COLLECTION: "+c.VectorStore.Collection)
	return out
}

func missing(name string) error {
	return fmt.Errorf("%s: %w", name, ErrMissingEnv)
}

func mask(secret string) string {
	if len(secret) <= 10 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:10] + "..."
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
