package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"pdfchat/internal/domain"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS langchain_pg_collection (
	uuid UUID PRIMARY KEY,
	name VARCHAR NOT NULL UNIQUE,
	cmetadata JSON
);
CREATE TABLE IF NOT EXISTS langchain_pg_embedding (
	id VARCHAR PRIMARY KEY,
	collection_id UUID REFERENCES langchain_pg_collection(uuid) ON DELETE CASCADE,
	embedding VECTOR,
	document VARCHAR,
	cmetadata JSONB
);
CREATE INDEX IF NOT EXISTS ix_cmetadata_gin ON langchain_pg_embedding USING gin (cmetadata jsonb_path_ops);
`

// Config contains connection details for a Postgres+pgvector store.
type Config struct {
	URL        string
	Collection string
}

// Storage keeps records of one named collection in the langchain_pg_* tables.
type Storage struct {
	db           *sql.DB
	collection   string
	collectionID uuid.UUID
}

// Open connects, creates the tables when missing and resolves the collection id.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Collection == "" {
		return nil, errors.New("pgvector: collection name is required")
	}
	db, err := sql.Open("postgres", NormalizeDSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create pgvector schema: %w", err)
	}
	id, err := collectionID(ctx, db, cfg.Collection)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db, collection: cfg.Collection, collectionID: id}, nil
}

// NormalizeDSN turns SQLAlchemy style URLs such as postgresql+psycopg://
// into plain postgresql:// URLs understood by lib/pq.
func NormalizeDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if base, _, found := strings.Cut(scheme, "+"); found {
		scheme = base
	}
	return scheme + "://" + rest
}

func collectionID(ctx context.Context, db *sql.DB, name string) (uuid.UUID, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO langchain_pg_collection (uuid, name, cmetadata) VALUES ($1, $2, '{}') ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	var id uuid.UUID
	if err := db.QueryRowContext(ctx, `SELECT uuid FROM langchain_pg_collection WHERE name = $1`, name).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("lookup collection %s: %w", name, err)
	}
	return id, nil
}

// Upsert writes records in one transaction, replacing rows with the same id.
func (s *Storage) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO langchain_pg_embedding (id, collection_id, embedding, document, cmetadata)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			collection_id = EXCLUDED.collection_id,
			embedding = EXCLUDED.embedding,
			document = EXCLUDED.document,
			cmetadata = EXCLUDED.cmetadata`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		meta, err := json.Marshal(orEmpty(r.Metadata))
		if err != nil {
			return fmt.Errorf("record %s: encode metadata: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, s.collectionID, pgvector.NewVector(r.Embedding), r.Content, string(meta)); err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Query returns the k rows nearest to vector by cosine distance.
func (s *Storage) Query(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT document, cmetadata, embedding <=> $1 AS distance
		FROM langchain_pg_embedding
		WHERE collection_id = $2
		ORDER BY distance ASC
		LIMIT $3`,
		pgvector.NewVector(vector), s.collectionID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			doc  sql.NullString
			meta []byte
			r    domain.SearchResult
		)
		if err := rows.Scan(&doc, &meta, &r.Score); err != nil {
			return nil, err
		}
		r.Content = doc.String
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Reset deletes every row of the collection. The collection itself is kept.
func (s *Storage) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM langchain_pg_embedding WHERE collection_id = $1`, s.collectionID)
	return err
}

func (s *Storage) Close() error { return s.db.Close() }

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
