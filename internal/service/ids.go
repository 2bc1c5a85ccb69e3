package service

import (
	"fmt"
	"strconv"

	"github.com/minio/highwayhash"

	"pdfchat/internal/domain"
)

// IDFunc derives the store id of the i-th chunk of an ingestion run.
type IDFunc func(i int, chunk domain.Chunk) string

// SequentialIDs numbers chunks in ingestion order: doc-0, doc-1, ...
// Re-ingesting a different document into the same collection overwrites
// records with the same index.
func SequentialIDs(i int, _ domain.Chunk) string {
	return "doc-" + strconv.Itoa(i)
}

var contentKey = []byte("pdfchat/content-addressed-ids/v1") // 32 bytes

// ContentIDs hashes the chunk source, page, position and text so that
// re-ingesting the same document rewrites the same records and a different
// document never collides with it.
func ContentIDs(_ int, chunk domain.Chunk) string {
	data := fmt.Sprintf("%v|%v|%d|%s", chunk.Metadata["source"], chunk.Metadata["page"], chunk.Index, chunk.Content)
	return fmt.Sprintf("doc-%016x", highwayhash.Sum64([]byte(data), contentKey))
}

// IDStrategy returns the IDFunc registered under name.
func IDStrategy(name string) (IDFunc, error) {
	switch name {
	case "sequential", "":
		return SequentialIDs, nil
	case "content":
		return ContentIDs, nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %s", name)
	}
}
