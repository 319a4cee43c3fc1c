package interfaces

import (
	"context"

	"github.com/storytailor/storytailor/internal/rag/schema"
)

// EmbeddingModel converts text into fixed-dimension vectors.
type EmbeddingModel interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates one embedding per input text, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores document embeddings and answers nearest-neighbor
// queries. Implementations must be safe for concurrent reads.
type VectorIndex interface {
	// Add inserts the documents (IDs, embeddings and source field).
	Add(ctx context.Context, docs []*schema.Document) error
	// Get returns the subset of the given IDs that exist in the index.
	Get(ctx context.Context, ids []string) ([]string, error)
	// Query returns up to topK nearest neighbors ordered by ascending
	// distance, optionally restricted by a metadata filter.
	Query(ctx context.Context, embedding []float32, topK int, filter *schema.Filter) ([]*schema.Match, error)
	// Count reports the number of stored documents.
	Count(ctx context.Context) (int64, error)
}

// DocStore keeps the full document content and metadata, addressed by ID.
type DocStore interface {
	Add(ctx context.Context, docs []*schema.Document) error
	Get(ctx context.Context, ids []string) (map[string]*schema.Document, error)
}
