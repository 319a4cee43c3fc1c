package embeddings

import (
	"context"
	"crypto/sha256"
	"strings"
	"unicode/utf8"

	"github.com/storytailor/storytailor/internal/rag/interfaces"
)

// Dimension is the fixed length of every embedding vector.
const Dimension = 384

// vocabulary is the curated set of children's story terms whose presence is
// encoded as the leading features of the vector. Order is significant: each
// term owns one slot.
var vocabulary = []string{
	"brave", "rabbit", "friend", "friendship", "adventure",
	"forest", "animal", "family", "love", "fear",
	"courage", "nature", "lesson", "learning", "failure",
	"success", "help", "together", "respect", "understanding",
}

// HashEmbedder is a local, deterministic embedding function: keyword
// presence features, two length features, and a SHA-256 digest as padding.
// It performs no I/O and supplies no semantic generalization beyond its
// vocabulary; it stands in for a learned embedding model.
type HashEmbedder struct{}

// NewHashEmbedder creates a HashEmbedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Embed converts a single text into a vector of exactly Dimension floats.
// Identical input always yields an identical vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	features := make([]float32, 0, Dimension)

	// Keyword presence features.
	for _, keyword := range vocabulary {
		if strings.Contains(normalized, keyword) {
			features = append(features, 1.0)
		} else {
			features = append(features, 0.0)
		}
	}

	// Length features, clamped to [0,1].
	charCount := float32(utf8.RuneCountInString(normalized))
	wordCount := float32(len(strings.Fields(normalized)))
	features = append(features, min32(charCount/100, 1.0))
	features = append(features, min32(wordCount/20, 1.0))

	// Hash features: deterministic padding without semantic meaning.
	digest := sha256.Sum256([]byte(normalized))
	for _, b := range digest {
		features = append(features, float32(b)/255.0)
	}

	// Pad with zeros up to the fixed dimension.
	for len(features) < Dimension {
		features = append(features, 0.0)
	}
	return features[:Dimension], nil
}

// EmbedBatch applies Embed to each text independently, preserving order.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

var _ interfaces.EmbeddingModel = (*HashEmbedder)(nil)
