package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/pkg/logger"
)

const cacheKeyPrefix = "storytailor:embed:"

// CachedEmbedder decorates an EmbeddingModel with a Redis cache keyed by the
// hash of the input text. Embeddings are never persisted independently of
// their source document; the cache only avoids recomputation.
type CachedEmbedder struct {
	inner  interfaces.EmbeddingModel
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedEmbedder wraps inner with a Redis cache. A zero ttl means the
// entries do not expire.
func NewCachedEmbedder(inner interfaces.EmbeddingModel, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl, log: log}
}

// Embed returns the cached vector when present, otherwise computes and
// stores it. Cache failures degrade to recomputation, never to an error.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if vector, decodeErr := decodeVector(data); decodeErr == nil {
			return vector, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("embedding cache read failed, recomputing: " + err.Error())
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, encodeVector(vector), c.ttl).Err(); err != nil {
		c.log.Warn("embedding cache write failed: " + err.Error())
	}
	return vector, nil
}

// EmbedBatch applies Embed to each text independently, preserving order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func cacheKey(text string) string {
	digest := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(digest[:])
}

func encodeVector(vector []float32) []byte {
	data := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, errors.New("malformed embedding payload")
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector, nil
}

var _ interfaces.EmbeddingModel = (*CachedEmbedder)(nil)
