package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/schema"
)

// MemoryIndex is a thread-safe, in-process VectorIndex using brute-force
// squared Euclidean distance. It backs tests and deployments without a
// Milvus instance; the corpus is small enough that a linear scan is fine.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []*schema.Document
	byID map[string]*schema.Document
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{byID: make(map[string]*schema.Document)}
}

// Add inserts the documents. Existing IDs are left untouched: stored
// documents are immutable.
func (m *MemoryIndex) Add(_ context.Context, docs []*schema.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		if _, ok := m.byID[doc.ID]; ok {
			continue
		}
		m.byID[doc.ID] = doc
		m.docs = append(m.docs, doc)
	}
	return nil
}

// Get returns the subset of ids present in the index.
func (m *MemoryIndex) Get(_ context.Context, ids []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

// Query scans all documents and returns up to topK nearest neighbors by
// squared Euclidean distance, ascending.
func (m *MemoryIndex) Query(_ context.Context, embedding []float32, topK int, filter *schema.Filter) ([]*schema.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*schema.Match, 0, len(m.docs))
	for _, doc := range m.docs {
		if !filter.Matches(doc.Metadata) {
			continue
		}
		matches = append(matches, &schema.Match{
			ID:       doc.ID,
			Distance: squaredEuclidean(embedding, doc.Embedding),
			Source:   doc.Metadata.Source,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count reports the number of stored documents.
func (m *MemoryIndex) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

// squaredEuclidean matches the L2 metric the Milvus index is configured
// with, so both implementations report distances on the same scale. When
// the vectors differ in length the shorter one is treated as zero-padded.
func squaredEuclidean(a, b []float32) float32 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	var sum float32
	for i := 0; i < longest; i++ {
		var av, bv float32
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		d := av - bv
		sum += d * d
	}
	return sum
}

var _ interfaces.VectorIndex = (*MemoryIndex)(nil)
