package docstore

import (
	"context"
	"sync"

	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/schema"
)

// MemoryStore is a thread-safe, in-memory DocStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*schema.Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*schema.Document)}
}

// Add stores the documents by ID. Existing IDs are left untouched.
func (s *MemoryStore) Add(_ context.Context, docs []*schema.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if _, ok := s.docs[doc.ID]; ok {
			continue
		}
		s.docs[doc.ID] = doc
	}
	return nil
}

// Get returns the documents found for the given IDs, keyed by ID.
func (s *MemoryStore) Get(_ context.Context, ids []string) (map[string]*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*schema.Document)
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			result[id] = doc
		}
	}
	return result, nil
}

var _ interfaces.DocStore = (*MemoryStore)(nil)
