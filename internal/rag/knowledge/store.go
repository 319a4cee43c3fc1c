package knowledge

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/storytailor/storytailor/internal/errs"
	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/pkg/logger"
)

// Store is the knowledge base adapter: it owns the embedding function
// attached to the collection, the vector index, the document store and the
// built-in default corpus.
//
// Reads may run in parallel; additions are serialized behind the mutex
// because document IDs are derived from the current collection size.
type Store struct {
	mu       sync.Mutex
	embedder interfaces.EmbeddingModel
	index    interfaces.VectorIndex
	docs     interfaces.DocStore
	log      *logger.Logger
}

// NewStore creates a Store over the given embedder, vector index and doc
// store.
func NewStore(embedder interfaces.EmbeddingModel, index interfaces.VectorIndex, docs interfaces.DocStore, log *logger.Logger) *Store {
	return &Store{embedder: embedder, index: index, docs: docs, log: log}
}

// AddDocuments embeds and stores the documents. IDs are doc_<n> where n
// continues from the current collection size. A metadata list may be nil;
// when given, its Source field is overwritten by the sources list.
func (s *Store) AddDocuments(ctx context.Context, documents, sources []string, metas []schema.Metadata) error {
	if len(documents) != len(sources) {
		return errs.Validation("length of documents and sources must match")
	}
	if metas != nil && len(metas) != len(documents) {
		return errs.Validation("length of metadatas must match documents")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.index.Count(ctx)
	if err != nil {
		return err
	}

	docs := make([]*schema.Document, len(documents))
	for i, text := range documents {
		meta := schema.Metadata{}
		if metas != nil {
			meta = metas[i]
		}
		meta.Source = sources[i]
		docs[i] = &schema.Document{
			ID:       fmt.Sprintf("doc_%d", count+int64(i)),
			Text:     text,
			Metadata: meta,
		}
	}
	return s.store(ctx, docs)
}

// BootstrapDefaults inserts the default corpus unless any of its fixed IDs
// already exist. Safe to call repeatedly.
func (s *Store) BootstrapDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := defaultDocuments()
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	existing, err := s.index.Get(ctx, ids)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	s.log.Info(fmt.Sprintf("Bootstrapping default corpus with %d documents", len(docs)))
	return s.store(ctx, docs)
}

// Count reports the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.index.Count(ctx)
}

// Get returns the full documents for the given IDs, keyed by ID.
func (s *Store) Get(ctx context.Context, ids []string) (map[string]*schema.Document, error) {
	return s.docs.Get(ctx, ids)
}

// EmbedQuery embeds a query text with the collection's attached embedder.
func (s *Store) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embedder.Embed(ctx, query)
}

// Query returns up to topK nearest neighbors for the embedding.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, filter *schema.Filter) ([]*schema.Match, error) {
	return s.index.Query(ctx, embedding, topK, filter)
}

// store embeds the documents and writes the doc store and vector index
// concurrently. Callers hold the mutex.
func (s *Store) store(ctx context.Context, docs []*schema.Document) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return errs.Internal("failed to embed documents", err)
	}
	for i, doc := range docs {
		doc.Embedding = vectors[i]
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.docs.Add(gCtx, docs)
	})
	eg.Go(func() error {
		return s.index.Add(gCtx, docs)
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	s.log.Info(fmt.Sprintf("Stored %d documents", len(docs)))
	return nil
}
