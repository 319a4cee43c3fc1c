package retrieval

import (
	"context"
	"fmt"
	"math"

	"github.com/storytailor/storytailor/internal/rag/confidence"
	"github.com/storytailor/storytailor/internal/rag/knowledge"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/pkg/logger"
)

// DefaultThreshold is the fact-check verification threshold.
const DefaultThreshold = 0.5

// unknownSource is reported when a document carries no source metadata.
const unknownSource = "unknown"

// Service answers retrieval and fact-check requests against the knowledge
// store. When the store is empty it bootstraps the default corpus before
// the first query.
type Service struct {
	store *knowledge.Store
	log   *logger.Logger
}

// NewService creates a retrieval Service over the given store.
func NewService(store *knowledge.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Retrieve returns up to topK documents relevant to the query, nearest
// first. Empty queries are valid and embed normally.
func (s *Service) Retrieve(ctx context.Context, query string, topK int, filter *schema.Filter) ([]schema.RetrievalResult, error) {
	s.log.Info(fmt.Sprintf("Starting retrieval for query of %d chars, topK=%d", len(query), topK))

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.store.BootstrapDefaults(ctx); err != nil {
			return nil, err
		}
	}

	embedding, err := s.store.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Query(ctx, embedding, topK, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		s.log.Info("No documents found for the query")
		return []schema.RetrievalResult{}, nil
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
	}
	fullDocs, err := s.store.Get(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]schema.RetrievalResult, 0, len(matches))
	for _, match := range matches {
		doc, ok := fullDocs[match.ID]
		if !ok {
			s.log.Warn(fmt.Sprintf("Document %s missing from doc store, skipping", match.ID))
			continue
		}
		distance := match.Distance
		result := schema.RetrievalResult{
			Content:  doc.Text,
			Source:   doc.Metadata.Source,
			Metadata: doc.Metadata,
			Distance: &distance,
		}
		if result.Source == "" {
			result.Source = unknownSource
		}
		results = append(results, result)
	}

	s.log.Info(fmt.Sprintf("Retrieved %d documents", len(results)))
	return results, nil
}

// FactCheck verifies a standalone statement against the knowledge base
// using the single nearest neighbor.
func (s *Service) FactCheck(ctx context.Context, statement string, threshold float64) (schema.FactCheckResult, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	results, err := s.Retrieve(ctx, statement, 1, nil)
	if err != nil {
		return schema.FactCheckResult{}, err
	}
	if len(results) == 0 {
		return schema.FactCheckResult{
			Verified:   false,
			Confidence: 0,
			Message:    "no related information found",
		}, nil
	}

	top := results[0]
	score := round2(confidence.FromNearest(top.Distance))
	result := schema.FactCheckResult{
		Verified:       score >= threshold,
		Confidence:     score,
		Source:         top.Source,
		RelatedContent: top.Content,
		Message:        "not verified",
	}
	if result.Verified {
		result.Message = "verified"
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
