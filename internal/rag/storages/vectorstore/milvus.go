package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/storytailor/storytailor/internal/errs"
	"github.com/storytailor/storytailor/internal/rag/embeddings"
	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/pkg/logger"
)

const (
	// Field names of the Milvus collection schema.
	FieldID        = "id"
	FieldEmbedding = "embedding"
	FieldSource    = "source"
	FieldCategory  = "category"
	FieldTheme     = "theme"
)

// MilvusIndex is a Milvus-backed VectorIndex. Distances use the L2 metric
// (squared Euclidean in Milvus), matching MemoryIndex.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	collection string
}

// NewMilvusIndex connects to Milvus and ensures the collection exists. An
// empty address is a configuration error, distinct from a dial failure.
func NewMilvusIndex(ctx context.Context, address, collection string, log *logger.Logger) (*MilvusIndex, error) {
	if address == "" {
		return nil, errs.Configuration("milvus address is not configured")
	}

	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, errs.Upstream("failed to connect to milvus", err)
	}

	idx := &MilvusIndex{log: log, client: c, collection: collection}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ensureCollection creates and loads the collection on first use.
func (s *MilvusIndex) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return errs.Upstream("failed to check milvus collection", err)
	}
	if !has {
		collSchema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "StoryTailor knowledge base",
			Fields: []*entity.Field{
				entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true),
				entity.NewField().WithName(FieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256),
				entity.NewField().WithName(FieldCategory).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64),
				entity.NewField().WithName(FieldTheme).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64),
				entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(embeddings.Dimension)),
			},
		}
		if err := s.client.CreateCollection(ctx, collSchema, 1); err != nil {
			return errs.Upstream("failed to create milvus collection", err)
		}

		index, err := entity.NewIndexIvfFlat(entity.L2, 128)
		if err != nil {
			return errs.Internal("failed to build milvus index definition", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, index, false); err != nil {
			return errs.Upstream("failed to create milvus index", err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return errs.Upstream("failed to load milvus collection", err)
	}
	return nil
}

// Add inserts the documents as one batch and flushes so that subsequent
// counts and searches observe them.
func (s *MilvusIndex) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	sources := make([]string, len(docs))
	categories := make([]string, len(docs))
	themes := make([]string, len(docs))
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		sources[i] = doc.Metadata.Source
		categories[i] = doc.Metadata.Category
		themes[i] = doc.Metadata.Theme
		vectors[i] = doc.Embedding
	}

	s.log.Info(fmt.Sprintf("Inserting %d documents into milvus collection %s", len(docs), s.collection))
	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldSource, sources),
		entity.NewColumnVarChar(FieldCategory, categories),
		entity.NewColumnVarChar(FieldTheme, themes),
		entity.NewColumnFloatVector(FieldEmbedding, embeddings.Dimension, vectors),
	)
	if err != nil {
		return errs.Upstream("failed to insert into milvus", err)
	}

	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return errs.Upstream("failed to flush milvus collection", err)
	}
	return nil
}

// Get returns the subset of ids present in the collection.
func (s *MilvusIndex) Get(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	expr := fmt.Sprintf("%s in [%s]", FieldID, strings.Join(quoted, ", "))

	rs, err := s.client.Query(ctx, s.collection, nil, expr, []string{FieldID})
	if err != nil {
		return nil, errs.Upstream("failed to query milvus by id", err)
	}

	idCol, ok := rs.GetColumn(FieldID).(*entity.ColumnVarChar)
	if !ok {
		return nil, nil
	}
	return idCol.Data(), nil
}

// Query performs a vector search with an optional metadata filter.
func (s *MilvusIndex) Query(ctx context.Context, embedding []float32, topK int, filter *schema.Filter) ([]*schema.Match, error) {
	searchParams, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, errs.Internal("failed to build milvus search params", err)
	}

	expr := buildFilterExpression(filter)
	results, err := s.client.Search(
		ctx, s.collection, []string{}, expr,
		[]string{FieldID, FieldSource},
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.L2, topK, searchParams,
	)
	if err != nil {
		return nil, errs.Upstream("failed to search milvus", err)
	}

	var matches []*schema.Match
	for _, res := range results {
		var idData, sourceData []string
		for _, field := range res.Fields {
			col, ok := field.(*entity.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case FieldID:
				idData = col.Data()
			case FieldSource:
				sourceData = col.Data()
			}
		}
		if idData == nil {
			s.log.Warn("milvus search result is missing the id field, skipping")
			continue
		}
		for i := 0; i < res.ResultCount; i++ {
			match := &schema.Match{ID: idData[i], Distance: res.Scores[i]}
			if sourceData != nil {
				match.Source = sourceData[i]
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// Count reports the collection row count.
func (s *MilvusIndex) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, errs.Upstream("failed to read milvus collection statistics", err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, errs.Internal("unexpected milvus row_count", err)
	}
	return count, nil
}

// Close releases the underlying client connection.
func (s *MilvusIndex) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func buildFilterExpression(filter *schema.Filter) string {
	if filter == nil {
		return ""
	}
	var clauses []string
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("%s == %s", FieldCategory, strconv.Quote(filter.Category)))
	}
	if filter.Theme != "" {
		clauses = append(clauses, fmt.Sprintf("%s == %s", FieldTheme, strconv.Quote(filter.Theme)))
	}
	return strings.Join(clauses, " && ")
}

var _ interfaces.VectorIndex = (*MilvusIndex)(nil)
