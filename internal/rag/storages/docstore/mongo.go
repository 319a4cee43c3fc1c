package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storytailor/storytailor/internal/errs"
	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/pkg/logger"
)

// mongoDocument is the persisted shape of a knowledge document. Embeddings
// are not stored here; the vector index owns them.
type mongoDocument struct {
	ID       string            `bson:"_id"`
	Text     string            `bson:"text"`
	Source   string            `bson:"source"`
	Category string            `bson:"category,omitempty"`
	Theme    string            `bson:"theme,omitempty"`
	Extra    map[string]string `bson:"extra,omitempty"`
}

// MongoStore is a MongoDB-backed DocStore.
type MongoStore struct {
	collection *mongo.Collection
	log        *logger.Logger
}

// NewMongoStore connects to MongoDB and returns a store over the given
// database's "documents" collection. An empty URI is a configuration error,
// distinct from a dial failure.
func NewMongoStore(ctx context.Context, uri, database string, log *logger.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errs.Configuration("mongo uri is not configured")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Upstream("failed to connect to mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errs.Upstream("failed to ping mongo", err)
	}

	return &MongoStore{
		collection: client.Database(database).Collection("documents"),
		log:        log,
	}, nil
}

// Add persists the documents. Duplicate IDs are ignored: stored documents
// are immutable.
func (s *MongoStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]interface{}, len(docs))
	for i, doc := range docs {
		rows[i] = mongoDocument{
			ID:       doc.ID,
			Text:     doc.Text,
			Source:   doc.Metadata.Source,
			Category: doc.Metadata.Category,
			Theme:    doc.Metadata.Theme,
			Extra:    doc.Metadata.Extra,
		}
	}

	// Unordered insert keeps going past duplicate-key rejections.
	_, err := s.collection.InsertMany(ctx, rows, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errs.Upstream("failed to insert documents into mongo", err)
	}
	return nil
}

// Get returns the documents found for the given IDs, keyed by ID.
func (s *MongoStore) Get(ctx context.Context, ids []string) (map[string]*schema.Document, error) {
	if len(ids) == 0 {
		return map[string]*schema.Document{}, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.Upstream("failed to query documents from mongo", err)
	}
	defer cursor.Close(ctx)

	result := make(map[string]*schema.Document)
	for cursor.Next(ctx) {
		var row mongoDocument
		if err := cursor.Decode(&row); err != nil {
			return nil, errs.Upstream("failed to decode mongo document", err)
		}
		result[row.ID] = &schema.Document{
			ID:   row.ID,
			Text: row.Text,
			Metadata: schema.Metadata{
				Source:   row.Source,
				Category: row.Category,
				Theme:    row.Theme,
				Extra:    row.Extra,
			},
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, errs.Upstream("failed to iterate mongo documents", err)
	}
	return result, nil
}

var _ interfaces.DocStore = (*MongoStore)(nil)
