package mongodb

import (
	"context"
	"errors"
	"fmt"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const catalogCollectionName = "catalog"

// CatalogRepository reads the flat catalog node collection. The tree is
// seeded and edited out of band; this service only consumes it.
type CatalogRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCatalogRepository(db *mongo.Database, log *logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		collection: db.Collection(catalogCollectionName),
		logger:     log.Named("CatalogRepository"),
	}
}

func (r *CatalogRepository) GetAll(ctx context.Context) ([]*catalog.CatalogNode, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to load catalog", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*catalogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	nodes := make([]*catalog.CatalogNode, len(docs))
	for i, doc := range docs {
		nodes[i] = doc.toDomainNode()
	}
	return nodes, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.CatalogNode, error) {
	var doc catalogDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		r.logger.Error("Failed to load catalog node", zap.Error(err), zap.String("catalog_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomainNode(), nil
}
