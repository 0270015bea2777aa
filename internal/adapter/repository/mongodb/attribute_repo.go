package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const attributeCollectionName = "listing_attributes"

// AttributeRepository stores the EAV rows of listings. Every value is a raw
// string; numeric comparison happens at query time via $convert.
type AttributeRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewAttributeRepository(client *mongo.Client, db *mongo.Database, log *logger.Logger) (*AttributeRepository, error) {
	collection := db.Collection(attributeCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		{Keys: bson.D{{Key: "key", Value: 1}, {Key: "value", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for attributes collection", zap.Error(err))
	}

	return &AttributeRepository{
		client:     client,
		collection: collection,
		logger:     log.Named("AttributeRepository"),
	}, nil
}

// ReplaceForListing rewrites the attribute rows of one listing inside a
// transaction, so a failed edit never leaves a half-written attribute set.
func (r *AttributeRepository) ReplaceForListing(ctx context.Context, listingID string, attrs []domain.AttributeValue) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{"listing_id": listingID}); err != nil {
			return nil, fmt.Errorf("delete old attributes: %w", err)
		}
		if len(attrs) == 0 {
			return nil, nil
		}

		docs := make([]any, len(attrs))
		for i, attr := range attrs {
			docs[i] = attributeDocument{
				ID:        primitive.NewObjectID(),
				ListingID: listingID,
				Key:       attr.Key,
				Value:     attr.Value,
			}
		}
		if _, err := r.collection.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("insert attributes: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		r.logger.Error("Failed to replace attributes", zap.Error(err), zap.String("listing_id", listingID))
		return fmt.Errorf("db transaction failed: %w", err)
	}
	return nil
}

func (r *AttributeRepository) FindByListing(ctx context.Context, listingID string) ([]domain.AttributeValue, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		r.logger.Error("Failed to find attributes", zap.Error(err), zap.String("listing_id", listingID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []attributeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	attrs := make([]domain.AttributeValue, len(docs))
	for i, doc := range docs {
		attrs[i] = domain.AttributeValue{ListingID: doc.ListingID, Key: doc.Key, Value: doc.Value}
	}
	return attrs, nil
}

// FindListingIDs resolves one facet condition to the set of matching listing
// ids. Range bounds compare the stored string numerically; rows whose value
// does not convert are excluded by $convert's onError.
func (r *AttributeRepository) FindListingIDs(ctx context.Context, cond domain.AttributeCondition) (map[string]struct{}, error) {
	filter := bson.M{"key": cond.Alias}

	switch {
	case cond.From != nil || cond.To != nil:
		numeric := bson.M{
			"$convert": bson.M{"input": "$value", "to": "double", "onError": nil, "onNull": nil},
		}
		bounds := bson.A{bson.M{"$ne": bson.A{numeric, nil}}}
		if cond.From != nil {
			bounds = append(bounds, bson.M{"$gte": bson.A{numeric, *cond.From}})
		}
		if cond.To != nil {
			bounds = append(bounds, bson.M{"$lte": bson.A{numeric, *cond.To}})
		}
		filter["$expr"] = bson.M{"$and": bounds}

	case len(cond.AnyOfSubstring) > 0:
		patterns := make(bson.A, len(cond.AnyOfSubstring))
		for i, v := range cond.AnyOfSubstring {
			patterns[i] = bson.M{"value": primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}}
		}
		filter["$or"] = patterns

	case cond.Exact != "":
		filter["value"] = cond.Exact

	default:
		return map[string]struct{}{}, nil
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to query facet", zap.Error(err), zap.String("alias", cond.Alias))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []attributeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	ids := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		ids[doc.ListingID] = struct{}{}
	}
	return ids, nil
}
