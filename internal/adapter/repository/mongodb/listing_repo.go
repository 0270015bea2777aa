package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist; the service still works without them.
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := fromDomainListing(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	listing.ID = doc.ID.Hex()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := fromDomainListing(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return errors.New("cannot update listing without id")
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		r.logger.Error("Failed to update listing", zap.Error(err), zap.String("listing_id", listing.ID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	docID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to find listing by id", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomainListing(), nil
}

// FindByQuery runs one compiled predicate. The total is counted over the same
// filter that pages the results, so pagination and total never diverge.
func (r *ListingRepository) FindByQuery(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, int64, error) {
	filter, err := buildListingFilter(q)
	if err != nil {
		return nil, 0, err
	}
	if filter == nil {
		// An empty non-nil id set matches nothing.
		return []*domain.Listing{}, 0, nil
	}

	findOptions := options.Find().SetSort(sortSpec(q.Sort))
	if !q.SkipPagination {
		if q.Limit > 0 {
			findOptions.SetLimit(q.Limit)
		}
		if q.Offset > 0 {
			findOptions.SetSkip(q.Offset)
		}
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}

	listings := make([]*domain.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = doc.toDomainListing()
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return listings, total, nil
}

// buildListingFilter compiles a ListingQuery into a bson filter. A nil return
// with a nil error means the query can never match.
func buildListingFilter(q domain.ListingQuery) (bson.M, error) {
	filter := bson.M{}

	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.OwnerID != "" {
		filter["user_id"] = q.OwnerID
	}
	if q.ExcludeOwnerID != "" {
		filter["user_id"] = bson.M{"$ne": q.ExcludeOwnerID}
	}
	if q.CategoryID != "" {
		filter["categories"] = q.CategoryID
	}

	price := bson.M{}
	if q.PriceFrom != nil {
		price["$gte"] = *q.PriceFrom
	}
	if q.PriceTo != nil {
		price["$lte"] = *q.PriceTo
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	if q.Region != "" {
		filter["location.region"] = q.Region
	}
	if q.City != "" {
		filter["location.city"] = q.City
	}
	if len(q.Districts) > 0 {
		filter["location.district"] = bson.M{"$in": q.Districts}
	}

	if q.IDs != nil {
		if len(q.IDs) == 0 {
			return nil, nil
		}
		ids := make([]primitive.ObjectID, 0, len(q.IDs))
		for _, id := range q.IDs {
			docID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, fmt.Errorf("invalid listing id %q in facet set: %w", id, err)
			}
			ids = append(ids, docID)
		}
		filter["_id"] = bson.M{"$in": ids}
	}

	return filter, nil
}

func sortSpec(sort string) bson.D {
	switch sort {
	case domain.SortDateAsc:
		return bson.D{{Key: "created_at", Value: 1}}
	case domain.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
