package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const favoriteCollectionName = "favorites"

// FavoriteRepository implements domain.FavoriteRepository on MongoDB.
type FavoriteRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewFavoriteRepository(db *mongo.Database, log *logger.Logger) (*FavoriteRepository, error) {
	collection := db.Collection(favoriteCollectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for favorites collection", zap.Error(err))
	}

	return &FavoriteRepository{
		collection: collection,
		logger:     log.Named("FavoriteRepository"),
	}, nil
}

func (r *FavoriteRepository) Add(ctx context.Context, favorite *domain.Favorite) error {
	doc := favoriteDocument{
		ID:        primitive.NewObjectID(),
		UserID:    favorite.UserID,
		ListingID: favorite.ListingID,
		CreatedAt: favorite.CreatedAt,
	}
	favorite.ID = doc.ID.Hex()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateFavorite
		}
		r.logger.Error("Failed to insert favorite", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		r.logger.Error("Failed to delete favorite", zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListingIDsForUser(ctx context.Context, userID string) (map[string]bool, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error("Failed to find favorites", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []favoriteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ListingID] = true
	}
	return ids, nil
}
