package usecase

import (
	"context"
	"time"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// FavoriteUsecase maintains each user's set of favorited listings.
type FavoriteUsecase struct {
	favorites domain.FavoriteRepository
	listings  domain.ListingRepository
	logger    *logger.Logger
}

func NewFavoriteUsecase(favorites domain.FavoriteRepository, listings domain.ListingRepository, log *logger.Logger) *FavoriteUsecase {
	return &FavoriteUsecase{
		favorites: favorites,
		listings:  listings,
		logger:    log.Named("FavoriteUsecase"),
	}
}

// Add marks a listing as a favorite of the user. The listing must exist.
func (uc *FavoriteUsecase) Add(ctx context.Context, userID, listingID string) error {
	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		return err
	}
	favorite := &domain.Favorite{
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.favorites.Add(ctx, favorite); err != nil {
		uc.logger.Warn("Failed to add favorite",
			zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		return err
	}
	return nil
}

// Remove deletes the favorite mark.
func (uc *FavoriteUsecase) Remove(ctx context.Context, userID, listingID string) error {
	if err := uc.favorites.Remove(ctx, userID, listingID); err != nil {
		uc.logger.Warn("Failed to remove favorite",
			zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		return err
	}
	return nil
}
