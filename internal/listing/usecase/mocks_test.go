package usecase

import (
	"context"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByQuery(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}

type MockAttributeRepository struct{ mock.Mock }

func (m *MockAttributeRepository) ReplaceForListing(ctx context.Context, listingID string, attrs []domain.AttributeValue) error {
	args := m.Called(ctx, listingID, attrs)
	return args.Error(0)
}
func (m *MockAttributeRepository) FindByListing(ctx context.Context, listingID string) ([]domain.AttributeValue, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttributeValue), args.Error(1)
}
func (m *MockAttributeRepository) FindListingIDs(ctx context.Context, cond domain.AttributeCondition) (map[string]struct{}, error) {
	args := m.Called(ctx, cond)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) Add(ctx context.Context, favorite *domain.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}
func (m *MockFavoriteRepository) ListingIDsForUser(ctx context.Context, userID string) (map[string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

type MockSchemaRegistry struct{ mock.Mock }

func (m *MockSchemaRegistry) GetFieldSchema(ctx context.Context, categoryID string) (*catalog.CatalogNode, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.CatalogNode), args.Error(1)
}
func (m *MockSchemaRegistry) ValidateCategorySelection(ctx context.Context, categoryID string, categories []string) error {
	args := m.Called(ctx, categoryID, categories)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data any) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}
