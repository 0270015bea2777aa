package usecase

import (
	"context"
	"errors"
	"testing"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/listing/ranges"
	"github.com/bazarly/listing-service/internal/listing/validation"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func carSchema() *catalog.CatalogNode {
	return &catalog.CatalogNode{
		ID:           "cars",
		DynamicTitle: []string{"brand", "model"},
		Fields: []catalog.FieldDef{
			{
				Alias: "brand", Type: catalog.FieldSelect, Required: true, Editable: false,
				Properties: catalog.Properties{Options: []string{"Toyota", "BMW"}},
			},
			{
				Alias: "model", Type: catalog.FieldText, Editable: true,
			},
			{
				Alias: "mileage", Type: catalog.FieldNumber, Editable: true,
				Properties: catalog.Properties{NumberType: "int", Min: 0, Max: 1000000},
			},
		},
	}
}

func validPublishInput() PublishInput {
	return PublishInput{
		CatalogID:        "cars",
		Title:            "fallback title",
		Description:      "well maintained, one owner",
		Price:            2500000,
		PriceSet:         true,
		ContactByPhone:   true,
		ContactByMessage: false,
		Location: domain.Location{
			Address:     "Abay Ave 10",
			FullAddress: "Abay Ave 10, Almaty",
			Country:     "Kazakhstan",
			City:        "Almaty",
		},
		Fields: map[string]any{
			"brand":   "Toyota",
			"model":   "Corolla",
			"mileage": 90000.0,
		},
	}
}

func newListingUC(listings *MockListingRepository, attrs *MockAttributeRepository, registry *MockSchemaRegistry, events *MockEventPublisher) *ListingUsecase {
	log := logger.NewLogger()
	validator := validation.NewValidator(validation.NewSuggesterRegistry(), log)
	classifier := ranges.NewClassifier(ranges.Table{"cars": {"mileage"}})
	return NewListingUsecase(listings, attrs, registry, validator, classifier, events, Hooks{}, log)
}

func TestPublish(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	events := new(MockEventPublisher)
	uc := newListingUC(listings, attrs, registry, events)

	registry.On("GetFieldSchema", mock.Anything, "cars").Return(carSchema(), nil)
	listings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Listing).ID = "listing-1"
	}).Return(nil)
	attrs.On("ReplaceForListing", mock.Anything, "listing-1", mock.Anything).Return(nil)
	listings.On("Update", mock.Anything, mock.AnythingOfType("*domain.Listing")).Return(nil)
	events.On("Publish", mock.Anything, "listing.published", mock.Anything).Return(nil)

	listing, err := uc.Publish(context.Background(), "user-1", validPublishInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPublished, listing.Status)
	// The dynamic title wins over the explicit one.
	assert.Equal(t, "Toyota Corolla", listing.Title)
	events.AssertCalled(t, "Publish", mock.Anything, "listing.published", mock.Anything)

	rows := attrs.Calls[0].Arguments.Get(2).([]domain.AttributeValue)
	byKey := map[string]string{}
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}
	assert.Equal(t, "Toyota", byKey["brand"])
	assert.Equal(t, "90000", byKey["mileage"])
}

func TestPublish_SchemaMissingIsFatal(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	uc := newListingUC(listings, attrs, registry, nil)

	registry.On("GetFieldSchema", mock.Anything, "cars").Return(nil, catalog.ErrNotFound)

	_, err := uc.Publish(context.Background(), "user-1", validPublishInput())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPublish_ValidationFindingsAggregate(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	uc := newListingUC(listings, attrs, registry, nil)

	registry.On("GetFieldSchema", mock.Anything, "cars").Return(carSchema(), nil)

	input := validPublishInput()
	input.Fields["brand"] = "Lada"
	input.Location.Country = ""
	input.ContactByPhone = false
	input.ContactByMessage = false

	_, err := uc.Publish(context.Background(), "user-1", input)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields.Aliases, "brand")
	assert.NotEmpty(t, verr.Location)
	assert.NotEmpty(t, verr.FormData)
	listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPublish_DynamicTitleFallback(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	events := new(MockEventPublisher)
	uc := newListingUC(listings, attrs, registry, events)

	schema := carSchema()
	schema.DynamicTitle = []string{"nonexistent_alias"}
	registry.On("GetFieldSchema", mock.Anything, "cars").Return(schema, nil)
	listings.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Listing).ID = "listing-2"
	}).Return(nil)
	attrs.On("ReplaceForListing", mock.Anything, "listing-2", mock.Anything).Return(nil)
	listings.On("Update", mock.Anything, mock.Anything).Return(nil)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	listing, err := uc.Publish(context.Background(), "user-1", validPublishInput())
	require.NoError(t, err)
	assert.Equal(t, "fallback title", listing.Title)
}

func TestPublish_EventFailureDoesNotFailPublish(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	events := new(MockEventPublisher)
	uc := newListingUC(listings, attrs, registry, events)

	registry.On("GetFieldSchema", mock.Anything, "cars").Return(carSchema(), nil)
	listings.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Listing).ID = "listing-3"
	}).Return(nil)
	attrs.On("ReplaceForListing", mock.Anything, "listing-3", mock.Anything).Return(nil)
	listings.On("Update", mock.Anything, mock.Anything).Return(nil)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))

	_, err := uc.Publish(context.Background(), "user-1", validPublishInput())
	assert.NoError(t, err)
}

func TestEdit_OwnershipEnforced(t *testing.T) {
	listings := new(MockListingRepository)
	uc := newListingUC(listings, new(MockAttributeRepository), new(MockSchemaRegistry), nil)

	listings.On("FindByID", mock.Anything, "listing-1").Return(&domain.Listing{
		ID: "listing-1", UserID: "owner",
	}, nil)

	_, err := uc.Edit(context.Background(), "listing-1", "someone-else", EditInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEdit_NonEditableAliasesDropped(t *testing.T) {
	listings := new(MockListingRepository)
	attrs := new(MockAttributeRepository)
	registry := new(MockSchemaRegistry)
	events := new(MockEventPublisher)
	uc := newListingUC(listings, attrs, registry, events)

	existing := &domain.Listing{
		ID: "listing-1", UserID: "owner", CatalogID: "cars",
		Title: "Toyota Corolla", Description: "good car", Price: 100,
		ContactByPhone: true,
		Location: domain.Location{
			Address: "a", FullAddress: "b", Country: "c",
		},
	}
	listings.On("FindByID", mock.Anything, "listing-1").Return(existing, nil)
	registry.On("GetFieldSchema", mock.Anything, "cars").Return(carSchema(), nil)
	attrs.On("FindByListing", mock.Anything, "listing-1").Return([]domain.AttributeValue{
		{ListingID: "listing-1", Key: "brand", Value: "Toyota"},
		{ListingID: "listing-1", Key: "model", Value: "Corolla"},
	}, nil)
	attrs.On("ReplaceForListing", mock.Anything, "listing-1", mock.Anything).Return(nil)
	listings.On("Update", mock.Anything, mock.Anything).Return(nil)
	events.On("Publish", mock.Anything, "listing.updated", mock.Anything).Return(nil)

	_, err := uc.Edit(context.Background(), "listing-1", "owner", EditInput{
		Fields: map[string]any{
			"brand": "BMW",
			"model": "Camry",
		},
	})
	require.NoError(t, err)

	var rewritten []domain.AttributeValue
	for _, call := range attrs.Calls {
		if call.Method == "ReplaceForListing" {
			rewritten = call.Arguments.Get(2).([]domain.AttributeValue)
		}
	}
	byKey := map[string]string{}
	for _, row := range rewritten {
		byKey[row.Key] = row.Value
	}
	// brand has a stored value and is locked by the schema; the submitted
	// change is silently dropped.
	assert.NotContains(t, byKey, "brand")
	assert.Equal(t, "Camry", byKey["model"])
}

func TestChangeStatus(t *testing.T) {
	t.Run("invalid status is rejected", func(t *testing.T) {
		uc := newListingUC(new(MockListingRepository), new(MockAttributeRepository), new(MockSchemaRegistry), nil)
		_, err := uc.ChangeStatus(context.Background(), "listing-1", "owner", "melted")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("archiving stamps archived_at", func(t *testing.T) {
		listings := new(MockListingRepository)
		events := new(MockEventPublisher)
		uc := newListingUC(listings, new(MockAttributeRepository), new(MockSchemaRegistry), events)

		listings.On("FindByID", mock.Anything, "listing-1").Return(&domain.Listing{
			ID: "listing-1", UserID: "owner", Status: domain.StatusPublished,
		}, nil)
		listings.On("Update", mock.Anything, mock.Anything).Return(nil)
		events.On("Publish", mock.Anything, "listing.status_changed", mock.Anything).Return(nil)

		listing, err := uc.ChangeStatus(context.Background(), "listing-1", "owner", domain.StatusArchived)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusArchived, listing.Status)
		assert.NotNil(t, listing.ArchivedAt)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		listings := new(MockListingRepository)
		uc := newListingUC(listings, new(MockAttributeRepository), new(MockSchemaRegistry), nil)

		listings.On("FindByID", mock.Anything, "listing-1").Return(&domain.Listing{
			ID: "listing-1", UserID: "owner", Status: domain.StatusPublished,
		}, nil)

		_, err := uc.ChangeStatus(context.Background(), "listing-1", "owner", domain.StatusPublished)
		require.NoError(t, err)
		listings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCheckFields(t *testing.T) {
	registry := new(MockSchemaRegistry)
	uc := newListingUC(new(MockListingRepository), new(MockAttributeRepository), registry, nil)
	registry.On("GetFieldSchema", mock.Anything, "cars").Return(carSchema(), nil)

	res, err := uc.CheckFields(context.Background(), "cars", map[string]any{"brand": "Lada"})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Contains(t, res.Aliases, "brand")
}
