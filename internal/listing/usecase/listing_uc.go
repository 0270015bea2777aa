package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/listing/ranges"
	"github.com/bazarly/listing-service/internal/listing/title"
	"github.com/bazarly/listing-service/internal/listing/validation"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is the messaging capability the usecases emit domain events
// through.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// SchemaRegistry is the slice of the catalog usecase the listing side needs.
type SchemaRegistry interface {
	GetFieldSchema(ctx context.Context, categoryID string) (*catalog.CatalogNode, error)
	ValidateCategorySelection(ctx context.Context, categoryID string, categories []string) error
}

// Hooks receives lifecycle notifications for metrics. Any field may be nil.
type Hooks struct {
	OnPublish func()
	OnEdit    func()
}

// ListingUsecase owns the publish/edit/status lifecycle of listings and the
// validated persistence of their EAV attributes.
type ListingUsecase struct {
	listings   domain.ListingRepository
	attrs      domain.AttributeRepository
	registry   SchemaRegistry
	validator  *validation.Validator
	classifier *ranges.Classifier
	events     EventPublisher
	hooks      Hooks
	logger     *logger.Logger
}

func NewListingUsecase(
	listings domain.ListingRepository,
	attrs domain.AttributeRepository,
	registry SchemaRegistry,
	validator *validation.Validator,
	classifier *ranges.Classifier,
	events EventPublisher,
	hooks Hooks,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		listings:   listings,
		attrs:      attrs,
		registry:   registry,
		validator:  validator,
		classifier: classifier,
		events:     events,
		hooks:      hooks,
		logger:     log.Named("ListingUsecase"),
	}
}

// PublishInput is a fully-parsed publish request.
type PublishInput struct {
	CatalogID        string
	Categories       []string
	Title            string
	Description      string
	Price            int64
	PriceSet         bool
	ContactByPhone   bool
	ContactByMessage bool
	Location         domain.Location
	Fields           map[string]any
	Photos           []domain.Photo
}

// EditInput carries a partial edit; nil means "leave untouched".
type EditInput struct {
	Title            *string
	Description      *string
	Price            *int64
	ContactByPhone   *bool
	ContactByMessage *bool
	Location         *domain.Location
	Fields           map[string]any
}

// CheckFields is the advisory pre-check: it validates a submission against a
// category schema without touching any listing. A missing schema is fatal.
func (uc *ListingUsecase) CheckFields(ctx context.Context, categoryID string, fields map[string]any) (validation.Result, error) {
	schema, err := uc.registry.GetFieldSchema(ctx, categoryID)
	if err != nil {
		return validation.Result{}, err
	}
	uc.warnRangeMismatches(schema)
	return uc.validator.Validate(ctx, schema, fields), nil
}

// Publish validates and stores a new listing with its attributes. The listing
// is created as a draft and flipped to published once the attribute rows are
// committed.
func (uc *ListingUsecase) Publish(ctx context.Context, userID string, input PublishInput) (*domain.Listing, error) {
	uc.logger.Info("Publishing listing",
		zap.String("user_id", userID), zap.String("catalog_id", input.CatalogID))

	schema, err := uc.registry.GetFieldSchema(ctx, input.CatalogID)
	if err != nil {
		return nil, err
	}
	uc.warnRangeMismatches(schema)

	verr := &ValidationError{}

	if len(schema.Fields) > 0 || len(input.Fields) > 0 {
		res := uc.validator.Validate(ctx, schema, input.Fields)
		if !res.OK() {
			verr.Fields = &res
		}
	}

	listingTitle := title.Generate(schema.DynamicTitle, input.Fields)
	if listingTitle == "" {
		listingTitle = strings.TrimSpace(input.Title)
	}

	if formErrs := validation.ValidateForm(listingTitle, input.Description, input.Price, input.PriceSet); len(formErrs) > 0 {
		verr.FormData = formErrs
	}
	if commErrs := validation.ValidateCommunication(input.ContactByPhone, input.ContactByMessage); len(commErrs) > 0 {
		if verr.FormData == nil {
			verr.FormData = map[string]string{}
		}
		for k, v := range commErrs {
			verr.FormData[k] = v
		}
	}
	if locErrs := validation.ValidateLocation(input.Location); len(locErrs) > 0 {
		verr.Location = locErrs
	}
	if len(input.Categories) > 0 {
		if err := uc.registry.ValidateCategorySelection(ctx, input.CatalogID, input.Categories); err != nil {
			verr.Categories = err.Error()
		}
	}
	if !verr.empty() {
		uc.logger.Warn("Listing rejected by validation",
			zap.String("catalog_id", input.CatalogID), zap.String("user_id", userID))
		return nil, verr
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		UserID:           userID,
		CatalogID:        input.CatalogID,
		Categories:       input.Categories,
		Title:            listingTitle,
		Description:      strings.TrimSpace(input.Description),
		Price:            input.Price,
		Status:           domain.StatusDraft,
		ContactByPhone:   input.ContactByPhone,
		ContactByMessage: input.ContactByMessage,
		Location:         input.Location,
		Photos:           input.Photos,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.listings.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.Error(err))
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if err := uc.attrs.ReplaceForListing(ctx, listing.ID, encodeAttributes(listing.ID, input.Fields)); err != nil {
		uc.logger.Error("Failed to persist listing attributes",
			zap.String("listing_id", listing.ID), zap.Error(err))
		return nil, fmt.Errorf("persist attributes: %w", err)
	}

	listing.Status = domain.StatusPublished
	listing.UpdatedAt = time.Now().UTC()
	if err := uc.listings.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to publish listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return nil, fmt.Errorf("publish listing: %w", err)
	}

	uc.publishEvent(ctx, "listing.published", listing)
	if uc.hooks.OnPublish != nil {
		uc.hooks.OnPublish()
	}
	uc.logger.Info("Listing published", zap.String("listing_id", listing.ID))
	return listing, nil
}

// Edit applies a partial update to the caller's own listing. Attribute fields
// whose schema forbids post-publish edits are silently dropped, and stored
// attributes unknown to the current schema are ignored.
func (uc *ListingUsecase) Edit(ctx context.Context, listingID, userID string, input EditInput) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		uc.logger.Warn("Forbidden listing edit",
			zap.String("listing_id", listingID), zap.String("user_id", userID))
		return nil, domain.ErrForbidden
	}

	verr := &ValidationError{}
	var fields map[string]any
	var schema *catalog.CatalogNode

	if input.Fields != nil {
		schema, err = uc.registry.GetFieldSchema(ctx, listing.CatalogID)
		if err != nil {
			return nil, err
		}

		res := uc.validator.Validate(ctx, schema, input.Fields)
		if !res.OK() {
			verr.Fields = &res
			return nil, verr
		}

		fields, err = uc.stripNonEditable(ctx, schema, listing.ID, input.Fields)
		if err != nil {
			return nil, err
		}
	}

	newTitle := ""
	if fields != nil && schema != nil {
		newTitle = title.Generate(schema.DynamicTitle, fields)
	}
	switch {
	case newTitle != "":
		listing.Title = newTitle
	case input.Title != nil:
		listing.Title = strings.TrimSpace(*input.Title)
	}

	if input.Description != nil {
		listing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if input.ContactByPhone != nil {
		listing.ContactByPhone = *input.ContactByPhone
	}
	if input.ContactByMessage != nil {
		listing.ContactByMessage = *input.ContactByMessage
	}
	if input.Location != nil {
		if locErrs := validation.ValidateLocation(*input.Location); len(locErrs) > 0 {
			verr.Location = locErrs
		} else {
			listing.Location = *input.Location
		}
	}

	if formErrs := validation.ValidateForm(listing.Title, listing.Description, listing.Price, true); len(formErrs) > 0 {
		verr.FormData = formErrs
	}
	if commErrs := validation.ValidateCommunication(listing.ContactByPhone, listing.ContactByMessage); len(commErrs) > 0 {
		if verr.FormData == nil {
			verr.FormData = map[string]string{}
		}
		for k, v := range commErrs {
			verr.FormData[k] = v
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	if fields != nil {
		if err := uc.attrs.ReplaceForListing(ctx, listing.ID, encodeAttributes(listing.ID, fields)); err != nil {
			uc.logger.Error("Failed to rewrite listing attributes",
				zap.String("listing_id", listing.ID), zap.Error(err))
			return nil, fmt.Errorf("rewrite attributes: %w", err)
		}
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := uc.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	uc.publishEvent(ctx, "listing.updated", listing)
	if uc.hooks.OnEdit != nil {
		uc.hooks.OnEdit()
	}
	uc.logger.Info("Listing updated", zap.String("listing_id", listing.ID))
	return listing, nil
}

// ChangeStatus transitions the caller's own listing to a new status and
// maintains the transition timestamps.
func (uc *ListingUsecase) ChangeStatus(ctx context.Context, listingID, userID string, status domain.ListingStatus) (*domain.Listing, error) {
	switch status {
	case domain.StatusDraft, domain.StatusWaiting, domain.StatusPublished, domain.StatusArchived, domain.StatusBlocked:
	default:
		return nil, domain.ErrInvalidStatus
	}

	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if listing.Status == status {
		return listing, nil
	}

	now := time.Now().UTC()
	if status == domain.StatusPublished && listing.Status != domain.StatusWaiting {
		listing.UpdatedAt = now
	}
	switch status {
	case domain.StatusArchived:
		listing.ArchivedAt = &now
	case domain.StatusBlocked:
		listing.BlockedAt = &now
	}
	listing.Status = status

	if err := uc.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("change listing status: %w", err)
	}

	uc.publishEvent(ctx, "listing.status_changed", listing)
	uc.logger.Info("Listing status changed",
		zap.String("listing_id", listing.ID), zap.String("status", string(status)))
	return listing, nil
}

// GetListing returns one listing with its decoded attribute map keyed by the
// schema's display titles, the way the card endpoint presents it.
func (uc *ListingUsecase) GetListing(ctx context.Context, listingID string) (*domain.Listing, map[string]any, error) {
	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	attrs, err := uc.attrs.FindByListing(ctx, listingID)
	if err != nil {
		return nil, nil, fmt.Errorf("load attributes: %w", err)
	}

	schema, err := uc.registry.GetFieldSchema(ctx, listing.CatalogID)
	if err != nil {
		// The listing still renders without its schema; attributes are omitted.
		uc.logger.Warn("Schema missing for listing card",
			zap.String("listing_id", listingID), zap.String("catalog_id", listing.CatalogID), zap.Error(err))
		return listing, nil, nil
	}

	decoded := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		def := schema.FieldByAlias(attr.Key)
		if def == nil {
			// Schema drift after publish: stale attributes are ignored.
			continue
		}
		decoded[def.Title] = decodeAttributeValue(attr.Value)
	}
	return listing, decoded, nil
}

// stripNonEditable removes submitted aliases whose stored attribute may not
// be changed after publication.
func (uc *ListingUsecase) stripNonEditable(ctx context.Context, schema *catalog.CatalogNode, listingID string, fields map[string]any) (map[string]any, error) {
	stored, err := uc.attrs.FindByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load stored attributes: %w", err)
	}

	locked := make(map[string]bool)
	for _, attr := range stored {
		def := schema.FieldByAlias(attr.Key)
		if def != nil && !def.Editable {
			locked[attr.Key] = true
		}
	}
	if len(locked) == 0 {
		return fields, nil
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if !locked[k] {
			out[k] = v
		}
	}
	return out, nil
}

func (uc *ListingUsecase) warnRangeMismatches(schema *catalog.CatalogNode) {
	if uc.classifier == nil {
		return
	}
	if mismatched := uc.classifier.Mismatches(schema); len(mismatched) > 0 {
		uc.logger.Warn("Field range flags disagree with the range-alias table",
			zap.String("catalog_id", schema.ID), zap.Strings("aliases", mismatched))
	}
}

func (uc *ListingUsecase) publishEvent(ctx context.Context, subject string, listing *domain.Listing) {
	if uc.events == nil {
		return
	}
	payload := map[string]any{
		"event_id":   uuid.NewString(),
		"listing_id": listing.ID,
		"user_id":    listing.UserID,
		"catalog_id": listing.CatalogID,
		"status":     string(listing.Status),
		"updated_at": listing.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.events.Publish(ctx, subject, payload); err != nil {
		// Event delivery is best-effort; the write already committed.
		uc.logger.Warn("Failed to publish event",
			zap.String("subject", subject), zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

// encodeAttributes flattens a validated submission into EAV rows. Empty
// strings are dropped; booleans and numbers keep their literal form; lists
// are stored as JSON arrays.
func encodeAttributes(listingID string, fields map[string]any) []domain.AttributeValue {
	rows := make([]domain.AttributeValue, 0, len(fields))
	for key, value := range fields {
		encoded, keep := encodeAttributeValue(value)
		if !keep {
			continue
		}
		rows = append(rows, domain.AttributeValue{ListingID: listingID, Key: key, Value: encoded})
	}
	return rows
}

func encodeAttributeValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(data), true
	case []any:
		if len(v) == 0 {
			return "", false
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(data), true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// decodeAttributeValue reverses encodeAttributeValue for presentation: JSON
// arrays come back as lists, boolean literals as bools, everything else as
// the raw string.
func decodeAttributeValue(raw string) any {
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	if strings.HasPrefix(raw, "[") {
		var list []any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list
		}
	}
	return raw
}
