package mongodb

import (
	"fmt"
	"time"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type locationDocument struct {
	Address     string `bson:"address"`
	FullAddress string `bson:"full_address"`
	Country     string `bson:"country"`
	Region      string `bson:"region,omitempty"`
	District    string `bson:"district,omitempty"`
	City        string `bson:"city,omitempty"`
	Street      string `bson:"street,omitempty"`
	House       string `bson:"house,omitempty"`
	Lat         string `bson:"lat,omitempty"`
	Long        string `bson:"long,omitempty"`
}

type photoDocument struct {
	ID    string `bson:"id"`
	Order int    `bson:"order"`
}

type listingDocument struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	UserID           string               `bson:"user_id"`
	CatalogID        string               `bson:"catalog_id"`
	Categories       []string             `bson:"categories,omitempty"`
	Title            string               `bson:"title"`
	Description      string               `bson:"description"`
	Price            int64                `bson:"price"`
	Status           domain.ListingStatus `bson:"status"`
	ContactByPhone   bool                 `bson:"contact_by_phone"`
	ContactByMessage bool                 `bson:"contact_by_message"`
	Location         locationDocument     `bson:"location"`
	Photos           []photoDocument      `bson:"photos,omitempty"`
	Views            int64                `bson:"views"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
	ArchivedAt       *time.Time           `bson:"archived_at,omitempty"`
	BlockedAt        *time.Time           `bson:"blocked_at,omitempty"`
}

type attributeDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ListingID string             `bson:"listing_id"`
	Key       string             `bson:"key"`
	Value     string             `bson:"value"`
}

type favoriteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ListingID string             `bson:"listing_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

// catalogDocument mirrors catalog.CatalogNode. The tree structure is flat in
// storage; parent links are resolved in memory.
type catalogDocument struct {
	ID           string                `bson:"_id"`
	ParentID     string                `bson:"parent_id,omitempty"`
	Path         catalog.LocalizedText `bson:"path"`
	Title        catalog.LocalizedText `bson:"title"`
	IsPublished  bool                  `bson:"is_published"`
	DynamicTitle []string              `bson:"dynamic_title,omitempty"`
	Fields       []catalog.FieldDef    `bson:"fields,omitempty"`
}

func fromDomainListing(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}

	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing id %q: %w", l.ID, err)
		}
	}

	photos := make([]photoDocument, len(l.Photos))
	for i, p := range l.Photos {
		photos[i] = photoDocument{ID: p.ID, Order: p.Order}
	}

	return &listingDocument{
		ID:               docID,
		UserID:           l.UserID,
		CatalogID:        l.CatalogID,
		Categories:       l.Categories,
		Title:            l.Title,
		Description:      l.Description,
		Price:            l.Price,
		Status:           l.Status,
		ContactByPhone:   l.ContactByPhone,
		ContactByMessage: l.ContactByMessage,
		Location:         locationDocument(l.Location),
		Photos:           photos,
		Views:            l.Views,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
		ArchivedAt:       l.ArchivedAt,
		BlockedAt:        l.BlockedAt,
	}, nil
}

func (d *listingDocument) toDomainListing() *domain.Listing {
	if d == nil {
		return nil
	}

	photos := make([]domain.Photo, len(d.Photos))
	for i, p := range d.Photos {
		photos[i] = domain.Photo{ID: p.ID, Order: p.Order}
	}

	return &domain.Listing{
		ID:               d.ID.Hex(),
		UserID:           d.UserID,
		CatalogID:        d.CatalogID,
		Categories:       d.Categories,
		Title:            d.Title,
		Description:      d.Description,
		Price:            d.Price,
		Status:           d.Status,
		ContactByPhone:   d.ContactByPhone,
		ContactByMessage: d.ContactByMessage,
		Location:         domain.Location(d.Location),
		Photos:           photos,
		Views:            d.Views,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		ArchivedAt:       d.ArchivedAt,
		BlockedAt:        d.BlockedAt,
	}
}

func (d *favoriteDocument) toDomainFavorite() *domain.Favorite {
	if d == nil {
		return nil
	}
	return &domain.Favorite{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		ListingID: d.ListingID,
		CreatedAt: d.CreatedAt,
	}
}

func (d *catalogDocument) toDomainNode() *catalog.CatalogNode {
	if d == nil {
		return nil
	}
	return &catalog.CatalogNode{
		ID:           d.ID,
		ParentID:     d.ParentID,
		Path:         d.Path,
		Title:        d.Title,
		IsPublished:  d.IsPublished,
		DynamicTitle: d.DynamicTitle,
		Fields:       d.Fields,
	}
}
