package httpapi

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/listing/usecase"
)

// attributeFilterDTO decodes the three accepted facet shapes: a scalar string,
// an array of strings, or a {"from","to"} range object.
type attributeFilterDTO struct {
	filter domain.AttributeFilter
}

func (d *attributeFilterDTO) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		d.filter = domain.AttributeFilter{Equals: scalar}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		d.filter = domain.AttributeFilter{AnyOf: list}
		return nil
	}

	var obj struct {
		From json.RawMessage `json:"from"`
		To   json.RawMessage `json:"to"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unsupported attribute filter shape")
	}
	from, err := decodeBound(obj.From)
	if err != nil {
		return err
	}
	to, err := decodeBound(obj.To)
	if err != nil {
		return err
	}
	d.filter = domain.AttributeFilter{From: from, To: to}
	return nil
}

// decodeBound accepts a JSON string, number or null. The bound stays a string
// here; numeric interpretation happens in the query engine.
func decodeBound(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		s = strconv.FormatFloat(f, 'f', -1, 64)
		return &s, nil
	}
	return nil, fmt.Errorf("unsupported range bound")
}

type searchRequest struct {
	Variant    string                        `json:"variant"`
	CategoryID string                        `json:"category_id"`
	Status     string                        `json:"status"`
	PriceFrom  *int64                        `json:"price_from"`
	PriceTo    *int64                        `json:"price_to"`
	Sort       string                        `json:"sort"`
	Page       int                           `json:"page"`
	Limit      int                           `json:"limit"`
	Search     string                        `json:"search"`
	Region     string                        `json:"region"`
	City       string                        `json:"city"`
	District   string                        `json:"district"`
	Districts  []string                      `json:"districts"`
	Lat        string                        `json:"lat"`
	Long       string                        `json:"long"`
	RadiusKm   float64                       `json:"radius_km"`
	Attributes map[string]attributeFilterDTO `json:"attributes"`
}

func (r searchRequest) toDomain() domain.FilterRequest {
	districts := r.Districts
	if r.District != "" {
		districts = append(districts, r.District)
	}
	req := domain.FilterRequest{
		CategoryID: r.CategoryID,
		Status:     domain.ListingStatus(r.Status),
		PriceFrom:  r.PriceFrom,
		PriceTo:    r.PriceTo,
		Sort:       r.Sort,
		Page:       r.Page,
		Limit:      r.Limit,
		Search:     r.Search,
		Region:     r.Region,
		City:       r.City,
		Districts:  districts,
		Lat:        r.Lat,
		Long:       r.Long,
		RadiusKm:   r.RadiusKm,
	}
	if len(r.Attributes) > 0 {
		req.Attributes = make(map[string]domain.AttributeFilter, len(r.Attributes))
		for alias, dto := range r.Attributes {
			req.Attributes[alias] = dto.filter
		}
	}
	return req
}

// resolveVariant picks the query variant: an explicit card request keeps the
// owner's view, everything else lands on a feed variant derived from the
// viewer and category context.
func (r searchRequest) resolveVariant(viewerID string) domain.QueryVariant {
	if r.Variant == string(domain.VariantCard) {
		return domain.VariantCard
	}
	switch {
	case viewerID != "" && r.CategoryID != "":
		return domain.VariantAllAuthCategory
	case viewerID != "":
		return domain.VariantAllAuth
	case r.CategoryID != "":
		return domain.VariantAllCategory
	default:
		return domain.VariantAll
	}
}

type publishRequest struct {
	CatalogID        string          `json:"catalog_id"`
	Categories       []string        `json:"categories"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Price            *int64          `json:"price"`
	ContactByPhone   bool            `json:"contact_by_phone"`
	ContactByMessage bool            `json:"contact_by_message"`
	Location         domain.Location `json:"location"`
	Fields           map[string]any  `json:"fields"`
	Photos           []domain.Photo  `json:"photos"`
}

func (r publishRequest) toInput() usecase.PublishInput {
	input := usecase.PublishInput{
		CatalogID:        r.CatalogID,
		Categories:       r.Categories,
		Title:            r.Title,
		Description:      r.Description,
		PriceSet:         r.Price != nil,
		ContactByPhone:   r.ContactByPhone,
		ContactByMessage: r.ContactByMessage,
		Location:         r.Location,
		Fields:           r.Fields,
		Photos:           r.Photos,
	}
	if r.Price != nil {
		input.Price = *r.Price
	}
	return input
}

type editRequest struct {
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	Price            *int64           `json:"price"`
	ContactByPhone   *bool            `json:"contact_by_phone"`
	ContactByMessage *bool            `json:"contact_by_message"`
	Location         *domain.Location `json:"location"`
	Fields           map[string]any   `json:"fields"`
}

func (r editRequest) toInput() usecase.EditInput {
	return usecase.EditInput{
		Title:            r.Title,
		Description:      r.Description,
		Price:            r.Price,
		ContactByPhone:   r.ContactByPhone,
		ContactByMessage: r.ContactByMessage,
		Location:         r.Location,
		Fields:           r.Fields,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type validateRequest struct {
	Fields map[string]any `json:"fields"`
}

type listingResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	CatalogID        string          `json:"catalog_id"`
	Categories       []string        `json:"categories,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Price            int64           `json:"price"`
	Status           string          `json:"status"`
	ContactByPhone   bool            `json:"contact_by_phone"`
	ContactByMessage bool            `json:"contact_by_message"`
	Location         domain.Location `json:"location"`
	Photos           []domain.Photo  `json:"photos,omitempty"`
	Views            int64           `json:"views"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
	Attributes       map[string]any  `json:"attributes,omitempty"`
}

func toListingResponse(l *domain.Listing, attributes map[string]any) listingResponse {
	return listingResponse{
		ID:               l.ID,
		UserID:           l.UserID,
		CatalogID:        l.CatalogID,
		Categories:       l.Categories,
		Title:            l.Title,
		Description:      l.Description,
		Price:            l.Price,
		Status:           string(l.Status),
		ContactByPhone:   l.ContactByPhone,
		ContactByMessage: l.ContactByMessage,
		Location:         l.Location,
		Photos:           l.Photos,
		Views:            l.Views,
		CreatedAt:        l.CreatedAt.Format(timeLayout),
		UpdatedAt:        l.UpdatedAt.Format(timeLayout),
		Attributes:       attributes,
	}
}
