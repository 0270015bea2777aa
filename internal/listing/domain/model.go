package domain

import "time"

type ListingStatus string

const (
	StatusDraft     ListingStatus = "draft"
	StatusWaiting   ListingStatus = "waiting"
	StatusPublished ListingStatus = "published"
	StatusArchived  ListingStatus = "archived"
	StatusBlocked   ListingStatus = "blocked"
)

// Location is the address hierarchy of a listing. Lat/Long are kept as the
// decimal strings the geocoder hands over; they are parsed only when a
// geo-radius filter needs them.
type Location struct {
	Address     string `json:"address"`
	FullAddress string `json:"full_address"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	District    string `json:"district"`
	City        string `json:"city"`
	Street      string `json:"street"`
	House       string `json:"house"`
	Lat         string `json:"lat"`
	Long        string `json:"long"`
}

// Photo is a reference to an uploaded image. Upload and storage live in a
// separate service; this service only keeps ids and ordering.
type Photo struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

type Listing struct {
	ID               string
	UserID           string
	CatalogID        string
	Categories       []string
	Title            string
	Description      string
	Price            int64
	Status           ListingStatus
	ContactByPhone   bool
	ContactByMessage bool
	Location         Location
	Photos           []Photo
	Views            int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ArchivedAt       *time.Time
	BlockedAt        *time.Time
}

// CoverPhotoID returns the id of the first photo by stored order, or "".
func (l *Listing) CoverPhotoID() string {
	if len(l.Photos) == 0 {
		return ""
	}
	cover := l.Photos[0]
	for _, p := range l.Photos[1:] {
		if p.Order < cover.Order {
			cover = p
		}
	}
	return cover.ID
}

// AttributeValue is one EAV row: a raw string value keyed by a field alias
// that must be valid for the listing's catalog node at write time.
type AttributeValue struct {
	ListingID string
	Key       string
	Value     string
}

type Favorite struct {
	ID        string
	UserID    string
	ListingID string
	CreatedAt time.Time
}

// AttributeFilter is one requested facet. Exactly one of the three shapes is
// set: Equals (scalar exact match), AnyOf (OR of case-insensitive substring
// matches) or From/To (numeric range, either bound optional).
type AttributeFilter struct {
	Equals string
	AnyOf  []string
	From   *string
	To     *string
}

// IsRangeShaped reports whether the filter came in as a {from,to} object.
func (f AttributeFilter) IsRangeShaped() bool {
	return f.From != nil || f.To != nil
}

// FilterRequest is the ephemeral, structured search request.
type FilterRequest struct {
	CategoryID string
	Status     ListingStatus
	PriceFrom  *int64
	PriceTo    *int64
	Sort       string
	Page       int
	Limit      int
	Search     string

	// Field-based location filter. Districts carries one or many values.
	Region    string
	City      string
	Districts []string

	// Geo filter. RadiusKm > 0 requests radius filtering; it is mutually
	// exclusive with the field-based location filter and wins over it.
	Lat      string
	Long     string
	RadiusKm float64

	Attributes map[string]AttributeFilter
}

// HasGeoFilter reports whether a radius filter was requested at all,
// regardless of whether usable coordinates were supplied.
func (r FilterRequest) HasGeoFilter() bool {
	return r.RadiusKm > 0
}

// QueryVariant selects the base status/ownership predicate of a search.
type QueryVariant string

const (
	VariantAll             QueryVariant = "all"               // anonymous feed
	VariantAllCategory     QueryVariant = "all_category"      // anonymous feed within a category
	VariantAllAuth         QueryVariant = "all_auth"          // authed feed, own listings hidden
	VariantAllAuthCategory QueryVariant = "all_auth_category" // authed feed within a category
	VariantCard            QueryVariant = "card"              // own profile view
)

const (
	SortDateAsc   = "date_asc"
	SortDateDesc  = "date_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ListingSummary is the per-item search result shape.
type ListingSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        int64    `json:"price"`
	Location     Location `json:"location"`
	CoverPhotoID string   `json:"photos"`
	Favorited    bool     `json:"favorite"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"created_at"`
}

// SearchResult bundles the paginated items with the total over the full
// predicate. GeoFallback is set when a radius filter was requested but no
// usable coordinates were supplied, so ordering reverted to the sort key.
type SearchResult struct {
	Total       int64            `json:"total"`
	Items       []ListingSummary `json:"items"`
	GeoFallback bool             `json:"geo_fallback,omitempty"`
}
