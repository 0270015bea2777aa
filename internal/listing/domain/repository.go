package domain

import "context"

// ListingQuery is the compiled base predicate the query engine hands to the
// listing store. Zero values mean "no constraint".
type ListingQuery struct {
	Statuses       []ListingStatus
	OwnerID        string // only this owner's listings (card view)
	ExcludeOwnerID string // feed views hide the viewer's own listings
	CategoryID     string // membership via the listing's assigned categories

	PriceFrom *int64
	PriceTo   *int64
	Search    string

	Region    string
	City      string
	Districts []string

	// IDs restricts results to this set when non-nil; an empty non-nil set
	// matches nothing. Produced by the attribute facet intersection.
	IDs []string

	Sort           string
	Offset         int64
	Limit          int64
	SkipPagination bool // geo path ranks the full result set itself
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindByQuery returns the page of listings plus the total over the same
	// predicate, computed in one logical pass.
	FindByQuery(ctx context.Context, q ListingQuery) ([]*Listing, int64, error)
}

// AttributeCondition is one per-alias EAV predicate, already classified:
// either an exact value, a substring-OR set, or numeric bounds.
type AttributeCondition struct {
	Alias          string
	Exact          string
	AnyOfSubstring []string
	From           *float64
	To             *float64
}

type AttributeRepository interface {
	// ReplaceForListing atomically rewrites the attribute rows of a listing.
	ReplaceForListing(ctx context.Context, listingID string, attrs []AttributeValue) error
	FindByListing(ctx context.Context, listingID string) ([]AttributeValue, error)
	// FindListingIDs returns the set of listing ids whose EAV row for the
	// condition's alias matches it. The engine intersects these sets across
	// aliases to get AND-over-facets semantics.
	FindListingIDs(ctx context.Context, cond AttributeCondition) (map[string]struct{}, error)
}

type FavoriteRepository interface {
	Add(ctx context.Context, favorite *Favorite) error
	Remove(ctx context.Context, userID, listingID string) error
	ListingIDsForUser(ctx context.Context, userID string) (map[string]bool, error)
}
