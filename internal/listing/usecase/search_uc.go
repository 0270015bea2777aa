package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/listing/geo"
	"github.com/bazarly/listing-service/internal/listing/ranges"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// SearchHooks receives query-engine notifications for metrics. Fields may be
// nil.
type SearchHooks struct {
	OnSearch func(variant string, elapsed time.Duration)
}

// SearchUsecase is the listing query engine: it compiles a filter request
// into a base predicate plus per-alias attribute conditions, intersects the
// facet id sets, and assembles the result page.
type SearchUsecase struct {
	listings   domain.ListingRepository
	attrs      domain.AttributeRepository
	favorites  domain.FavoriteRepository
	classifier *ranges.Classifier
	hooks      SearchHooks
	logger     *logger.Logger
}

func NewSearchUsecase(
	listings domain.ListingRepository,
	attrs domain.AttributeRepository,
	favorites domain.FavoriteRepository,
	classifier *ranges.Classifier,
	hooks SearchHooks,
	log *logger.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		listings:   listings,
		attrs:      attrs,
		favorites:  favorites,
		classifier: classifier,
		hooks:      hooks,
		logger:     log.Named("SearchUsecase"),
	}
}

// Search runs one filter request under the given variant. viewerID is empty
// for anonymous variants; for card it selects whose listings are shown, for
// the authed feed variants it selects whose listings are hidden.
func (uc *SearchUsecase) Search(ctx context.Context, variant domain.QueryVariant, viewerID string, req domain.FilterRequest) (*domain.SearchResult, error) {
	started := time.Now()

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	query := domain.ListingQuery{
		Statuses:  uc.resolveStatuses(variant, req.Status),
		PriceFrom: req.PriceFrom,
		PriceTo:   req.PriceTo,
		Search:    strings.TrimSpace(req.Search),
		Sort:      req.Sort,
		Offset:    int64(page-1) * int64(limit),
		Limit:     int64(limit),
	}

	switch variant {
	case domain.VariantAllCategory, domain.VariantAllAuthCategory:
		query.CategoryID = req.CategoryID
	}
	switch variant {
	case domain.VariantAllAuth, domain.VariantAllAuthCategory:
		query.ExcludeOwnerID = viewerID
	case domain.VariantCard:
		query.OwnerID = viewerID
	}

	// A requested radius filter always supersedes the field-based location
	// filter, even when the coordinates turn out unusable.
	originLat, originLong, geoUsable := 0.0, 0.0, false
	if req.HasGeoFilter() {
		originLat, originLong, geoUsable = geo.ParseCoordinates(req.Lat, req.Long)
	} else {
		query.Region = req.Region
		query.City = req.City
		query.Districts = req.Districts
	}

	ids, matchable, err := uc.resolveFacets(ctx, req)
	if err != nil {
		return nil, err
	}
	if !matchable {
		return &domain.SearchResult{Total: 0, Items: []domain.ListingSummary{}, GeoFallback: req.HasGeoFilter() && !geoUsable}, nil
	}
	query.IDs = ids

	var (
		listings []*domain.Listing
		total    int64
	)
	if geoUsable {
		// Distance ranking needs the full candidate set; pagination happens
		// after the cut.
		query.SkipPagination = true
		candidates, _, err := uc.listings.FindByQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query listings: %w", err)
		}
		ranked := geo.FilterAndRankByDistance(candidates, originLat, originLong, req.RadiusKm)
		total = int64(len(ranked))
		listings = pageOf(ranked, int(query.Offset), limit)
	} else {
		listings, total, err = uc.listings.FindByQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query listings: %w", err)
		}
	}

	favorited := map[string]bool{}
	if viewerID != "" && uc.favorites != nil {
		favorited, err = uc.favorites.ListingIDsForUser(ctx, viewerID)
		if err != nil {
			// Favorite marks are decoration; the search result stands.
			uc.logger.Warn("Failed to load favorites", zap.String("user_id", viewerID), zap.Error(err))
			favorited = map[string]bool{}
		}
	}

	items := make([]domain.ListingSummary, 0, len(listings))
	for _, l := range listings {
		items = append(items, domain.ListingSummary{
			ID:           l.ID,
			Title:        l.Title,
			Description:  l.Description,
			Price:        l.Price,
			Location:     l.Location,
			CoverPhotoID: l.CoverPhotoID(),
			Favorited:    favorited[l.ID],
			Status:       string(l.Status),
			CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		})
	}

	if uc.hooks.OnSearch != nil {
		uc.hooks.OnSearch(string(variant), time.Since(started))
	}
	return &domain.SearchResult{
		Total:       total,
		Items:       items,
		GeoFallback: req.HasGeoFilter() && !geoUsable,
	}, nil
}

// resolveStatuses compiles the status predicate. Feed variants only ever see
// published listings. The owner's card view widens the requested status:
// published also shows drafts, waiting also shows blocked.
func (uc *SearchUsecase) resolveStatuses(variant domain.QueryVariant, requested domain.ListingStatus) []domain.ListingStatus {
	if variant != domain.VariantCard {
		return []domain.ListingStatus{domain.StatusPublished}
	}
	switch requested {
	case domain.StatusPublished, "":
		return []domain.ListingStatus{domain.StatusPublished, domain.StatusDraft}
	case domain.StatusWaiting:
		return []domain.ListingStatus{domain.StatusWaiting, domain.StatusBlocked}
	default:
		return []domain.ListingStatus{requested}
	}
}

// resolveFacets intersects the per-alias id sets of the attribute filters.
// The returned ids are nil when no attribute filter was given. matchable is
// false when some facet can never match, which short-circuits the query.
func (uc *SearchUsecase) resolveFacets(ctx context.Context, req domain.FilterRequest) (ids []string, matchable bool, err error) {
	if len(req.Attributes) == 0 {
		return nil, true, nil
	}

	var intersection map[string]struct{}
	for alias, filter := range req.Attributes {
		cond, ok := uc.compileCondition(req.CategoryID, alias, filter)
		if !ok {
			return nil, false, nil
		}

		set, err := uc.attrs.FindListingIDs(ctx, cond)
		if err != nil {
			return nil, false, fmt.Errorf("facet %s: %w", alias, err)
		}
		if len(set) == 0 {
			return nil, false, nil
		}

		if intersection == nil {
			intersection = set
			continue
		}
		for id := range intersection {
			if _, ok := set[id]; !ok {
				delete(intersection, id)
			}
		}
		if len(intersection) == 0 {
			return nil, false, nil
		}
	}

	out := make([]string, 0, len(intersection))
	for id := range intersection {
		out = append(out, id)
	}
	return out, true, nil
}

// compileCondition classifies one facet against the range-alias table. ok is
// false when the facet can never match: a range-shaped filter on a non-range
// alias, a range filter with no usable bound, or a malformed numeric bound.
func (uc *SearchUsecase) compileCondition(categoryID, alias string, filter domain.AttributeFilter) (domain.AttributeCondition, bool) {
	cond := domain.AttributeCondition{Alias: alias}
	isRange := uc.classifier.IsRangeAlias(categoryID, alias)

	if filter.IsRangeShaped() {
		if !isRange {
			uc.logger.Warn("Range-shaped filter on a non-range alias",
				zap.String("category_id", categoryID), zap.String("alias", alias))
			return cond, false
		}
		from, fromOK := parseBound(filter.From)
		to, toOK := parseBound(filter.To)
		if !fromOK || !toOK {
			uc.logger.Warn("Malformed numeric bound in range filter",
				zap.String("category_id", categoryID), zap.String("alias", alias))
			return cond, false
		}
		if from == nil && to == nil {
			return cond, false
		}
		cond.From = from
		cond.To = to
		return cond, true
	}

	if len(filter.AnyOf) > 0 {
		cond.AnyOfSubstring = filter.AnyOf
		return cond, true
	}
	if filter.Equals != "" {
		// A scalar match against a range alias still compares exactly.
		cond.Exact = filter.Equals
		return cond, true
	}
	return cond, false
}

// parseBound interprets one range endpoint. "" and "null" mean the bound is
// absent. ok is false only for a present but non-numeric value.
func parseBound(raw *string) (*float64, bool) {
	if raw == nil {
		return nil, true
	}
	s := *raw
	if s == "" || s == "null" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func pageOf(listings []*domain.Listing, offset, limit int) []*domain.Listing {
	if offset >= len(listings) {
		return []*domain.Listing{}
	}
	end := offset + limit
	if end > len(listings) {
		end = len(listings)
	}
	return listings[offset:end]
}
