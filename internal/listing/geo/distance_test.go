package geo

import (
	"testing"

	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		assert.InDelta(t, 0, DistanceKm(43.238949, 76.889709, 43.238949, 76.889709), 0.001)
	})

	t.Run("Almaty to Astana", func(t *testing.T) {
		d := DistanceKm(43.238949, 76.889709, 51.169392, 71.449074)
		assert.InDelta(t, 970, d, 15)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		d := DistanceKm(0, 0, 0, 180)
		assert.InDelta(t, 20015, d, 10)
	})
}

func TestParseCoordinates(t *testing.T) {
	lat, long, ok := ParseCoordinates("43.25", "76.95")
	assert.True(t, ok)
	assert.Equal(t, 43.25, lat)
	assert.Equal(t, 76.95, long)

	_, _, ok = ParseCoordinates("", "76.95")
	assert.False(t, ok)

	_, _, ok = ParseCoordinates("north", "76.95")
	assert.False(t, ok)
}

func listingAt(id, lat, long string) *domain.Listing {
	return &domain.Listing{ID: id, Location: domain.Location{Lat: lat, Long: long}}
}

func TestFilterAndRankByDistance(t *testing.T) {
	listings := []*domain.Listing{
		listingAt("far", "43.35", "77.05"),
		listingAt("near", "43.240", "76.890"),
		listingAt("broken", "somewhere", "76.9"),
		listingAt("out-of-radius", "44.5", "78.0"),
	}

	ranked := FilterAndRankByDistance(listings, 43.238949, 76.889709, 20)

	ids := make([]string, len(ranked))
	for i, l := range ranked {
		ids[i] = l.ID
	}
	// Nearest first; unparsable coordinates and out-of-radius listings drop out.
	assert.Equal(t, []string{"near", "far"}, ids)
}

func TestFilterAndRankByDistance_RadiusInclusive(t *testing.T) {
	origin := listingAt("origin", "43.0", "76.0")
	listings := []*domain.Listing{origin}

	ranked := FilterAndRankByDistance(listings, 43.0, 76.0, 0)
	// A listing exactly at the boundary distance is kept.
	assert.Len(t, ranked, 1)
}
