package geo

import (
	"math"
	"sort"
	"strconv"

	"github.com/bazarly/listing-service/internal/listing/domain"
)

const earthRadiusKm = 6371

// DistanceKm computes the great-circle distance between two points using the
// spherical law of cosines.
func DistanceKm(lat1, long1, lat2, long2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	rdlong := radians(long2 - long1)

	cosine := math.Sin(rlat1)*math.Sin(rlat2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Cos(rdlong)
	// Clamp against rounding drift before acos.
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}
	return math.Acos(cosine) * earthRadiusKm
}

// ParseCoordinates parses the decimal-string lat/long pair a listing or a
// filter carries. ok is false when either value is missing or malformed.
func ParseCoordinates(lat, long string) (latF, longF float64, ok bool) {
	if lat == "" || long == "" {
		return 0, 0, false
	}
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return 0, 0, false
	}
	longF, err = strconv.ParseFloat(long, 64)
	if err != nil {
		return 0, 0, false
	}
	return latF, longF, true
}

// FilterAndRankByDistance drops listings farther than radiusKm from the
// origin and orders the rest ascending by distance. Listings without parsable
// coordinates are excluded. Ordering compares meters so near-equal distances
// stay stable across the kilometer rounding.
func FilterAndRankByDistance(listings []*domain.Listing, originLat, originLong, radiusKm float64) []*domain.Listing {
	type ranked struct {
		listing *domain.Listing
		meters  float64
	}

	within := make([]ranked, 0, len(listings))
	for _, l := range listings {
		lat, long, ok := ParseCoordinates(l.Location.Lat, l.Location.Long)
		if !ok {
			continue
		}
		km := DistanceKm(originLat, originLong, lat, long)
		if km > radiusKm {
			continue
		}
		within = append(within, ranked{listing: l, meters: km * 1000})
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].meters < within[j].meters
	})

	out := make([]*domain.Listing, len(within))
	for i, r := range within {
		out[i] = r.listing
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
