// Package geo provides great-circle distance and bounding-box math for
// radius search over listing coordinates.
package geo

import (
	"fmt"
	"math"
)

// Conversion chain from degrees of arc to kilometers: 60 nautical-mile
// minutes per degree, 1.1515 statute miles per nautical mile, 1.609344
// kilometers per statute mile.
const kmPerArcDegree = 60 * 1.1515 * 1.609344

// EarthRadiusKm is the Earth radius implied by the arc-degree chain, so
// DistanceKm and BoundingBox agree on where the radius boundary lies.
const EarthRadiusKm = kmPerArcDegree * 180 / math.Pi

// DistanceKm returns the great-circle distance in kilometers between two
// points given in degrees, via the spherical law of cosines. Identical
// points return exactly 0; the acos argument is clamped so nearby and
// antipodal pairs never produce a domain error.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLngR := (lng1 - lng2) * math.Pi / 180

	cosine := math.Sin(lat1r)*math.Sin(lat2r) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Cos(dLngR)
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}

	arcDeg := math.Acos(cosine) * 180 / math.Pi
	return arcDeg * kmPerArcDegree
}

// Box is a latitude/longitude bounding box in degrees.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the point lies within the box, inclusive.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// BoundingBox returns the box enclosing every point within radiusKm of
// the center. It is a superset pre-filter: points inside the radius are
// always inside the box. Near a pole, or when the radius is large enough
// that sin(angular)/cos(lat) exceeds 1, the whole latitude band matches
// and longitude widens to the full -180..180 range.
func BoundingBox(lat, lng, radiusKm float64) (Box, error) {
	if radiusKm <= 0 {
		return Box{}, fmt.Errorf("radius must be positive, got %g", radiusKm)
	}
	if !ValidCoordinates(lat, lng) {
		return Box{}, fmt.Errorf("invalid center coordinates (%g, %g)", lat, lng)
	}

	// The slack absorbs rounding between the arc math here and in
	// DistanceKm, keeping the box a strict superset of the circle.
	angular := radiusKm / EarthRadiusKm * (1 + 1e-12)
	latR := lat * math.Pi / 180
	angularDeg := angular * 180 / math.Pi

	box := Box{MinLat: lat - angularDeg, MaxLat: lat + angularDeg}

	fullLng := false
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		// Band touches a pole: every longitude is in range.
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		fullLng = true
	}

	sinRatio := math.Sin(angular) / math.Cos(latR)
	if fullLng || sinRatio >= 1 || sinRatio <= -1 {
		box.MinLng = -180
		box.MaxLng = 180
		return box, nil
	}

	deltaDeg := math.Asin(sinRatio) * 180 / math.Pi
	box.MinLng = lng - deltaDeg
	box.MaxLng = lng + deltaDeg
	return box, nil
}

// ValidCoordinates reports whether latitude is in [-90,90] and longitude
// in [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
