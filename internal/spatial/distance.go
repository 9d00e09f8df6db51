package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// Distance calculates the planar Euclidean distance between two positions
// in the local projection, in meters.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// HaversineDistance calculates the great-circle distance between two points
// in meters. Used when comparing raw (unprojected) fixes.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Projection maps geographic coordinates onto a local planar frame centered
// on an origin, using an equirectangular approximation. Accurate to well
// under a meter at the few-kilometer scale of an ATLAS deployment.
type Projection struct {
	OriginLat float64
	OriginLon float64
}

// NewProjection creates a local projection centered on the given origin.
func NewProjection(lat, lon float64) Projection {
	return Projection{OriginLat: lat, OriginLon: lon}
}

// ToPlanar converts a lat/lon pair to local X/Y meters.
func (p Projection) ToPlanar(lat, lon float64) (x, y float64) {
	origin := s2.LatLngFromDegrees(p.OriginLat, p.OriginLon)
	pt := s2.LatLngFromDegrees(lat, lon)

	x = (pt.Lng - origin.Lng).Radians() * EarthRadiusMeters * math.Cos(origin.Lat.Radians())
	y = (pt.Lat - origin.Lat).Radians() * EarthRadiusMeters
	return x, y
}

// maxProjectionRange bounds how far from the origin ToPlanar output is
// trusted. Beyond roughly 150 km the equirectangular error grows past
// the position accuracy of the fixes themselves.
const maxProjectionRange = 150 * 1000.0

// InRange reports whether a point lies close enough to the projection
// origin for ToPlanar output to be usable.
func (p Projection) InRange(lat, lon float64) bool {
	return HaversineDistance(p.OriginLat, p.OriginLon, lat, lon) <= maxProjectionRange
}

// FromPlanar converts local X/Y meters back to a lat/lon pair.
func (p Projection) FromPlanar(x, y float64) (lat, lon float64) {
	origin := s2.LatLngFromDegrees(p.OriginLat, p.OriginLon)

	lat = origin.Lat.Degrees() + (y/EarthRadiusMeters)*180/math.Pi
	lon = origin.Lng.Degrees() + (x/(EarthRadiusMeters*math.Cos(origin.Lat.Radians())))*180/math.Pi
	return lat, lon
}
