package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// earthRadiusMiles is the Earth radius used for all distance calculations
const earthRadiusMiles = 3956.0

// Distance calculates the great-circle distance in miles between two
// points given in decimal degrees
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMiles
}

// ValidLatLon validates latitude and longitude values. The all-zero pair
// is a "no fix" sentinel, not a real location
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 &&
		lon >= -180 && lon <= 180 &&
		!(lat == 0 && lon == 0)
}
