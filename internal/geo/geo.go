package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// PointFromPair unpacks a stored coordinate pair. Storage order is
// [longitude, latitude]. Returns false unless the pair is exactly two finite
// numbers inside valid ranges.
func PointFromPair(pair []float64) (Point, bool) {
	if len(pair) != 2 {
		return Point{}, false
	}
	lon, lat := pair[0], pair[1]
	if !finite(lat) || !finite(lon) {
		return Point{}, false
	}
	if !ValidLatitude(lat) || !ValidLongitude(lon) {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}

func ValidLatitude(v float64) bool  { return v >= -90 && v <= 90 }
func ValidLongitude(v float64) bool { return v >= -180 && v <= 180 }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance computes the great-circle distance between two points in
// kilometers using the Haversine formula.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
