// README: Shared identifiers and coordinates.
package types

import (
	"fmt"
	"math"
	"strconv"
)

type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Round6 rounds both components to 6 decimal places, the precision taxis are stored with.
func (p Point) Round6() Point {
	return Point{Lat: round6(p.Lat), Lng: round6(p.Lng)}
}

// LngLat formats the point as "lng,lat", the order Kakao APIs expect.
func (p Point) LngLat() string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
