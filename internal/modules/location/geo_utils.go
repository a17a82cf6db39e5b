// Package location contains pure geographic computation helpers: great-circle
// distance, distance ordering and random point sampling around a center.
package location

import (
	"math"
	"math/rand/v2"

	"safetaxi/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two points.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// RandomPoint returns a point uniformly drawn in distance ([0, radiusKm]) and
// bearing ([0, 2π)) from center, solved with the spherical destination-point
// formula. radiusKm must be >= 0. A nil rng uses the process source.
func RandomPoint(rng *rand.Rand, center types.Point, radiusKm float64) types.Point {
	var dist, bearing float64
	if rng != nil {
		dist = rng.Float64() * radiusKm
		bearing = rng.Float64() * 2 * math.Pi
	} else {
		dist = rand.Float64() * radiusKm
		bearing = rand.Float64() * 2 * math.Pi
	}
	return Destination(center, dist, bearing)
}

// Destination solves the great-circle forward problem: the point reached from
// start after travelling distKm along the initial bearing (radians from north).
func Destination(start types.Point, distKm, bearing float64) types.Point {
	lat := degreesToRadians(start.Lat)
	lng := degreesToRadians(start.Lng)
	delta := distKm / earthRadiusKm

	newLat := math.Asin(math.Sin(lat)*math.Cos(delta) +
		math.Cos(lat)*math.Sin(delta)*math.Cos(bearing))
	newLng := lng + math.Atan2(
		math.Sin(bearing)*math.Sin(delta)*math.Cos(lat),
		math.Cos(delta)-math.Sin(lat)*math.Sin(newLat),
	)

	return types.Point{
		Lat: radiansToDegrees(newLat),
		Lng: normalizeLng(radiansToDegrees(newLng)),
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// normalizeLng folds a longitude back into [-180, 180] after crossing the antimeridian.
func normalizeLng(lng float64) float64 {
	if lng > 180 || lng < -180 {
		lng = math.Mod(lng+540, 360) - 180
	}
	return lng
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function. Equal
// distances keep their input order.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
