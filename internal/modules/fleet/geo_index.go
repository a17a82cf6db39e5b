// README: Fleet position index backed by Redis GEO.
package fleet

import (
	"context"

	"github.com/redis/go-redis/v9"

	"safetaxi/internal/types"
)

const fleetGeoKey = "fleet:taxis"

// GeoHit is one index match with its straight-line distance in km.
type GeoHit struct {
	ID         types.ID
	DistanceKm float64
}

type GeoIndex struct {
	redis *redis.Client
}

func NewGeoIndex(redis *redis.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

// Replace rebuilds the index for a freshly seeded fleet in a single MULTI/EXEC.
func (g *GeoIndex) Replace(ctx context.Context, taxis []Taxi) error {
	_, err := g.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, fleetGeoKey)
		if len(taxis) == 0 {
			return nil
		}
		locs := make([]*redis.GeoLocation, len(taxis))
		for i, t := range taxis {
			locs[i] = &redis.GeoLocation{
				Name:      string(t.ID),
				Longitude: t.Position.Lng,
				Latitude:  t.Position.Lat,
			}
		}
		pipe.GeoAdd(ctx, fleetGeoKey, locs...)
		return nil
	})
	return err
}

// Nearby returns indexed taxis within radiusKm of p, closest first.
func (g *GeoIndex) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]GeoHit, error) {
	results, err := g.redis.GeoSearchLocation(ctx, fleetGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	hits := make([]GeoHit, len(results))
	for i, r := range results {
		hits[i] = GeoHit{ID: types.ID(r.Name), DistanceKm: r.Dist}
	}
	return hits, nil
}
