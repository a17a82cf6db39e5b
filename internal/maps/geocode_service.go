package maps

import (
	"context"

	gmaps "googlemaps.github.io/maps"

	"safetaxi/internal/types"
)

// Geocode resolves an address with the Google Geocoding API.
func (g *GoogleClient) Geocode(ctx context.Context, address string) ([]Location, error) {
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address:  address,
		Language: googleLanguage,
		Region:   googleRegion,
	})
	if err != nil {
		if isGoogleNoResult(err) {
			return []Location{}, nil
		}
		return nil, googleError("geocode", err)
	}
	return googleLocations(results, nil), nil
}

// ReverseGeocode resolves the addresses at p. Matches keep p as their point.
func (g *GoogleClient) ReverseGeocode(ctx context.Context, p types.Point) ([]Location, error) {
	results, err := g.client.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng:   &gmaps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: googleLanguage,
	})
	if err != nil {
		if isGoogleNoResult(err) {
			return []Location{}, nil
		}
		return nil, googleError("reverse_geocode", err)
	}
	return googleLocations(results, &p), nil
}

func googleLocations(results []gmaps.GeocodingResult, at *types.Point) []Location {
	locs := make([]Location, 0, len(results))
	for _, r := range results {
		loc := Location{
			Point:   types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Address: r.FormattedAddress,
		}
		if at != nil {
			loc.Point = *at
		}
		locs = append(locs, loc)
	}
	return locs
}
