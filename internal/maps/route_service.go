package maps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"

	gmaps "googlemaps.github.io/maps"

	"safetaxi/internal/types"
)

const (
	googleService  = "google"
	googleLanguage = "ko"
	googleRegion   = "KR"
)

// GoogleClient implements Router and Geocoder on the Google Maps web services.
// Google does not quote taxi fares in Korea, so routes are priced by the
// FareEstimator unless the response carries a KRW fare.
type GoogleClient struct {
	client *gmaps.Client
	fares  FareEstimator
}

// NewGoogleClient creates a client with the given API key. Extra options, such
// as gmaps.WithBaseURL for tests, are passed through to the maps client.
func NewGoogleClient(apiKey string, fares FareEstimator, opts ...gmaps.ClientOption) (*GoogleClient, error) {
	opts = append([]gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}, opts...)
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleClient{client: client, fares: fares}, nil
}

// Route returns the first driving route between origin and destination.
func (g *GoogleClient) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	r := &gmaps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        gmaps.TravelModeDriving,
		Language:    googleLanguage,
		Region:      googleRegion,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		if isGoogleNoResult(err) {
			return Route{}, &RouteError{Code: 1, Message: err.Error()}
		}
		return Route{}, googleError("directions", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, &RouteError{Code: 1, Message: "no route found"}
	}

	var out Route
	for _, leg := range routes[0].Legs {
		out.DistanceM += leg.Distance.Meters
		out.Duration += leg.Duration
	}

	if f := routes[0].Fare; f != nil && f.Currency == types.CurrencyKRW {
		out.Fare = types.Won(int64(math.Round(f.Value)))
		return out, nil
	}
	if g.fares == nil {
		return Route{}, &ExternalError{Service: googleService, Op: "directions",
			Err: errors.New("response has no fare and no estimator is configured")}
	}
	fare, err := g.fares.EstimateFare(ctx, out.DistanceM, out.Duration)
	if err != nil {
		return Route{}, fmt.Errorf("estimate fare: %w", err)
	}
	out.Fare = fare
	out.FareEstimated = true
	return out, nil
}

// isGoogleNoResult reports the statuses Google uses for "asked fine, found nothing".
func isGoogleNoResult(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "NOT_FOUND")
}

// googleError wraps a client error; quota and server statuses are retryable,
// request and auth statuses are not.
func googleError(op string, err error) *ExternalError {
	temporary := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) {
		temporary = true
	}
	msg := err.Error()
	if strings.Contains(msg, "OVER_QUERY_LIMIT") || strings.Contains(msg, "UNKNOWN_ERROR") {
		temporary = true
	}
	return &ExternalError{Service: googleService, Op: op, Err: err, Temporary: temporary}
}
