// Package maps talks to the external geocoding and routing services and
// normalises their answers into Route and Location values.
package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safetaxi/internal/types"
)

var (
	// ErrExternalService matches any *ExternalError: network, timeout or malformed response.
	ErrExternalService = errors.New("external service error")
	// ErrRouteFailed matches any *RouteError: the provider answered but found no usable route.
	ErrRouteFailed = errors.New("route lookup failed")
)

// Route is the summary of one driving route.
type Route struct {
	DistanceM int           `json:"distance_m"`
	Duration  time.Duration `json:"duration"`
	Fare      types.Money   `json:"fare"`
	Toll      types.Money   `json:"toll"`
	// FareEstimated is set when the provider quoted no taxi fare and the metered estimate was used.
	FareEstimated bool `json:"fare_estimated"`
}

// Location is one geocoding match.
type Location struct {
	Point       types.Point `json:"point"`
	Address     string      `json:"address"`
	RoadAddress string      `json:"road_address,omitempty"`
}

// Router computes a driving route between two coordinates.
type Router interface {
	Route(ctx context.Context, origin, destination types.Point) (Route, error)
}

// Geocoder resolves addresses to coordinates and back. Zero matches is an
// empty slice with a nil error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Location, error)
	ReverseGeocode(ctx context.Context, p types.Point) ([]Location, error)
}

// FareEstimator quotes a metered fare when a provider does not.
type FareEstimator interface {
	EstimateFare(ctx context.Context, distanceM int, duration time.Duration) (types.Money, error)
}

type ExternalError struct {
	Service string
	Op      string
	Err     error
	// Temporary marks failures worth retrying: transport errors, timeouts, 5xx and 429.
	Temporary bool
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func (e *ExternalError) Is(target error) bool { return target == ErrExternalService }

// RouteError carries the provider's non-zero result code.
type RouteError struct {
	Code    int
	Message string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("route result code %d: %s", e.Code, e.Message)
}

func (e *RouteError) Is(target error) bool { return target == ErrRouteFailed }

// IsTemporary reports whether err is an external failure worth retrying.
func IsTemporary(err error) bool {
	var ee *ExternalError
	return errors.As(err, &ee) && ee.Temporary
}
