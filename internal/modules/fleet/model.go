// README: Taxi aggregate and fleet-level errors.
package fleet

import (
	"errors"
	"time"

	"safetaxi/internal/types"
)

var (
	ErrNotFound   = errors.New("taxi not found")
	ErrBadRequest = errors.New("bad request")
	ErrLockBusy   = errors.New("fleet reseed already in progress")
)

// Taxi is a demo vehicle parked at a fixed coordinate. Taxis are regenerated
// on every reseed and are read-only in between.
type Taxi struct {
	ID          types.ID    `json:"id"`
	Plate       string      `json:"license_number"`
	Position    types.Point `json:"position"`
	DriverName  string      `json:"driver_name"`
	DriverPhone string      `json:"driver_phone"`
	Acceptance  int         `json:"acceptance"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NearbyTaxi is a taxi with its straight-line distance from a query point.
type NearbyTaxi struct {
	Taxi       Taxi    `json:"taxi"`
	DistanceKm float64 `json:"distance_km"`
}

type ReseedCommand struct {
	Center   types.Point
	RadiusKm float64
	// Size defaults to the configured fleet size when zero.
	Size int
}
