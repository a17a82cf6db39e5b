// README: Ride requests and results exposed to the HTTP layer.
package ride

import (
	"errors"

	"safetaxi/internal/modules/matching"
	"safetaxi/internal/modules/trip"
	"safetaxi/internal/types"
)

var (
	ErrNoFleet    = errors.New("no taxi fleet")
	ErrBadRequest = errors.New("bad request")
)

type CallRequest struct {
	DestinationAddress string       `json:"destination_address"`
	Rider              *types.Point `json:"rider,omitempty"`
}

// CallResult holds the closest candidates and, when a destination was given,
// the fare from the best candidate to it.
type CallResult struct {
	Candidates []matching.RankedCandidate `json:"candidates"`
	Quote      *trip.Quote                `json:"quote,omitempty"`
}
