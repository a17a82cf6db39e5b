// README: Base handler utilities (JSON helpers, error mapping, query parsing).
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"safetaxi/internal/maps"
	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/modules/matching"
	"safetaxi/internal/modules/ride"
	"safetaxi/internal/modules/trip"
	"safetaxi/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the uuids taxis are created with.
func isValidID(v string) bool {
	return uuid.Validate(v) == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeRideError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, ride.ErrBadRequest), errors.Is(err, fleet.ErrBadRequest):
		writeError(c, http.StatusBadRequest, "bad request")
	case errors.Is(err, trip.ErrInvalidAddress):
		writeError(c, http.StatusBadRequest, err.Error())
	// A provider outage is reported as such even when it left no route.
	case errors.Is(err, maps.ErrExternalService):
		writeError(c, http.StatusBadGateway, maps.ErrExternalService.Error())
	case errors.Is(err, ride.ErrNoFleet), errors.Is(err, fleet.ErrNotFound), errors.Is(err, matching.ErrNoRouteAvailable):
		writeError(c, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, trip.ErrRouteUnavailable):
		writeError(c, http.StatusUnprocessableEntity, trip.ErrRouteUnavailable.Error())
	case errors.Is(err, fleet.ErrLockBusy):
		writeError(c, http.StatusServiceUnavailable, fleet.ErrLockBusy.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		slog.ErrorContext(c.Request.Context(), "unhandled error", "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{ride.ErrNoFleet, fleet.ErrNotFound, matching.ErrNoRouteAvailable} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// queryPoint reads lat/lng query parameters. ok is false when both are absent.
func queryPoint(c *gin.Context, latKey, lngKey string) (p types.Point, ok bool, err error) {
	latStr, lngStr := c.Query(latKey), c.Query(lngKey)
	if latStr == "" && lngStr == "" {
		return types.Point{}, false, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return types.Point{}, true, ride.ErrBadRequest
	}
	p = types.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return types.Point{}, true, ride.ErrBadRequest
	}
	return p, true, nil
}

// candidateResponse flattens a ranked candidate; duration is in seconds.
type candidateResponse struct {
	Taxi     fleet.Taxi  `json:"taxi"`
	Distance int         `json:"distance"`
	Fare     types.Money `json:"fare"`
	Duration int64       `json:"duration"`
}

func toCandidateResponse(rc matching.RankedCandidate) candidateResponse {
	return candidateResponse{
		Taxi:     rc.Taxi,
		Distance: rc.Metric.DistanceM,
		Fare:     rc.Metric.Fare,
		Duration: seconds(rc.Metric.Duration),
	}
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
