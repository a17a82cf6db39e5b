// README: Address lookups in both directions.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"safetaxi/internal/maps"
	"safetaxi/internal/types"
)

type GeocodeService interface {
	Coordinate(ctx context.Context, address string) (maps.Location, error)
	Address(ctx context.Context, p types.Point) (maps.Location, error)
}

type GeocodeHandler struct {
	geo GeocodeService
}

func NewGeocodeHandler(svc GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geo: svc}
}

func (h *GeocodeHandler) Coordinate(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		writeError(c, http.StatusBadRequest, "missing address")
		return
	}
	loc, err := h.geo.Coordinate(c.Request.Context(), address)
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, loc)
}

func (h *GeocodeHandler) Address(c *gin.Context) {
	p, ok, err := queryPoint(c, "lat", "lng")
	if err != nil {
		writeRideError(c, err)
		return
	}
	if !ok {
		writeError(c, http.StatusBadRequest, "missing lat/lng")
		return
	}
	loc, err := h.geo.Address(c.Request.Context(), p)
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, loc)
}
