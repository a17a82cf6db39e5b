// README: Fleet handlers: list, get, reseed and straight-line nearby search.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/types"
)

type FleetService interface {
	List(ctx context.Context) ([]fleet.Taxi, error)
	Get(ctx context.Context, id types.ID) (fleet.Taxi, error)
	Reseed(ctx context.Context, cmd fleet.ReseedCommand) ([]fleet.Taxi, error)
	DefaultCommand(center types.Point) fleet.ReseedCommand
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]fleet.NearbyTaxi, error)
}

type TaxiHandler struct {
	fleet  FleetService
	center types.Point
}

// NewTaxiHandler serves the fleet. center is used when a reseed or nearby
// request names no point.
func NewTaxiHandler(svc FleetService, center types.Point) *TaxiHandler {
	return &TaxiHandler{fleet: svc, center: center}
}

func (h *TaxiHandler) List(c *gin.Context) {
	taxis, err := h.fleet.List(c.Request.Context())
	if err != nil {
		writeRideError(c, err)
		return
	}
	if taxis == nil {
		taxis = []fleet.Taxi{}
	}
	writeJSON(c, http.StatusOK, gin.H{"taxis": taxis})
}

func (h *TaxiHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid taxi id")
		return
	}
	t, err := h.fleet.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type reseedReq struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	RadiusKm *float64 `json:"radius_km"`
	Size     int      `json:"size"`
}

func (h *TaxiHandler) Reseed(c *gin.Context) {
	var req reseedReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(c, http.StatusBadRequest, "lat and lng must be given together")
		return
	}

	cmd := h.fleet.DefaultCommand(h.center)
	if req.Lat != nil {
		cmd.Center = types.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	if req.RadiusKm != nil {
		cmd.RadiusKm = *req.RadiusKm
	}
	if req.Size != 0 {
		cmd.Size = req.Size
	}

	taxis, err := h.fleet.Reseed(c.Request.Context(), cmd)
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"taxis": taxis})
}

func (h *TaxiHandler) Nearby(c *gin.Context) {
	p, ok, err := queryPoint(c, "lat", "lng")
	if err != nil {
		writeRideError(c, err)
		return
	}
	if !ok {
		p = h.center
	}

	radius := h.fleet.DefaultCommand(p).RadiusKm
	if v := c.Query("radius_km"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid radius_km")
			return
		}
	}

	taxis, err := h.fleet.Nearby(c.Request.Context(), p, radius)
	if err != nil {
		writeRideError(c, err)
		return
	}
	if taxis == nil {
		taxis = []fleet.NearbyTaxi{}
	}
	writeJSON(c, http.StatusOK, gin.H{"taxis": taxis})
}
