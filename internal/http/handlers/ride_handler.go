// README: Ride handlers: nearest taxi by driving distance and taxi calls.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"safetaxi/internal/modules/matching"
	"safetaxi/internal/modules/ride"
	"safetaxi/internal/types"
)

type RideService interface {
	NearestTaxi(ctx context.Context, rider *types.Point) (matching.RankedCandidate, error)
	CallTaxi(ctx context.Context, req ride.CallRequest) (ride.CallResult, error)
}

type RideHandler struct {
	ride RideService
}

func NewRideHandler(svc RideService) *RideHandler {
	return &RideHandler{ride: svc}
}

func (h *RideHandler) NearestTaxi(c *gin.Context) {
	p, ok, err := queryPoint(c, "lat", "lng")
	if err != nil {
		writeRideError(c, err)
		return
	}
	var rider *types.Point
	if ok {
		rider = &p
	}

	best, err := h.ride.NearestTaxi(c.Request.Context(), rider)
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toCandidateResponse(best))
}

type callTaxiReq struct {
	DestinationAddress string   `json:"destination_address"`
	Lat                *float64 `json:"lat"`
	Lng                *float64 `json:"lng"`
}

type callTaxiResp struct {
	Candidates  []candidateResponse `json:"candidates"`
	Destination any                 `json:"destination,omitempty"`
	Fare        *types.Money        `json:"fare,omitempty"`
	Duration    *int64              `json:"duration,omitempty"`
	Distance    *int                `json:"distance,omitempty"`
}

func (h *RideHandler) CallTaxi(c *gin.Context) {
	var req callTaxiReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(c, http.StatusBadRequest, "lat and lng must be given together")
		return
	}
	cmd := ride.CallRequest{DestinationAddress: req.DestinationAddress}
	if req.Lat != nil {
		cmd.Rider = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
	}

	res, err := h.ride.CallTaxi(c.Request.Context(), cmd)
	if err != nil {
		writeRideError(c, err)
		return
	}

	resp := callTaxiResp{Candidates: make([]candidateResponse, 0, len(res.Candidates))}
	for _, rc := range res.Candidates {
		resp.Candidates = append(resp.Candidates, toCandidateResponse(rc))
	}
	if q := res.Quote; q != nil {
		dur := seconds(q.Duration)
		resp.Destination = q.Destination
		resp.Fare = &q.Fare
		resp.Duration = &dur
		resp.Distance = &q.DistanceM
	}
	writeJSON(c, http.StatusOK, resp)
}
