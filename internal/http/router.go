// README: HTTP router registration.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safetaxi/internal/http/middleware"
)

const healthCheckTimeout = 2 * time.Second

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())

	r.GET("/health", s.health)

	api := r.Group("/api")

	api.GET("/taxis", s.taxi.List)
	api.POST("/taxis", s.taxi.Reseed)
	api.GET("/taxis/nearby", s.taxi.Nearby)
	api.GET("/taxis/:id", s.taxi.Get)

	api.GET("/nearby-taxi", s.ride.NearestTaxi)
	api.POST("/call-taxi", s.ride.CallTaxi)

	api.GET("/coordinate", s.geocode.Coordinate)
	api.GET("/address", s.geocode.Address)

	return r
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
}
