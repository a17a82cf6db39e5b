// README: Entry point; loads config, wires stores, map providers and services, serves HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"safetaxi/internal/config"
	httptransport "safetaxi/internal/http"
	"safetaxi/internal/infra"
	"safetaxi/internal/maps"
	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/modules/matching"
	"safetaxi/internal/modules/pricing"
	"safetaxi/internal/modules/ride"
	"safetaxi/internal/modules/trip"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log.Level))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	checks := map[string]httptransport.HealthCheck{}

	var (
		dbPool      *pgxpool.Pool
		redisClient *redis.Client
		err         error
	)
	if cfg.DB.DSN != "" {
		dbPool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		checks["db"] = dbPool.Ping
	}
	if cfg.Redis.Addr != "" {
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// Pricing
	var rates pricing.RateSource
	if dbPool != nil {
		rateStore := pricing.NewStore(dbPool)
		seeded, err := rateStore.SeedDefaultRate(ctx)
		if err != nil {
			return fmt.Errorf("seed fare rates: %w", err)
		}
		if seeded {
			slog.Info("seeded default fare rate", "region", pricing.DefaultRegion)
		}
		rates = rateStore
	}
	pricingSvc := pricing.NewService(rates, cfg.Pricing.Region)

	// Maps providers
	geocoder, router, err := newMapsProviders(cfg.Maps, pricingSvc, redisClient)
	if err != nil {
		return err
	}

	// Fleet
	var (
		store  fleet.Store = fleet.NewMemoryStore()
		index  fleet.PositionIndex
		locker fleet.Locker = fleet.NewLocalLocker()
	)
	if dbPool != nil {
		store = fleet.NewPGStore(dbPool)
	}
	if redisClient != nil {
		index = fleet.NewGeoIndex(redisClient)
		locker = fleet.NewRedisLocker(redisClient, cfg.Fleet.LockTTL)
	}
	fleetSvc := fleet.NewService(store, index, locker, fleet.NewGenerator(nil), cfg.Fleet)

	matchingSvc := matching.NewService(router, cfg.Matching)
	tripSvc := trip.NewService(geocoder, router)
	rideSvc := ride.NewService(fleetSvc, matchingSvc, tripSvc, cfg.Matching)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Fleet:   fleetSvc,
		Ride:    rideSvc,
		Geocode: tripSvc,
		Center:  cfg.Matching.Rider,
		Checks:  checks,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening",
			"addr", cfg.HTTP.Addr, "maps_provider", cfg.Maps.Provider,
			"postgres", dbPool != nil, "redis", redisClient != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newMapsProviders builds the configured provider wrapped in retries and, when
// Redis is available, a route cache in front of the retries.
func newMapsProviders(cfg config.MapsConfig, fares maps.FareEstimator, rdb *redis.Client) (maps.Geocoder, maps.Router, error) {
	var (
		geocoder maps.Geocoder
		router   maps.Router
	)
	switch cfg.Provider {
	case config.ProviderGoogle:
		client, err := maps.NewGoogleClient(cfg.GoogleKey, fares)
		if err != nil {
			return nil, nil, err
		}
		geocoder, router = client, client
	default:
		client := maps.NewKakaoClient(cfg.KakaoKey)
		geocoder, router = client, client
	}

	policy := maps.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Timeout:  cfg.Timeout,
		Initial:  cfg.InitialBackoff,
		Max:      cfg.MaxBackoff,
	}
	geocoder = maps.NewRetryingGeocoder(geocoder, cfg.Provider, policy)
	router = maps.NewRetryingRouter(router, cfg.Provider, policy)
	if rdb != nil && cfg.RouteCacheTTL > 0 {
		router = maps.NewCachedRouter(router, rdb, cfg.RouteCacheTTL)
	}
	return geocoder, router, nil
}

func newLogger(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}).WithAttrs([]slog.Attr{slog.String("service", "safetaxi-api")})
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
