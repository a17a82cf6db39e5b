// README: Config loader with env defaults for HTTP, DB, Redis, maps providers and matching settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"safetaxi/internal/types"
)

const (
	ProviderKakao  = "kakao"
	ProviderGoogle = "google"
)

type MatchingConfig struct {
	// Rider is the reference destination used when a request carries no rider position.
	Rider          types.Point
	CandidateCount int
	Concurrency    int
}

type FleetConfig struct {
	RadiusKm float64
	Size     int
	// MaxSize caps a single reseed request.
	MaxSize  int
	LockTTL  time.Duration
}

type MapsConfig struct {
	Provider       string
	KakaoKey       string
	GoogleKey      string
	Timeout        time.Duration
	RetryAttempts  int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RouteCacheTTL  time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Pricing struct {
		// Region selects a fare_rates override; unknown regions use the built-in meter.
		Region string
	}
	Matching MatchingConfig
	Fleet    FleetConfig
	Maps     MapsConfig
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("SAFETAXI_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("SAFETAXI_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("SAFETAXI_REDIS_ADDR", "")
	cfg.Log.Level = envOrDefault("SAFETAXI_LOG_LEVEL", "info")
	cfg.Pricing.Region = envOrDefault("SAFETAXI_FARE_REGION", "default")

	// Inha University main gate, the point the demo fleet is seeded around.
	cfg.Matching.Rider = types.Point{
		Lat: envOrDefaultFloat("SAFETAXI_RIDER_LAT", 37.4482020408321),
		Lng: envOrDefaultFloat("SAFETAXI_RIDER_LNG", 126.651415033662),
	}
	cfg.Matching.CandidateCount = envOrDefaultInt("SAFETAXI_CANDIDATE_COUNT", 3)
	cfg.Matching.Concurrency = envOrDefaultInt("SAFETAXI_MATCH_CONCURRENCY", 4)

	cfg.Fleet.RadiusKm = envOrDefaultFloat("SAFETAXI_FLEET_RADIUS_KM", 1.0)
	cfg.Fleet.Size = envOrDefaultInt("SAFETAXI_FLEET_SIZE", 3)
	cfg.Fleet.MaxSize = envOrDefaultInt("SAFETAXI_FLEET_MAX_SIZE", 100)
	cfg.Fleet.LockTTL = envOrDefaultDuration("SAFETAXI_LOCK_TTL", 10*time.Second)

	cfg.Maps.Provider = strings.ToLower(envOrDefault("SAFETAXI_MAPS_PROVIDER", ProviderKakao))
	cfg.Maps.KakaoKey = envOrDefault("SAFETAXI_KAKAO_KEY", "")
	cfg.Maps.GoogleKey = envOrDefault("SAFETAXI_GOOGLE_MAPS_KEY", "")
	cfg.Maps.Timeout = envOrDefaultDuration("SAFETAXI_EXTERNAL_TIMEOUT", 5*time.Second)
	cfg.Maps.RetryAttempts = envOrDefaultInt("SAFETAXI_RETRY_ATTEMPTS", 3)
	cfg.Maps.InitialBackoff = envOrDefaultDuration("SAFETAXI_RETRY_INITIAL_BACKOFF", 200*time.Millisecond)
	cfg.Maps.MaxBackoff = envOrDefaultDuration("SAFETAXI_RETRY_MAX_BACKOFF", 2*time.Second)
	cfg.Maps.RouteCacheTTL = envOrDefaultDuration("SAFETAXI_ROUTE_CACHE_TTL", time.Minute)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate collects every problem so a misconfigured deployment fails once with the full list.
func (c Config) validate() error {
	var problems []string
	if !c.Matching.Rider.Valid() {
		problems = append(problems, "SAFETAXI_RIDER_LAT/LNG out of range")
	}
	if c.Matching.CandidateCount < 1 {
		problems = append(problems, "SAFETAXI_CANDIDATE_COUNT must be >= 1")
	}
	if c.Matching.Concurrency < 1 {
		problems = append(problems, "SAFETAXI_MATCH_CONCURRENCY must be >= 1")
	}
	if c.Fleet.RadiusKm < 0 {
		problems = append(problems, "SAFETAXI_FLEET_RADIUS_KM must be >= 0")
	}
	if c.Fleet.Size < 1 {
		problems = append(problems, "SAFETAXI_FLEET_SIZE must be >= 1")
	}
	if c.Fleet.MaxSize < c.Fleet.Size {
		problems = append(problems, "SAFETAXI_FLEET_MAX_SIZE must be >= SAFETAXI_FLEET_SIZE")
	}
	switch c.Maps.Provider {
	case ProviderKakao:
		if c.Maps.KakaoKey == "" {
			problems = append(problems, "SAFETAXI_KAKAO_KEY is required for the kakao provider")
		}
	case ProviderGoogle:
		if c.Maps.GoogleKey == "" {
			problems = append(problems, "SAFETAXI_GOOGLE_MAPS_KEY is required for the google provider")
		}
	default:
		problems = append(problems, "SAFETAXI_MAPS_PROVIDER must be kakao or google")
	}
	if c.Maps.RetryAttempts < 1 {
		problems = append(problems, "SAFETAXI_RETRY_ATTEMPTS must be >= 1")
	}
	if c.Maps.Timeout <= 0 {
		problems = append(problems, "SAFETAXI_EXTERNAL_TIMEOUT must be > 0")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
