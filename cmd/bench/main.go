// README: Smoke and load runner against a running SafeTaxi API plus its Postgres and Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case statusPass:
			pass++
		case statusFail:
			fail++
		case statusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	DSN         string
	RedisAddr   string
	FleetSize   int
	Destination string
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("SAFETAXI_BENCH_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", envOrDefault("SAFETAXI_DB_DSN", ""), "Postgres DSN (empty skips DB checks)")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("SAFETAXI_REDIS_ADDR", ""), "Redis address (empty skips Redis checks)")
	flag.IntVar(&cfg.FleetSize, "fleet-size", envOrDefaultInt("SAFETAXI_FLEET_SIZE", 3), "Fleet size the API is configured with")
	flag.StringVar(&cfg.Destination, "destination", envOrDefault("SAFETAXI_BENCH_DESTINATION", "인천 미추홀구 인하로 100"), "Destination address for call-taxi")
	flag.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("SAFETAXI_BENCH_STRICT", false), "Fail on skipped checks")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("SAFETAXI_BENCH_TIMEOUT", 60*time.Second), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("SAFETAXI_BENCH_CONCURRENCY", 20), "Concurrency for race and load checks")
	flag.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("SAFETAXI_BENCH_DURATION", 10*time.Second), "Duration for load checks")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
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
