package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// OpenTestRedis connects to SAFETAXI_TEST_REDIS_ADDR and flushes the selected
// database. It skips the test when the variable is not set.
func OpenTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("SAFETAXI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SAFETAXI_TEST_REDIS_ADDR not set; skipping Redis-backed tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return rdb
}
