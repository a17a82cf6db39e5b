package maps

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"safetaxi/internal/types"
)

const routeCachePrefix = "route:"

// CachedRouter keeps successful routes in Redis for ttl. Cache failures are
// logged and fall through to the wrapped Router.
type CachedRouter struct {
	next Router
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedRouter(next Router, rdb *redis.Client, ttl time.Duration) *CachedRouter {
	return &CachedRouter{next: next, rdb: rdb, ttl: ttl}
}

func routeCacheKey(origin, destination types.Point) string {
	return routeCachePrefix + origin.Round6().String() + ":" + destination.Round6().String()
}

func (c *CachedRouter) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	key := routeCacheKey(origin, destination)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Route
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		slog.WarnContext(ctx, "route cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "route cache get failed", "key", key, "error", err)
	}

	route, err := c.next.Route(ctx, origin, destination)
	if err != nil {
		return Route{}, err
	}

	if payload, jsonErr := json.Marshal(route); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			slog.WarnContext(ctx, "route cache set failed", "key", key, "error", setErr)
		}
	}
	return route, nil
}
