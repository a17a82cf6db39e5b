package maps

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gax "github.com/googleapis/gax-go/v2"

	"safetaxi/internal/types"
)

// RetryPolicy bounds every external call: each attempt gets its own timeout
// and temporary failures are retried with exponential backoff.
type RetryPolicy struct {
	Attempts int
	Timeout  time.Duration
	Initial  time.Duration
	Max      time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Initial <= 0 {
		p.Initial = 100 * time.Millisecond
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	return p
}

// do runs fn until it succeeds, fails permanently, runs out of attempts or ctx ends.
func (p RetryPolicy) do(ctx context.Context, service, op string, fn func(context.Context) error) error {
	p = p.normalized()
	bo := gax.Backoff{Initial: p.Initial, Max: p.Max, Multiplier: 2}

	var err error
	for attempt := 1; ; attempt++ {
		err = p.attempt(ctx, service, op, fn)
		if err == nil || !IsTemporary(err) || attempt >= p.Attempts {
			return err
		}

		pause := bo.Pause()
		slog.WarnContext(ctx, "external call failed, retrying",
			"service", service, "op", op, "attempt", attempt, "backoff", pause, "error", err)
		if sleepErr := gax.Sleep(ctx, pause); sleepErr != nil {
			return err
		}
	}
}

func (p RetryPolicy) attempt(ctx context.Context, service, op string, fn func(context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := fn(attemptCtx)
	// A deadline on this attempt alone is a timeout; one on the caller's ctx is not ours to retry.
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !IsTemporary(err) {
		return &ExternalError{Service: service, Op: op, Err: err, Temporary: true}
	}
	return err
}

// RetryingRouter decorates a Router with a RetryPolicy.
type RetryingRouter struct {
	next    Router
	policy  RetryPolicy
	service string
}

func NewRetryingRouter(next Router, service string, policy RetryPolicy) *RetryingRouter {
	return &RetryingRouter{next: next, policy: policy, service: service}
}

func (r *RetryingRouter) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	var out Route
	err := r.policy.do(ctx, r.service, "directions", func(ctx context.Context) error {
		var err error
		out, err = r.next.Route(ctx, origin, destination)
		return err
	})
	return out, err
}

// RetryingGeocoder decorates a Geocoder with a RetryPolicy.
type RetryingGeocoder struct {
	next    Geocoder
	policy  RetryPolicy
	service string
}

func NewRetryingGeocoder(next Geocoder, service string, policy RetryPolicy) *RetryingGeocoder {
	return &RetryingGeocoder{next: next, policy: policy, service: service}
}

func (g *RetryingGeocoder) Geocode(ctx context.Context, address string) ([]Location, error) {
	var out []Location
	err := g.policy.do(ctx, g.service, "geocode", func(ctx context.Context) error {
		var err error
		out, err = g.next.Geocode(ctx, address)
		return err
	})
	return out, err
}

func (g *RetryingGeocoder) ReverseGeocode(ctx context.Context, p types.Point) ([]Location, error) {
	var out []Location
	err := g.policy.do(ctx, g.service, "reverse_geocode", func(ctx context.Context) error {
		var err error
		out, err = g.next.ReverseGeocode(ctx, p)
		return err
	})
	return out, err
}
