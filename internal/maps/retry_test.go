package maps

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"safetaxi/internal/types"
)

type scriptedRouter struct {
	calls atomic.Int32
	errs  []error
	route Route
	block bool
}

func (r *scriptedRouter) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	n := int(r.calls.Add(1)) - 1
	if r.block {
		<-ctx.Done()
		return Route{}, ctx.Err()
	}
	if n < len(r.errs) && r.errs[n] != nil {
		return Route{}, r.errs[n]
	}
	return r.route, nil
}

var fastPolicy = RetryPolicy{Attempts: 3, Timeout: time.Second, Initial: time.Millisecond, Max: 2 * time.Millisecond}

func temporaryErr() error {
	return &ExternalError{Service: "test", Op: "directions", Err: errors.New("503"), Temporary: true}
}

func TestRetryingRouter_RecoversFromTemporaryFailure(t *testing.T) {
	next := &scriptedRouter{errs: []error{temporaryErr(), temporaryErr()}, route: Route{DistanceM: 900}}
	r := NewRetryingRouter(next, "test", fastPolicy)

	got, err := r.Route(context.Background(), types.Point{}, types.Point{})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if got.DistanceM != 900 {
		t.Errorf("DistanceM = %d", got.DistanceM)
	}
	if next.calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls.Load())
	}
}

func TestRetryingRouter_GivesUpAfterAttempts(t *testing.T) {
	next := &scriptedRouter{errs: []error{temporaryErr(), temporaryErr(), temporaryErr(), temporaryErr()}}
	r := NewRetryingRouter(next, "test", fastPolicy)

	_, err := r.Route(context.Background(), types.Point{}, types.Point{})
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if next.calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls.Load())
	}
}

func TestRetryingRouter_PermanentErrorsAreNotRetried(t *testing.T) {
	for _, perm := range []error{
		&RouteError{Code: 104, Message: "too close"},
		&ExternalError{Service: "test", Op: "directions", Err: errors.New("401")},
	} {
		next := &scriptedRouter{errs: []error{perm}}
		r := NewRetryingRouter(next, "test", fastPolicy)
		if _, err := r.Route(context.Background(), types.Point{}, types.Point{}); !errors.Is(err, perm) {
			t.Fatalf("expected %v, got %v", perm, err)
		}
		if next.calls.Load() != 1 {
			t.Errorf("%v: expected 1 call, got %d", perm, next.calls.Load())
		}
	}
}

func TestRetryingRouter_AttemptTimeoutIsTemporary(t *testing.T) {
	next := &scriptedRouter{block: true}
	policy := RetryPolicy{Attempts: 2, Timeout: 10 * time.Millisecond, Initial: time.Millisecond, Max: time.Millisecond}
	r := NewRetryingRouter(next, "test", policy)

	_, err := r.Route(context.Background(), types.Point{}, types.Point{})
	if !errors.Is(err, ErrExternalService) || !IsTemporary(err) {
		t.Fatalf("expected temporary external error, got %v", err)
	}
	if next.calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", next.calls.Load())
	}
}

func TestRetryingRouter_StopsWhenCallerCancels(t *testing.T) {
	next := &scriptedRouter{block: true}
	r := NewRetryingRouter(next, "test", RetryPolicy{Attempts: 5, Timeout: time.Second, Initial: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Route(ctx, types.Point{}, types.Point{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}
	if next.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", next.calls.Load())
	}
}

type scriptedGeocoder struct {
	calls atomic.Int32
	fail  int
}

func (g *scriptedGeocoder) Geocode(ctx context.Context, address string) ([]Location, error) {
	if int(g.calls.Add(1)) <= g.fail {
		return nil, temporaryErr()
	}
	return []Location{{Address: address}}, nil
}

func (g *scriptedGeocoder) ReverseGeocode(ctx context.Context, p types.Point) ([]Location, error) {
	if int(g.calls.Add(1)) <= g.fail {
		return nil, temporaryErr()
	}
	return []Location{{Point: p}}, nil
}

func TestRetryingGeocoder(t *testing.T) {
	next := &scriptedGeocoder{fail: 1}
	g := NewRetryingGeocoder(next, "test", fastPolicy)

	locs, err := g.Geocode(context.Background(), "인하로 100")
	if err != nil || len(locs) != 1 || locs[0].Address != "인하로 100" {
		t.Fatalf("Geocode() = %+v, %v", locs, err)
	}

	next.calls.Store(0)
	p := types.Point{Lat: 37.4, Lng: 126.6}
	locs, err = g.ReverseGeocode(context.Background(), p)
	if err != nil || len(locs) != 1 || locs[0].Point != p {
		t.Fatalf("ReverseGeocode() = %+v, %v", locs, err)
	}
}
