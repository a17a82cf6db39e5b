package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"safetaxi/internal/maps"
	"safetaxi/internal/types"
)

var pickup = types.Point{Lat: 37.4482020408321, Lng: 126.651415033662}

type mockGeocoder struct {
	locs    []maps.Location
	err     error
	calls   int
	queries []string
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) ([]maps.Location, error) {
	m.calls++
	m.queries = append(m.queries, address)
	return m.locs, m.err
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, p types.Point) ([]maps.Location, error) {
	m.calls++
	return m.locs, m.err
}

type mockRouter struct {
	route       maps.Route
	err         error
	calls       int
	origin, dst types.Point
}

func (m *mockRouter) Route(ctx context.Context, origin, destination types.Point) (maps.Route, error) {
	m.calls++
	m.origin, m.dst = origin, destination
	return m.route, m.err
}

var incheonStation = maps.Location{
	Point:       types.Point{Lat: 37.476, Lng: 126.617},
	Address:     "인천 중구 북성동1가 2-1",
	RoadAddress: "인천 중구 제물량로 269",
}

func TestResolveFare_Success(t *testing.T) {
	geo := &mockGeocoder{locs: []maps.Location{incheonStation, {Address: "second"}}}
	router := &mockRouter{route: maps.Route{DistanceM: 5400, Duration: 14 * time.Minute, Fare: types.Won(9200)}}
	s := NewService(geo, router)

	q, err := s.ResolveFare(context.Background(), " 인천 중구 제물량로 269 ", pickup)
	if err != nil {
		t.Fatalf("ResolveFare() error = %v", err)
	}
	if q.Fare != types.Won(9200) || q.Duration != 14*time.Minute || q.DistanceM != 5400 {
		t.Errorf("unexpected quote %+v", q)
	}
	if q.Destination != incheonStation {
		t.Errorf("expected first geocode match, got %+v", q.Destination)
	}
	if router.origin != pickup || router.dst != incheonStation.Point {
		t.Errorf("routed %v -> %v", router.origin, router.dst)
	}
	if geo.queries[0] != "인천 중구 제물량로 269" {
		t.Errorf("address not trimmed: %q", geo.queries[0])
	}
}

func TestResolveFare_NoGeocodeMatch(t *testing.T) {
	geo := &mockGeocoder{locs: []maps.Location{}}
	router := &mockRouter{}
	s := NewService(geo, router)

	if _, err := s.ResolveFare(context.Background(), "없는 주소", pickup); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if router.calls != 0 {
		t.Errorf("routing service must not be called, got %d calls", router.calls)
	}
}

func TestResolveFare_BlankAddressMakesNoCalls(t *testing.T) {
	geo := &mockGeocoder{}
	router := &mockRouter{}
	s := NewService(geo, router)

	for _, addr := range []string{"", "   "} {
		if _, err := s.ResolveFare(context.Background(), addr, pickup); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%q: expected ErrInvalidAddress, got %v", addr, err)
		}
	}
	if geo.calls != 0 || router.calls != 0 {
		t.Errorf("expected no external calls, got geocode=%d route=%d", geo.calls, router.calls)
	}
}

func TestResolveFare_RouteResultCode(t *testing.T) {
	geo := &mockGeocoder{locs: []maps.Location{incheonStation}}
	router := &mockRouter{err: &maps.RouteError{Code: 104, Message: "too close"}}
	s := NewService(geo, router)

	_, err := s.ResolveFare(context.Background(), "인천역", pickup)
	if !errors.Is(err, ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}
	if errors.Is(err, maps.ErrExternalService) {
		t.Error("route result codes are not external failures")
	}
}

func TestResolveFare_ExternalFailures(t *testing.T) {
	ext := &maps.ExternalError{Service: "kakao", Op: "geocode", Err: errors.New("timeout"), Temporary: true}

	t.Run("geocode", func(t *testing.T) {
		s := NewService(&mockGeocoder{err: ext}, &mockRouter{})
		if _, err := s.ResolveFare(context.Background(), "인천역", pickup); !errors.Is(err, maps.ErrExternalService) {
			t.Fatalf("expected ErrExternalService, got %v", err)
		}
	})
	t.Run("directions", func(t *testing.T) {
		s := NewService(&mockGeocoder{locs: []maps.Location{incheonStation}}, &mockRouter{err: ext})
		_, err := s.ResolveFare(context.Background(), "인천역", pickup)
		if !errors.Is(err, maps.ErrExternalService) || errors.Is(err, ErrRouteUnavailable) {
			t.Fatalf("expected ErrExternalService only, got %v", err)
		}
	})
}

func TestCoordinateAndAddress(t *testing.T) {
	geo := &mockGeocoder{locs: []maps.Location{incheonStation}}
	s := NewService(geo, &mockRouter{})

	loc, err := s.Coordinate(context.Background(), "인천역")
	if err != nil || loc != incheonStation {
		t.Fatalf("Coordinate() = %+v, %v", loc, err)
	}
	loc, err = s.Address(context.Background(), incheonStation.Point)
	if err != nil || loc.RoadAddress != incheonStation.RoadAddress {
		t.Fatalf("Address() = %+v, %v", loc, err)
	}

	if _, err := s.Address(context.Background(), types.Point{Lat: 91}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for invalid point, got %v", err)
	}
	geo.locs = nil
	if _, err := s.Coordinate(context.Background(), "nowhere"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
