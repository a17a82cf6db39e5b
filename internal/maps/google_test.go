package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gmaps "googlemaps.github.io/maps"

	"safetaxi/internal/types"
)

type fixedFares struct {
	fare  types.Money
	err   error
	calls int
}

func (f *fixedFares) EstimateFare(ctx context.Context, distanceM int, duration time.Duration) (types.Money, error) {
	f.calls++
	return f.fare, f.err
}

func newGoogleTestServer(t *testing.T, fares FareEstimator, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewGoogleClient("test-key", fares, gmaps.WithBaseURL(srv.URL), gmaps.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewGoogleClient() error = %v", err)
	}
	return client
}

const twoLegRoute = `{"status":"OK","routes":[{"legs":[
	{"distance":{"text":"1.0 km","value":1000},"duration":{"text":"3 mins","value":180}},
	{"distance":{"text":"0.5 km","value":500},"duration":{"text":"2 mins","value":120}}]%s}]}`

var (
	gateOrigin = types.Point{Lat: 37.448202, Lng: 126.651415}
	stationDst = types.Point{Lat: 37.476, Lng: 126.617}
)

func TestGoogleRoute_EstimatesFareWhenNoneQuoted(t *testing.T) {
	fares := &fixedFares{fare: types.Won(6100)}
	client := newGoogleTestServer(t, fares, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/directions/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("origin") != "37.448202,126.651415" || q.Get("mode") != "driving" || q.Get("language") != "ko" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key = %q", q.Get("key"))
		}
		_, _ = w.Write([]byte(fmt.Sprintf(twoLegRoute, "")))
	})

	route, err := client.Route(context.Background(), gateOrigin, stationDst)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if route.DistanceM != 1500 || route.Duration != 5*time.Minute {
		t.Errorf("legs not summed: %+v", route)
	}
	if route.Fare != types.Won(6100) || !route.FareEstimated {
		t.Errorf("expected estimated fare 6100, got %+v", route)
	}
	if fares.calls != 1 {
		t.Errorf("expected 1 estimate, got %d", fares.calls)
	}
}

func TestGoogleRoute_UsesQuotedKRWFare(t *testing.T) {
	fares := &fixedFares{fare: types.Won(1)}
	client := newGoogleTestServer(t, fares, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fmt.Sprintf(twoLegRoute, `,"fare":{"currency":"KRW","value":5600.4,"text":"₩5,600"}`)))
	})

	route, err := client.Route(context.Background(), gateOrigin, stationDst)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if route.Fare != types.Won(5600) || route.FareEstimated {
		t.Errorf("expected quoted fare 5600, got %+v", route)
	}
	if fares.calls != 0 {
		t.Errorf("estimator should not be asked, got %d calls", fares.calls)
	}
}

func TestGoogleRoute_ForeignCurrencyIsEstimated(t *testing.T) {
	fares := &fixedFares{fare: types.Won(4800)}
	client := newGoogleTestServer(t, fares, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fmt.Sprintf(twoLegRoute, `,"fare":{"currency":"USD","value":4.2,"text":"$4.20"}`)))
	})

	route, err := client.Route(context.Background(), gateOrigin, stationDst)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if route.Fare != types.Won(4800) || !route.FareEstimated {
		t.Errorf("expected estimated KRW fare, got %+v", route)
	}
}

func TestGoogleRoute_NoEstimator(t *testing.T) {
	client := newGoogleTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fmt.Sprintf(twoLegRoute, "")))
	})

	_, err := client.Route(context.Background(), gateOrigin, stationDst)
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if IsTemporary(err) {
		t.Error("a missing estimator must not be retried")
	}
}

func TestGoogleRoute_EstimatorErrorSurfaces(t *testing.T) {
	boom := errors.New("fare_rates unavailable")
	client := newGoogleTestServer(t, &fixedFares{err: boom}, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fmt.Sprintf(twoLegRoute, "")))
	})

	if _, err := client.Route(context.Background(), gateOrigin, stationDst); !errors.Is(err, boom) {
		t.Fatalf("expected estimator error, got %v", err)
	}
}

func TestGoogleRoute_NoResultIsRouteError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero results", `{"status":"ZERO_RESULTS","routes":[]}`},
		{"not found", `{"status":"NOT_FOUND","error_message":"origin not geocodable","routes":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newGoogleTestServer(t, &fixedFares{}, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Route(context.Background(), gateOrigin, stationDst)
			if !errors.Is(err, ErrRouteFailed) {
				t.Fatalf("expected ErrRouteFailed, got %v", err)
			}
			var re *RouteError
			if !errors.As(err, &re) || re.Code != 1 {
				t.Errorf("expected result code 1, got %v", err)
			}
			if errors.Is(err, ErrExternalService) {
				t.Error("a missing route is not a provider failure")
			}
		})
	}
}

func TestGoogleRoute_StatusClassification(t *testing.T) {
	tests := []struct {
		status    string
		temporary bool
	}{
		{"OVER_QUERY_LIMIT", true},
		{"UNKNOWN_ERROR", true},
		{"REQUEST_DENIED", false},
		{"INVALID_REQUEST", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			client := newGoogleTestServer(t, &fixedFares{}, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + tt.status + `","error_message":"nope","routes":[]}`))
			})
			_, err := client.Route(context.Background(), gateOrigin, stationDst)
			if !errors.Is(err, ErrExternalService) {
				t.Fatalf("expected ErrExternalService, got %v", err)
			}
			if IsTemporary(err) != tt.temporary {
				t.Errorf("IsTemporary = %v, want %v", IsTemporary(err), tt.temporary)
			}
		})
	}
}

func TestGoogleRoute_TransportErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewGoogleClient("test-key", &fixedFares{}, gmaps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewGoogleClient() error = %v", err)
	}
	srv.Close()

	_, err = client.Route(context.Background(), gateOrigin, stationDst)
	if !errors.Is(err, ErrExternalService) || !IsTemporary(err) {
		t.Fatalf("expected temporary external error, got %v", err)
	}
}

func TestGoogleGeocode(t *testing.T) {
	client := newGoogleTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != "인천역" {
			t.Errorf("address = %q", got)
		}
		if got := r.URL.Query().Get("region"); got != "KR" {
			t.Errorf("region = %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{
			"formatted_address":"대한민국 인천광역시 중구 제물량로 269",
			"geometry":{"location":{"lat":37.476,"lng":126.617}}}]}`))
	})

	locs, err := client.Geocode(context.Background(), "인천역")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if len(locs) != 1 || locs[0].Point != stationDst || locs[0].Address != "대한민국 인천광역시 중구 제물량로 269" {
		t.Fatalf("unexpected locations %+v", locs)
	}
}

func TestGoogleGeocode_NoMatchesIsEmpty(t *testing.T) {
	for _, body := range []string{
		`{"status":"ZERO_RESULTS","results":[]}`,
		`{"status":"NOT_FOUND","results":[]}`,
	} {
		client := newGoogleTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		locs, err := client.Geocode(context.Background(), "nowhere")
		if err != nil {
			t.Fatalf("%s: Geocode() error = %v", body, err)
		}
		if locs == nil || len(locs) != 0 {
			t.Errorf("%s: expected empty non-nil result, got %#v", body, locs)
		}
	}
}

func TestGoogleGeocode_QuotaIsTemporary(t *testing.T) {
	client := newGoogleTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","results":[]}`))
	})
	_, err := client.Geocode(context.Background(), "인천역")
	var ext *ExternalError
	if !errors.As(err, &ext) || ext.Op != "geocode" || !ext.Temporary {
		t.Fatalf("expected temporary geocode error, got %v", err)
	}
}

func TestGoogleReverseGeocode_KeepsQueryPoint(t *testing.T) {
	client := newGoogleTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got == "" {
			t.Error("latlng missing from reverse geocode request")
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{
			"formatted_address":"대한민국 인천광역시 미추홀구 용현동 253",
			"geometry":{"location":{"lat":37.4485,"lng":126.6510}}}]}`))
	})

	locs, err := client.ReverseGeocode(context.Background(), gateOrigin)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if len(locs) != 1 || locs[0].Point != gateOrigin {
		t.Fatalf("expected query point to be kept, got %+v", locs)
	}
}
