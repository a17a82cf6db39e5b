package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"safetaxi/internal/types"
)

const (
	kakaoService        = "kakao"
	defaultKakaoLocal   = "https://dapi.kakao.com"
	defaultKakaoNavi    = "https://apis-navi.kakaomobility.com"
	kakaoErrorBodyLimit = 512
)

// KakaoClient implements Geocoder (Kakao Local) and Router (Kakao Mobility).
type KakaoClient struct {
	http     *http.Client
	key      string
	localURL string
	naviURL  string
}

type KakaoOption func(*KakaoClient)

func WithKakaoHTTPClient(c *http.Client) KakaoOption {
	return func(k *KakaoClient) { k.http = c }
}

// WithKakaoBaseURLs points the client at other hosts, e.g. an httptest server.
func WithKakaoBaseURLs(local, navi string) KakaoOption {
	return func(k *KakaoClient) {
		k.localURL = strings.TrimRight(local, "/")
		k.naviURL = strings.TrimRight(navi, "/")
	}
}

func NewKakaoClient(apiKey string, opts ...KakaoOption) *KakaoClient {
	c := &KakaoClient{
		http:     &http.Client{},
		key:      apiKey,
		localURL: defaultKakaoLocal,
		naviURL:  defaultKakaoNavi,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type kakaoAddressName struct {
	AddressName string `json:"address_name"`
}

type kakaoAddressResponse struct {
	Documents []struct {
		AddressName string            `json:"address_name"`
		X           string            `json:"x"`
		Y           string            `json:"y"`
		RoadAddress *kakaoAddressName `json:"road_address"`
	} `json:"documents"`
}

type kakaoCoordResponse struct {
	Documents []struct {
		Address     *kakaoAddressName `json:"address"`
		RoadAddress *kakaoAddressName `json:"road_address"`
	} `json:"documents"`
}

type kakaoDirectionsResponse struct {
	Routes []struct {
		ResultCode int    `json:"result_code"`
		ResultMsg  string `json:"result_msg"`
		Summary    struct {
			Distance int `json:"distance"`
			Duration int `json:"duration"`
			Fare     struct {
				Taxi int64 `json:"taxi"`
				Toll int64 `json:"toll"`
			} `json:"fare"`
		} `json:"summary"`
	} `json:"routes"`
}

// Geocode looks up a road or lot address.
func (c *KakaoClient) Geocode(ctx context.Context, address string) ([]Location, error) {
	u := c.localURL + "/v2/local/search/address?query=" + url.QueryEscape(address)

	var resp kakaoAddressResponse
	if err := c.getJSON(ctx, "geocode", u, &resp); err != nil {
		return nil, err
	}

	locs := make([]Location, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		lng, errX := strconv.ParseFloat(d.X, 64)
		lat, errY := strconv.ParseFloat(d.Y, 64)
		if errX != nil || errY != nil {
			return nil, &ExternalError{Service: kakaoService, Op: "geocode",
				Err: fmt.Errorf("malformed coordinate x=%q y=%q", d.X, d.Y)}
		}
		loc := Location{Point: types.Point{Lat: lat, Lng: lng}, Address: d.AddressName}
		if d.RoadAddress != nil {
			loc.RoadAddress = d.RoadAddress.AddressName
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// ReverseGeocode resolves the addresses at p.
func (c *KakaoClient) ReverseGeocode(ctx context.Context, p types.Point) ([]Location, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	u := c.localURL + "/v2/local/geo/coord2address?" + q.Encode()

	var resp kakaoCoordResponse
	if err := c.getJSON(ctx, "reverse_geocode", u, &resp); err != nil {
		return nil, err
	}

	locs := make([]Location, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		loc := Location{Point: p}
		if d.Address != nil {
			loc.Address = d.Address.AddressName
		}
		if d.RoadAddress != nil {
			loc.RoadAddress = d.RoadAddress.AddressName
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Route asks Kakao Mobility for a car route; the summary carries the taxi fare.
func (c *KakaoClient) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	q := url.Values{}
	q.Set("origin", origin.LngLat())
	q.Set("destination", destination.LngLat())
	u := c.naviURL + "/v1/directions?" + q.Encode()

	var resp kakaoDirectionsResponse
	if err := c.getJSON(ctx, "directions", u, &resp); err != nil {
		return Route{}, err
	}
	if len(resp.Routes) == 0 {
		return Route{}, &ExternalError{Service: kakaoService, Op: "directions",
			Err: fmt.Errorf("response has no routes")}
	}

	r := resp.Routes[0]
	if r.ResultCode != 0 {
		return Route{}, &RouteError{Code: r.ResultCode, Message: r.ResultMsg}
	}
	return Route{
		DistanceM: r.Summary.Distance,
		Duration:  time.Duration(r.Summary.Duration) * time.Second,
		Fare:      types.Won(r.Summary.Fare.Taxi),
		Toll:      types.Won(r.Summary.Fare.Toll),
	}, nil
}

func (c *KakaoClient) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &ExternalError{Service: kakaoService, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "KakaoAK "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ExternalError{Service: kakaoService, Op: op, Err: err, Temporary: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, kakaoErrorBodyLimit))
		return &ExternalError{
			Service:   kakaoService,
			Op:        op,
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Temporary: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ExternalError{Service: kakaoService, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
