// README: Pricing service computes metered fare estimates.
package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"safetaxi/internal/types"
)

// kst is fixed; Korea observes no daylight saving.
var kst = time.FixedZone("KST", 9*60*60)

// RateSource looks up region overrides. *Store implements it.
type RateSource interface {
	GetRate(ctx context.Context, region string) (Rate, error)
}

type Service struct {
	rates  RateSource
	region string
	now    func() time.Time
}

// NewService builds the estimator. rates may be nil, in which case DefaultRate applies.
func NewService(rates RateSource, region string) *Service {
	if region == "" {
		region = DefaultRegion
	}
	return &Service{rates: rates, region: region, now: time.Now}
}

func (s *Service) rate(ctx context.Context, region string) (Rate, error) {
	if s.rates == nil {
		return DefaultRate, nil
	}
	r, err := s.rates.GetRate(ctx, region)
	if errors.Is(err, ErrRateNotFound) {
		return DefaultRate, nil
	}
	return r, err
}

func (s *Service) Estimate(ctx context.Context, req PricingRequest) (PricingResult, error) {
	if req.DistanceM < 0 || req.Duration < 0 {
		return PricingResult{}, ErrBadRequest
	}
	if req.Region == "" {
		req.Region = s.region
	}
	if req.RequestTime.IsZero() {
		req.RequestTime = s.now()
	}
	rate, err := s.rate(ctx, req.Region)
	if err != nil {
		return PricingResult{}, err
	}
	return compute(rate, req), nil
}

// EstimateFare quotes a fare for a route at the current time.
func (s *Service) EstimateFare(ctx context.Context, distanceM int, duration time.Duration) (types.Money, error) {
	res, err := s.Estimate(ctx, PricingRequest{DistanceM: distanceM, Duration: duration})
	if err != nil {
		return types.Money{}, err
	}
	return res.Money(), nil
}

func compute(rate Rate, req PricingRequest) PricingResult {
	breakdown := map[string]int64{"base": rate.BaseFare}

	if excess := req.DistanceM - rate.BaseDistanceM; excess > 0 && rate.UnitDistanceM > 0 {
		units := int64(math.Ceil(float64(excess) / float64(rate.UnitDistanceM)))
		breakdown["distance"] = units * rate.UnitFare
	}

	// Time the trip spent below the slow-running speed.
	if rate.SlowSpeedKmh > 0 && rate.UnitTimeSec > 0 {
		movingSec := float64(req.DistanceM) / (rate.SlowSpeedKmh / 3.6)
		slowSec := req.Duration.Seconds() - movingSec
		if units := int64(math.Floor(slowSec / float64(rate.UnitTimeSec))); units > 0 {
			breakdown["time"] = units * rate.UnitFare
		}
	}

	var subtotal int64
	for _, v := range breakdown {
		subtotal += v
	}

	total := subtotal
	if isNight(req.RequestTime) && rate.NightMultiplier > 1 {
		total = roundTo100(float64(subtotal) * rate.NightMultiplier)
		breakdown["night"] = total - subtotal
	}

	return PricingResult{TotalAmount: total, Currency: rate.Currency, Breakdown: breakdown}
}

// isNight reports the 22:00-04:00 surcharge window in Korean time.
func isNight(t time.Time) bool {
	h := t.In(kst).Hour()
	return h >= 22 || h < 4
}

func roundTo100(v float64) int64 {
	return int64(math.Round(v/100)) * 100
}
