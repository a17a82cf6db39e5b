// README: Metered taxi fare rates and the request/result of a fare estimate.
package pricing

import (
	"errors"
	"time"

	"safetaxi/internal/types"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrRateNotFound = errors.New("fare rate not found")
)

const DefaultRegion = "default"

// Rate is a metered fare table. Distance and slow-running time are charged in
// UnitFare steps once the base distance is used up.
type Rate struct {
	Region          string
	BaseFare        int64
	BaseDistanceM   int
	UnitDistanceM   int
	UnitTimeSec     int
	UnitFare        int64
	SlowSpeedKmh    float64
	NightMultiplier float64
	Currency        string
}

// DefaultRate is the mid-size taxi meter used when no region override exists.
var DefaultRate = Rate{
	Region:          DefaultRegion,
	BaseFare:        4800,
	BaseDistanceM:   1600,
	UnitDistanceM:   131,
	UnitTimeSec:     30,
	UnitFare:        100,
	SlowSpeedKmh:    15,
	NightMultiplier: 1.2,
	Currency:        types.CurrencyKRW,
}

type PricingRequest struct {
	DistanceM   int
	Duration    time.Duration
	RequestTime time.Time
	Region      string
}

type PricingResult struct {
	TotalAmount int64
	Currency    string
	Breakdown   map[string]int64
}

func (r PricingResult) Money() types.Money {
	return types.Money{Amount: r.TotalAmount, Currency: r.Currency}
}
