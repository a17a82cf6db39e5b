// README: Fare rate overrides backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, region string) (Rate, error) {
	var r Rate
	err := s.db.QueryRow(ctx, `
SELECT region, base_fare, base_distance_m, unit_distance_m, unit_time_sec,
       unit_fare, slow_speed_kmh, night_multiplier, currency
FROM fare_rates
WHERE region = $1`, region).Scan(
		&r.Region, &r.BaseFare, &r.BaseDistanceM, &r.UnitDistanceM, &r.UnitTimeSec,
		&r.UnitFare, &r.SlowSpeedKmh, &r.NightMultiplier, &r.Currency,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	return r, nil
}

// UpsertRate stores an override for r.Region.
func (s *Store) UpsertRate(ctx context.Context, r Rate) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO fare_rates (region, base_fare, base_distance_m, unit_distance_m, unit_time_sec,
                        unit_fare, slow_speed_kmh, night_multiplier, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (region) DO UPDATE SET
    base_fare = EXCLUDED.base_fare,
    base_distance_m = EXCLUDED.base_distance_m,
    unit_distance_m = EXCLUDED.unit_distance_m,
    unit_time_sec = EXCLUDED.unit_time_sec,
    unit_fare = EXCLUDED.unit_fare,
    slow_speed_kmh = EXCLUDED.slow_speed_kmh,
    night_multiplier = EXCLUDED.night_multiplier,
    currency = EXCLUDED.currency`,
		r.Region, r.BaseFare, r.BaseDistanceM, r.UnitDistanceM, r.UnitTimeSec,
		r.UnitFare, r.SlowSpeedKmh, r.NightMultiplier, r.Currency,
	)
	return err
}

// SeedDefaultRate writes DefaultRate under DefaultRegion when no row exists, so
// operators can tune the meter in place. An existing row is left untouched.
func (s *Store) SeedDefaultRate(ctx context.Context) (seeded bool, err error) {
	_, err = s.GetRate(ctx, DefaultRegion)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrRateNotFound):
		return false, err
	}
	if err := s.UpsertRate(ctx, DefaultRate); err != nil {
		return false, err
	}
	return true, nil
}
