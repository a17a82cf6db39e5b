// README: Fleet store backed by PostgreSQL; reseeds replace the whole table in one transaction.
package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"safetaxi/internal/types"
)

// Store persists the current fleet.
type Store interface {
	ReplaceAll(ctx context.Context, taxis []Taxi) error
	ListAll(ctx context.Context) ([]Taxi, error)
	Get(ctx context.Context, id types.ID) (Taxi, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

var taxiColumns = []string{
	"id", "seq", "license_number", "latitude", "longitude",
	"driver_name", "driver_phone", "acceptance", "created_at",
}

// ReplaceAll swaps the fleet atomically. The EXCLUSIVE table lock serialises
// concurrent reseeds from other instances while still letting readers see the
// previous fleet until commit.
func (s *PGStore) ReplaceAll(ctx context.Context, taxis []Taxi) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE taxis IN EXCLUSIVE MODE`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM taxis`); err != nil {
			return err
		}
		rows := make([][]any, len(taxis))
		for i, t := range taxis {
			rows[i] = []any{
				string(t.ID), i, t.Plate, t.Position.Lat, t.Position.Lng,
				t.DriverName, t.DriverPhone, t.Acceptance, t.CreatedAt,
			}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"taxis"}, taxiColumns, pgx.CopyFromRows(rows))
		return err
	})
}

func (s *PGStore) ListAll(ctx context.Context) ([]Taxi, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, license_number, latitude::float8, longitude::float8,
		       driver_name, driver_phone, acceptance, created_at
		FROM taxis
		ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTaxi)
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (Taxi, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, license_number, latitude::float8, longitude::float8,
		       driver_name, driver_phone, acceptance, created_at
		FROM taxis
		WHERE id = $1`, string(id))
	if err != nil {
		return Taxi{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTaxi)
	if errors.Is(err, pgx.ErrNoRows) {
		return Taxi{}, ErrNotFound
	}
	return t, err
}

func scanTaxi(row pgx.CollectableRow) (Taxi, error) {
	var t Taxi
	err := row.Scan(
		&t.ID, &t.Plate, &t.Position.Lat, &t.Position.Lng,
		&t.DriverName, &t.DriverPhone, &t.Acceptance, &t.CreatedAt,
	)
	return t, err
}
