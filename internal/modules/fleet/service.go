// README: Fleet service reseeds the demo fleet and answers fleet queries.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"safetaxi/internal/config"
	"safetaxi/internal/modules/location"
	"safetaxi/internal/types"
)

// PositionIndex is an optional spatial index mirrored on every reseed.
type PositionIndex interface {
	Replace(ctx context.Context, taxis []Taxi) error
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]GeoHit, error)
}

type Service struct {
	store  Store
	index  PositionIndex
	locker Locker
	gen    *Generator
	cfg    config.FleetConfig

	// indexStale is set while the index may still hold a replaced fleet.
	indexStale atomic.Bool
}

// NewService wires the fleet service. index may be nil.
func NewService(store Store, index PositionIndex, locker Locker, gen *Generator, cfg config.FleetConfig) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Service{store: store, index: index, locker: locker, gen: gen, cfg: cfg}
}

// DefaultCommand returns a reseed around center using the configured radius and size.
func (s *Service) DefaultCommand(center types.Point) ReseedCommand {
	return ReseedCommand{Center: center, RadiusKm: s.cfg.RadiusKm, Size: s.cfg.Size}
}

// Reseed discards the current fleet and stores a freshly generated one. The
// returned slice is exactly what was stored, in seed order.
func (s *Service) Reseed(ctx context.Context, cmd ReseedCommand) ([]Taxi, error) {
	if cmd.Size == 0 {
		cmd.Size = s.cfg.Size
	}
	if cmd.Size < 0 || cmd.RadiusKm < 0 || !cmd.Center.Valid() {
		return nil, ErrBadRequest
	}
	if s.cfg.MaxSize > 0 && cmd.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrBadRequest, cmd.Size, s.cfg.MaxSize)
	}

	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire reseed lock: %w", err)
	}
	defer unlock()

	taxis := s.gen.Fleet(cmd.Center, cmd.RadiusKm, cmd.Size)
	if err := s.store.ReplaceAll(ctx, taxis); err != nil {
		return nil, fmt.Errorf("replace fleet: %w", err)
	}
	if s.index != nil {
		// The index only serves the straight-line listing, which falls back to the store.
		if err := s.index.Replace(ctx, taxis); err != nil {
			s.indexStale.Store(true)
			slog.WarnContext(ctx, "fleet index replace failed, listing will scan store", "error", err)
		} else {
			s.indexStale.Store(false)
		}
	}

	slog.InfoContext(ctx, "fleet reseeded",
		"size", len(taxis), "center", cmd.Center.String(), "radius_km", cmd.RadiusKm)
	return taxis, nil
}

func (s *Service) List(ctx context.Context) ([]Taxi, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id types.ID) (Taxi, error) {
	if id == "" {
		return Taxi{}, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}

// Nearby lists taxis within radiusKm of p by straight-line distance, closest
// first. It uses the spatial index when present and scans the store otherwise.
func (s *Service) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]NearbyTaxi, error) {
	if !p.Valid() || radiusKm < 0 {
		return nil, ErrBadRequest
	}
	taxis, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.index != nil && !s.indexStale.Load() {
		hits, err := s.index.Nearby(ctx, p, radiusKm)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "fleet index lookup failed, scanning store", "error", err)
		default:
			if result, complete := joinHits(taxis, hits); complete {
				return result, nil
			}
			// Another instance may have reseeded without refreshing the index.
			slog.WarnContext(ctx, "fleet index holds unknown taxis, scanning store")
		}
	}

	var result []NearbyTaxi
	for _, t := range taxis {
		if d := location.HaversineKm(p, t.Position); d <= radiusKm {
			result = append(result, NearbyTaxi{Taxi: t, DistanceKm: d})
		}
	}
	location.SortByDistance(result, func(n NearbyTaxi) float64 { return n.DistanceKm })
	return result, nil
}

// joinHits resolves index hits against the stored fleet. complete is false when
// the index still holds ids from a fleet that has since been replaced.
func joinHits(taxis []Taxi, hits []GeoHit) (result []NearbyTaxi, complete bool) {
	byID := make(map[types.ID]Taxi, len(taxis))
	for _, t := range taxis {
		byID[t.ID] = t
	}
	result = make([]NearbyTaxi, 0, len(hits))
	for _, h := range hits {
		t, ok := byID[h.ID]
		if !ok {
			return nil, false
		}
		result = append(result, NearbyTaxi{Taxi: t, DistanceKm: h.DistanceKm})
	}
	return result, true
}
