package service

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// Route-splitting policy. A trip shorter than MinSplitKm runs direct; longer
// trips gain one intermediate depot per SegmentSpanKm. A depot only qualifies
// as a waypoint if routing through it stretches the trip by at most
// MaxDetourPct percent.
const (
	MinSplitKm    = 700.0
	SegmentSpanKm = 700.0
	MaxDetourPct  = 10.0
)

// DepotSelector decides whether a shipment needs intermediate depots and, if
// so, which ones and in what order.
type DepotSelector struct {
	catalog ports.DepotCatalog
	log     zerolog.Logger
}

func NewDepotSelector(catalog ports.DepotCatalog, log zerolog.Logger) *DepotSelector {
	return &DepotSelector{catalog: catalog, log: log}
}

type depotCandidate struct {
	depot      domain.Depot
	fromOrigin float64
}

// SelectWaypoints returns the intermediate depots for a trip, ordered from
// origin to destination. An empty slice means a single direct segment: either
// the trip is short, or no depot lies close enough to the route — the policy
// degrades to a direct trip rather than failing the shipment.
func (s *DepotSelector) SelectWaypoints(ctx context.Context, origin, destination domain.Coordinates) ([]domain.Depot, error) {
	direct := domain.DistanceKm(origin.Lat, origin.Lng, destination.Lat, destination.Lng)

	if direct < MinSplitKm {
		s.log.Debug().Float64("direct_km", direct).Msg("trip below split threshold, direct segment")
		return nil, nil
	}

	neededStops := int(math.Floor(direct / SegmentSpanKm))

	depots, err := s.catalog.ListDepots(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]depotCandidate, 0, len(depots))
	for _, d := range depots {
		legA := domain.DistanceKm(origin.Lat, origin.Lng, d.Lat, d.Lng)
		legB := domain.DistanceKm(d.Lat, d.Lng, destination.Lat, destination.Lng)
		detourPct := (legA + legB - direct) / direct * 100

		if detourPct <= MaxDetourPct {
			candidates = append(candidates, depotCandidate{depot: d, fromOrigin: legA})
		}
	}

	if len(candidates) == 0 {
		s.log.Warn().Float64("direct_km", direct).Int("needed_stops", neededStops).
			Msg("no depot within detour tolerance, degrading to direct segment")
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].fromOrigin != candidates[j].fromOrigin {
			return candidates[i].fromOrigin < candidates[j].fromOrigin
		}
		return candidates[i].depot.ID < candidates[j].depot.ID
	})

	selected := s.pickByTargets(candidates, neededStops, direct)

	s.log.Info().Float64("direct_km", direct).Int("needed_stops", neededStops).
		Int("candidates", len(candidates)).Int("selected", len(selected)).
		Msg("intermediate depots selected")

	return selected, nil
}

// pickByTargets assigns each evenly spaced target distance the unused
// candidate whose origin leg is nearest to it. Fewer candidates than targets
// yields a shorter list, never an error.
func (s *DepotSelector) pickByTargets(candidates []depotCandidate, neededStops int, direct float64) []domain.Depot {
	if neededStops == 1 {
		best := nearestTo(candidates, direct/2, nil)
		if best == nil {
			return nil
		}
		return []domain.Depot{best.depot}
	}

	interval := direct / float64(neededStops+1)
	used := make(map[string]bool, neededStops)
	selected := make([]domain.Depot, 0, neededStops)

	for i := 1; i <= neededStops; i++ {
		best := nearestTo(candidates, interval*float64(i), used)
		if best == nil {
			continue
		}
		used[best.depot.ID] = true
		selected = append(selected, best.depot)
	}
	return selected
}

func nearestTo(candidates []depotCandidate, target float64, used map[string]bool) *depotCandidate {
	var best *depotCandidate
	bestDiff := math.MaxFloat64

	for i := range candidates {
		c := &candidates[i]
		if used[c.depot.ID] {
			continue
		}
		if diff := math.Abs(c.fromOrigin - target); diff < bestDiff {
			bestDiff = diff
			best = c
		}
	}
	return best
}
