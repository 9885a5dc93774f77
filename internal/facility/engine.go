package facility

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"triage-desk/pkg"
)

// Engine turns a triage result and a location into a ranked, capped facility
// recommendation list. It never returns an error: any failure along the way
// (geocoding miss, search backend down) yields an empty list so the triage
// result itself is never blocked.
type Engine struct {
	geocoder Geocoder
	searcher Searcher
	cache    *GeocodeCache
	log      zerolog.Logger
}

// NewEngine constructs the engine. cache may be nil to disable geocode
// caching.
func NewEngine(geocoder Geocoder, searcher Searcher, cache *GeocodeCache, log zerolog.Logger) *Engine {
	return &Engine{geocoder: geocoder, searcher: searcher, cache: cache, log: log}
}

// Locate resolves a location string through the cache and geocoder.
func (e *Engine) Locate(ctx context.Context, location string) (pkg.Coordinates, error) {
	if e.cache != nil {
		if coords, ok := e.cache.Get(ctx, location); ok {
			return coords, nil
		}
	}
	coords, err := e.geocoder.Geocode(ctx, location)
	if err != nil {
		return pkg.Coordinates{}, err
	}
	if e.cache != nil {
		e.cache.Put(ctx, location, coords)
	}
	return coords, nil
}

// Search runs a plain facility search around a point, without the
// urgency-driven ranking. Used by the standalone facilities endpoint.
func (e *Engine) Search(ctx context.Context, center pkg.Coordinates, radiusKM float64, specialty string) ([]pkg.FacilityInfo, error) {
	return e.searcher.SearchNearby(ctx, center, radiusKM, specialty)
}

// Recommend finds facilities for a triage result. The search radius shrinks
// with urgency (score >=8 caps it at 5 km, >=6 at 8 km), the specialty comes
// from the assessment, and results are distance-sorted. When an emergency
// was detected, facilities offering emergency or trauma care take total
// priority even if farther away: if any exist, at most 3 of them are
// returned and the general ranking is skipped. Otherwise at most 5
// facilities are returned.
func (e *Engine) Recommend(ctx context.Context, result pkg.TriageResult, location string, coords *pkg.Coordinates, radiusKM float64) []pkg.FacilityInfo {
	if result.UrgencyScore >= 8 {
		radiusKM = minFloat(radiusKM, 5.0)
	} else if result.UrgencyScore >= 6 {
		radiusKM = minFloat(radiusKM, 8.0)
	}

	specialty := strings.ToLower(result.RecommendedSpecialty)

	var center pkg.Coordinates
	if coords != nil {
		center = *coords
	} else {
		var err error
		center, err = e.Locate(ctx, location)
		if err != nil {
			e.log.Warn().Err(err).Str("location", location).Msg("geocoding failed, no facilities")
			return nil
		}
	}

	facilities, err := e.searcher.SearchNearby(ctx, center, radiusKM, specialty)
	if err != nil {
		e.log.Warn().Err(err).Msg("facility search failed, no facilities")
		return nil
	}

	sort.Slice(facilities, func(i, j int) bool {
		return facilities[i].DistanceKM < facilities[j].DistanceKM
	})

	if result.EmergencyDetected {
		emergency := filterEmergency(facilities)
		if len(emergency) > 0 {
			return capList(emergency, 3)
		}
	}
	return capList(facilities, 5)
}

// filterEmergency keeps facilities offering emergency or trauma care.
func filterEmergency(facilities []pkg.FacilityInfo) []pkg.FacilityInfo {
	var out []pkg.FacilityInfo
	for _, f := range facilities {
		for _, svc := range f.Services {
			lower := strings.ToLower(svc)
			if strings.Contains(lower, "emergency") || strings.Contains(lower, "trauma") {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func capList(facilities []pkg.FacilityInfo, n int) []pkg.FacilityInfo {
	if len(facilities) > n {
		return facilities[:n]
	}
	return facilities
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
