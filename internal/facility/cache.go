package facility

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"triage-desk/pkg"
)

// geocodeTTL bounds how long a resolved location stays cached. Addresses do
// not move, but stale Nominatim fixes should eventually refresh.
const geocodeTTL = 24 * time.Hour

// GeocodeCache memoizes geocoding results in redis so repeated lookups of
// the same location string skip the Nominatim round trip. All cache errors
// degrade to a miss; the cache never fails a request.
type GeocodeCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewGeocodeCache connects to redis at addr (host:port).
func NewGeocodeCache(addr string, log zerolog.Logger) *GeocodeCache {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		MaxRetries: 3,
	})
	return &GeocodeCache{client: client, log: log}
}

func geocodeKey(location string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(location))
}

// Get returns cached coordinates for a location, with ok reporting a hit.
func (c *GeocodeCache) Get(ctx context.Context, location string) (pkg.Coordinates, bool) {
	raw, err := c.client.Get(ctx, geocodeKey(location)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("geocode cache read failed")
		}
		return pkg.Coordinates{}, false
	}
	var coords pkg.Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		c.log.Warn().Err(err).Msg("geocode cache entry corrupt")
		return pkg.Coordinates{}, false
	}
	return coords, true
}

// Put stores resolved coordinates for a location.
func (c *GeocodeCache) Put(ctx context.Context, location string, coords pkg.Coordinates) {
	raw, err := json.Marshal(coords)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, geocodeKey(location), raw, geocodeTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("geocode cache write failed")
	}
}
