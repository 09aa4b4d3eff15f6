package routers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/Neilblaze/mapbox-directions.js/internal/cache"
	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// ResponseCache stores route query responses by request hash. *cache.Cache implements it.
type ResponseCache interface {
	SetRouteResponse(contentHash string, response interface{}, ttl time.Duration) error
	GetRouteResponse(contentHash string, result interface{}) (bool, error)
	Stats() cache.CacheStats
}

var _ ResponseCache = (*cache.Cache)(nil)

// CachingQuerier wraps a Querier with request-hash based caching. Repeated
// drags over the same positions are answered without recomputing the route.
type CachingQuerier struct {
	next  directions.Querier
	cache ResponseCache
	ttl   time.Duration
}

// NewCachingQuerier creates a querier that consults c before calling next
func NewCachingQuerier(next directions.Querier, c ResponseCache, ttl time.Duration) *CachingQuerier {
	return &CachingQuerier{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// Query implements directions.Querier
func (q *CachingQuerier) Query(ctx context.Context, req directions.Request) (*directions.Response, error) {
	contentHash := RequestHash(req)

	var cached directions.Response
	found, err := q.cache.GetRouteResponse(contentHash, &cached)
	if err != nil {
		logging.Warnw(ctx, "Ignoring unreadable cached route", "hash", contentHash[:8], "error", err)
	} else if found {
		logging.Debugw(ctx, "Route cache hit", "hash", contentHash[:8])
		return &cached, nil
	}

	resp, err := q.next.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := q.cache.SetRouteResponse(contentHash, resp, q.ttl); err != nil {
		// A failed cache write does not fail the query
		logging.Warnw(ctx, "Failed to cache route response", "hash", contentHash[:8], "error", err)
	} else {
		logging.Debugw(ctx, "Route cached", "hash", contentHash[:8], "ttl", q.ttl)
	}

	return resp, nil
}

// Stats reports the entries and hits of the underlying cache
func (q *CachingQuerier) Stats() cache.CacheStats {
	return q.cache.Stats()
}

// RequestHash returns a content hash of the stops in travel order. Coordinates
// are keyed at 6 decimal places (about 10cm).
func RequestHash(req directions.Request) string {
	keys := make([]string, 0, len(req.Waypoints)+2)
	keys = append(keys, locationKey(req.Origin))
	for _, w := range req.Waypoints {
		keys = append(keys, locationKey(w))
	}
	keys = append(keys, locationKey(req.Destination))

	hash := sha256.Sum256([]byte(strings.Join(keys, "|")))
	return fmt.Sprintf("%x", hash)
}

func locationKey(p geo.Point) string {
	return fmt.Sprintf("%.6f_%.6f", p.Latitude, p.Longitude)
}
