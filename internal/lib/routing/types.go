package routing

import (
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/proximity"
)

// OrderResolver decides where a new waypoint belongs in an ordered waypoint
// sequence so the sequence keeps following the route from origin to destination
type OrderResolver interface {
	// Index at which candidate must be inserted among waypoints
	InsertionIndex(route proximity.Polyline, candidate orb.Point, waypoints []orb.Point) int

	// Nearest route segment for each waypoint, in sequence order
	SegmentIndices(route proximity.Polyline, waypoints []orb.Point) []int
}
