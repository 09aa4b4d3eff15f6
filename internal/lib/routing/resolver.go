package routing

import (
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/proximity"
)

// orderResolver implements the OrderResolver interface
type orderResolver struct{}

// NewOrderResolver creates a new OrderResolver implementation
func NewOrderResolver() OrderResolver {
	return &orderResolver{}
}

// InsertionIndex returns the position of the first waypoint whose nearest
// segment is not before the candidate's, or len(waypoints) when none is.
// A candidate sharing a segment with an existing waypoint is placed before it.
func (r *orderResolver) InsertionIndex(route proximity.Polyline, candidate orb.Point, waypoints []orb.Point) int {
	if len(waypoints) == 0 {
		return 0
	}

	target, _ := proximity.NearestSegment(route, candidate)

	for i, w := range waypoints {
		if segment, _ := proximity.NearestSegment(route, w); segment >= target {
			return i
		}
	}

	return len(waypoints)
}

// SegmentIndices maps every waypoint to its nearest route segment
func (r *orderResolver) SegmentIndices(route proximity.Polyline, waypoints []orb.Point) []int {
	indices := make([]int, len(waypoints))
	for i, w := range waypoints {
		indices[i], _ = proximity.NearestSegment(route, w)
	}
	return indices
}
