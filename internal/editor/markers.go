package editor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// MarkerSet tracks where the interactive markers are placed
type MarkerSet struct {
	origin      *geo.Point
	destination *geo.Point
	waypoints   []geo.Point
}

// Origin returns the origin marker position, if placed
func (m *MarkerSet) Origin() (geo.Point, bool) {
	if m.origin == nil {
		return geo.Point{}, false
	}
	return *m.origin, true
}

// SetOrigin places the origin marker
func (m *MarkerSet) SetOrigin(p geo.Point) {
	m.origin = &p
}

// ClearOrigin removes the origin marker
func (m *MarkerSet) ClearOrigin() {
	m.origin = nil
}

// Destination returns the destination marker position, if placed
func (m *MarkerSet) Destination() (geo.Point, bool) {
	if m.destination == nil {
		return geo.Point{}, false
	}
	return *m.destination, true
}

// SetDestination places the destination marker
func (m *MarkerSet) SetDestination(p geo.Point) {
	m.destination = &p
}

// ClearDestination removes the destination marker
func (m *MarkerSet) ClearDestination() {
	m.destination = nil
}

// Waypoints returns a copy of the waypoint marker positions
func (m *MarkerSet) Waypoints() []geo.Point {
	out := make([]geo.Point, len(m.waypoints))
	copy(out, m.waypoints)
	return out
}

// Len returns the number of waypoint markers
func (m *MarkerSet) Len() int {
	return len(m.waypoints)
}

// InsertWaypoint adds a marker at index; callers bounds-check
func (m *MarkerSet) InsertWaypoint(index int, p geo.Point) {
	m.waypoints = append(m.waypoints, geo.Point{})
	copy(m.waypoints[index+1:], m.waypoints[index:])
	m.waypoints[index] = p
}

// MoveWaypoint repositions the marker at index; callers bounds-check
func (m *MarkerSet) MoveWaypoint(index int, p geo.Point) {
	m.waypoints[index] = p
}

// RemoveWaypoint deletes the marker at index; callers bounds-check
func (m *MarkerSet) RemoveWaypoint(index int) {
	m.waypoints = append(m.waypoints[:index], m.waypoints[index+1:]...)
}

// Reconcile makes the waypoint markers match points: existing markers are
// moved in place, missing ones added at the end and surplus ones removed
func (m *MarkerSet) Reconcile(points []geo.Point) (updated, added, removed int) {
	shared := min(len(m.waypoints), len(points))

	for i := 0; i < shared; i++ {
		m.waypoints[i] = points[i]
	}
	updated = shared

	if len(points) > shared {
		m.waypoints = append(m.waypoints, points[shared:]...)
		added = len(points) - shared
	} else {
		removed = len(m.waypoints) - shared
		m.waypoints = m.waypoints[:shared]
	}

	return updated, added, removed
}

// HitTest returns the marker within radius pixels of p. Waypoints are checked
// first (last placed on top), then destination, then origin.
func (m *MarkerSet) HitTest(projector Projector, p orb.Point, radius float64) (MarkerID, bool) {
	sqRadius := radius * radius

	for i := len(m.waypoints) - 1; i >= 0; i-- {
		if planar.DistanceSquared(projector.Project(m.waypoints[i]), p) <= sqRadius {
			return WaypointMarker(i), true
		}
	}
	if m.destination != nil && planar.DistanceSquared(projector.Project(*m.destination), p) <= sqRadius {
		return DestinationMarker, true
	}
	if m.origin != nil && planar.DistanceSquared(projector.Project(*m.origin), p) <= sqRadius {
		return OriginMarker, true
	}

	return MarkerID{}, false
}
