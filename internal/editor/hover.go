package editor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/proximity"
)

// Hover applies the ghost rule at pointer position p and shows or hides the
// ghost marker. It does nothing while a drag is in progress.
func (e *RouteEditor) Hover(p orb.Point) GhostState {
	if e.session != nil {
		return e.ghost
	}

	state := e.Visibility(p)
	if !state.Visible {
		e.hideGhost()
		return state
	}

	e.ghost = state
	e.renderer.ShowGhost(e.projector.Unproject(state.Position))
	return state
}

// Visibility evaluates the ghost rule without side effects. The ghost is
// hidden when p is further than the threshold from the route, or closer than
// the threshold to the origin, the destination or any waypoint other than the
// one being dragged. Otherwise it snaps to the nearest point on the route.
func (e *RouteEditor) Visibility(p orb.Point) GhostState {
	if e.route.IsZero() {
		return GhostState{}
	}

	snapped, distance := proximity.ClosestPoint(e.route, p)
	state := GhostState{Position: snapped, Distance: distance}

	if distance > e.threshold {
		return state
	}

	if origin, ok := e.markers.Origin(); ok && e.near(origin, p) {
		return state
	}
	if destination, ok := e.markers.Destination(); ok && e.near(destination, p) {
		return state
	}

	exclude := -1
	if e.session != nil {
		exclude = e.session.Index
	}
	for i, w := range e.markers.Waypoints() {
		if i != exclude && e.near(w, p) {
			return state
		}
	}

	state.Visible = true
	return state
}

func (e *RouteEditor) near(marker geo.Point, p orb.Point) bool {
	return planar.Distance(e.projector.Project(marker), p) < e.threshold
}

func (e *RouteEditor) hideGhost() {
	wasVisible := e.ghost.Visible
	e.ghost = GhostState{}
	if wasVisible {
		e.renderer.HideGhost()
	}
}
