package editor

import (
	"context"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/events"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/proximity"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/routing"
)

// Options tune the editor
type Options struct {
	// GhostThreshold is the pixel radius for snapping the ghost marker to the
	// route and for suppressing it near other markers
	GhostThreshold float64
}

// RouteEditor lets a user reshape a route by dragging markers. It listens to
// the model's events, keeps the selected route projected to screen space and
// drives at most one drag session at a time.
type RouteEditor struct {
	model     Model
	projector Projector
	renderer  Renderer
	resolver  routing.OrderResolver
	threshold float64

	markers MarkerSet

	// Selected route geometry and its screen projection
	routeGeometry orb.LineString
	route         proximity.Polyline

	session *DragSession
	ghost   GhostState

	gestures [3]events.Bus[DragEvent]
	subs     events.Subscriptions
}

// New creates a RouteEditor. Call OnAdd to start listening to the model.
func New(model Model, projector Projector, renderer Renderer, opts Options) *RouteEditor {
	threshold := opts.GhostThreshold
	if threshold <= 0 {
		threshold = DefaultGhostThreshold
	}

	return &RouteEditor{
		model:     model,
		projector: projector,
		renderer:  renderer,
		resolver:  routing.NewOrderResolver(),
		threshold: threshold,
	}
}

// OnAdd subscribes the editor to model events
func (e *RouteEditor) OnAdd(ctx context.Context) {
	ev := e.model.Events()

	e.subs.Add(ev.Origin.Subscribe(func(evt directions.OriginEvent) {
		if evt.Cleared {
			e.markers.ClearOrigin()
			e.renderer.HideOrigin()
			return
		}
		e.markers.SetOrigin(evt.Origin)
		e.renderer.ShowOrigin(evt.Origin)
	}))
	e.subs.Add(ev.Destination.Subscribe(func(evt directions.DestinationEvent) {
		if evt.Cleared {
			e.markers.ClearDestination()
			e.renderer.HideDestination()
			return
		}
		e.markers.SetDestination(evt.Destination)
		e.renderer.ShowDestination(evt.Destination)
	}))
	e.subs.Add(ev.Load.Subscribe(func(evt directions.LoadEvent) {
		e.handleLoad(ctx, evt)
	}))
	e.subs.Add(ev.SelectRoute.Subscribe(func(evt directions.SelectRouteEvent) {
		e.handleSelectRoute(ctx, evt.Route)
	}))
	e.subs.Add(ev.HighlightRoute.Subscribe(func(evt directions.HighlightRouteEvent) {
		e.renderer.ShowHighlight(evt.Route)
	}))
	e.subs.Add(ev.HighlightStep.Subscribe(func(evt directions.HighlightStepEvent) {
		e.renderer.ShowStep(evt.Step)
	}))

	// Pick up a route that was selected before the editor was attached
	if route, ok := e.model.SelectedRoute(); ok {
		e.handleSelectRoute(ctx, route)
	}
}

// OnRemove detaches the editor from the model and drops any drag session
func (e *RouteEditor) OnRemove(ctx context.Context) {
	e.subs.Close()
	if e.session != nil {
		logging.Infow(ctx, "Abandoning drag session on remove", "session_id", e.session.ID)
		e.session = nil
	}
	e.hideGhost()
}

// State returns the current drag state
func (e *RouteEditor) State() State {
	if e.session == nil {
		return StateIdle
	}

	switch e.session.Target.Kind {
	case MarkerOrigin:
		return StateDraggingOrigin
	case MarkerDestination:
		return StateDraggingDestination
	case MarkerWaypoint:
		return StateDraggingWaypoint
	default:
		return StateDraggingGhost
	}
}

// Session returns a copy of the active drag session
func (e *RouteEditor) Session() (DragSession, bool) {
	if e.session == nil {
		return DragSession{}, false
	}
	return *e.session, true
}

// Ghost returns the last computed ghost marker state
func (e *RouteEditor) Ghost() GhostState {
	return e.ghost
}

// Markers exposes the marker positions
func (e *RouteEditor) Markers() *MarkerSet {
	return &e.markers
}

// RoutePolyline returns the selected route in screen space; the zero value
// means no route is selected
func (e *RouteEditor) RoutePolyline() proximity.Polyline {
	return e.route
}

// SetProjector switches to a new map projection (zoom or pan) and reprojects the route
func (e *RouteEditor) SetProjector(ctx context.Context, projector Projector) {
	e.projector = projector
	e.reproject(ctx)
	e.hideGhost()
}

// HitTest finds the marker under a screen point, including a visible ghost
func (e *RouteEditor) HitTest(p orb.Point) (MarkerID, bool) {
	if id, ok := e.markers.HitTest(e.projector, p, e.threshold); ok {
		return id, true
	}
	if e.ghost.Visible {
		dx := e.ghost.Position[0] - p[0]
		dy := e.ghost.Position[1] - p[1]
		if dx*dx+dy*dy <= e.threshold*e.threshold {
			return GhostMarker, true
		}
	}
	return MarkerID{}, false
}

// OnGesture registers a callback for one phase of drags on markers of kind
func (e *RouteEditor) OnGesture(phase Phase, kind MarkerKind, h func(DragEvent)) (unsubscribe func()) {
	return e.gestures[phase].Subscribe(func(evt DragEvent) {
		if evt.Marker.Kind == kind {
			h(evt)
		}
	})
}

// Click handles a click on empty map: the first click places the origin, the
// second the destination, which then triggers a query
func (e *RouteEditor) Click(ctx context.Context, p orb.Point) error {
	if e.session != nil {
		return ErrSessionActive
	}

	at := e.projector.Unproject(p)

	if _, ok := e.model.GetOrigin(); !ok {
		e.model.SetOrigin(at)
		return nil
	}
	if _, ok := e.model.GetDestination(); !ok {
		e.model.SetDestination(at)
		return e.model.Query(ctx)
	}
	return nil
}

// ClickMarker handles a click on a marker; clicking a waypoint removes it
func (e *RouteEditor) ClickMarker(ctx context.Context, marker MarkerID) error {
	if e.session != nil {
		return ErrSessionActive
	}
	if marker.Kind != MarkerWaypoint {
		return nil
	}
	if marker.Index < 0 || marker.Index >= e.markers.Len() {
		return ErrIndexOutOfRange
	}

	if err := e.model.RemoveWaypoint(marker.Index); err != nil {
		return err
	}
	e.markers.RemoveWaypoint(marker.Index)
	e.renderer.SyncWaypoints(e.markers.Waypoints())

	logging.Infow(ctx, "Waypoint removed", "index", marker.Index)

	return e.queryIfReady(ctx)
}

// Reverse swaps origin and destination and re-queries
func (e *RouteEditor) Reverse(ctx context.Context) error {
	if e.session != nil {
		return ErrSessionActive
	}

	e.model.Reverse()

	points := e.model.Waypoints()
	e.markers.Reconcile(points)
	e.renderer.SyncWaypoints(points)

	return e.queryIfReady(ctx)
}

func (e *RouteEditor) queryIfReady(ctx context.Context) error {
	if !e.model.Queryable() {
		return nil
	}
	return e.model.Query(ctx)
}

func (e *RouteEditor) handleLoad(ctx context.Context, evt directions.LoadEvent) {
	if p, err := geo.FromFeature(evt.Origin); err == nil {
		e.markers.SetOrigin(p)
		e.renderer.ShowOrigin(p)
	}
	if p, err := geo.FromFeature(evt.Destination); err == nil {
		e.markers.SetDestination(p)
		e.renderer.ShowDestination(p)
	}

	points := make([]geo.Point, 0, len(evt.Waypoints))
	for _, f := range evt.Waypoints {
		if p, err := geo.FromFeature(f); err == nil {
			points = append(points, p)
		}
	}

	updated, added, removed := e.markers.Reconcile(points)
	e.renderer.SyncWaypoints(e.markers.Waypoints())

	logging.Debugw(ctx, "Waypoint markers reconciled",
		"updated", updated, "added", added, "removed", removed)
}

func (e *RouteEditor) handleSelectRoute(ctx context.Context, route directions.Route) {
	e.routeGeometry = route.Geometry.Clone()
	e.reproject(ctx)
	e.renderer.ShowRoute(&route)
}

// reproject rebuilds the screen-space polyline from the selected geometry
func (e *RouteEditor) reproject(ctx context.Context) {
	if len(e.routeGeometry) == 0 {
		e.route = proximity.Polyline{}
		return
	}

	points := make([]orb.Point, len(e.routeGeometry))
	for i, p := range e.routeGeometry {
		points[i] = e.projector.Project(geo.FromOrb(p))
	}

	pl, err := proximity.NewPolyline(points)
	if err != nil {
		logging.Warnw(ctx, "Selected route cannot be edited", "points", len(points), "error", err)
		e.route = proximity.Polyline{}
		return
	}
	e.route = pl
}
