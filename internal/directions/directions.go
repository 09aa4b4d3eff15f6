package directions

import (
	"context"
	"runtime/debug"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"

	"github.com/Neilblaze/mapbox-directions.js/internal/eventloop"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

var (
	// ErrIndexOutOfRange is returned by waypoint operations given an invalid position
	ErrIndexOutOfRange = errors.New("waypoint index out of range")

	// ErrNotQueryable is returned by Query when origin or destination is unset
	ErrNotQueryable = errors.New("origin and destination must both be set")

	// ErrNoRoutes marks a query response that carried no routes
	ErrNoRoutes = errors.New("no routes found in response")
)

// Directions owns the stops and routes of one editing session. It must only
// be used from the goroutine that drains its dispatcher.
type Directions struct {
	querier    Querier
	dispatcher eventloop.Dispatcher
	spawn      func(func())

	origin      *geo.Point
	destination *geo.Point
	waypoints   []geo.Point

	routes   []Route
	selected *Route

	events   Events
	querySeq uint64
	geoUtils geo.GeoUtils
}

// Option configures Directions
type Option func(*Directions)

// WithSyncQueries runs the querier on the calling goroutine instead of a new one
func WithSyncQueries() Option {
	return func(d *Directions) {
		d.spawn = func(fn func()) { fn() }
	}
}

// New creates an empty Directions that resolves routes with querier and
// delivers query completions through dispatcher
func New(querier Querier, dispatcher eventloop.Dispatcher, opts ...Option) *Directions {
	d := &Directions{
		querier:    querier,
		dispatcher: dispatcher,
		spawn:      func(fn func()) { go fn() },
		geoUtils:   geo.NewGeoUtils(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Events exposes the event buses
func (d *Directions) Events() *Events {
	return &d.events
}

// GetOrigin returns the origin and whether it is set
func (d *Directions) GetOrigin() (geo.Point, bool) {
	if d.origin == nil {
		return geo.Point{}, false
	}
	return *d.origin, true
}

// SetOrigin sets the origin and publishes an OriginEvent
func (d *Directions) SetOrigin(p geo.Point) {
	d.origin = &p
	d.events.Origin.Publish(OriginEvent{Origin: p})
}

// GetDestination returns the destination and whether it is set
func (d *Directions) GetDestination() (geo.Point, bool) {
	if d.destination == nil {
		return geo.Point{}, false
	}
	return *d.destination, true
}

// SetDestination sets the destination and publishes a DestinationEvent
func (d *Directions) SetDestination(p geo.Point) {
	d.destination = &p
	d.events.Destination.Publish(DestinationEvent{Destination: p})
}

// Waypoints returns a copy of the ordered waypoints
func (d *Directions) Waypoints() []geo.Point {
	out := make([]geo.Point, len(d.waypoints))
	copy(out, d.waypoints)
	return out
}

// WaypointCount returns the number of waypoints
func (d *Directions) WaypointCount() int {
	return len(d.waypoints)
}

// AddWaypoint inserts p so that it ends up at position index
func (d *Directions) AddWaypoint(index int, p geo.Point) error {
	if index < 0 || index > len(d.waypoints) {
		return errors.Errorf("add at %d of %d: %w", index, len(d.waypoints), ErrIndexOutOfRange)
	}

	d.waypoints = append(d.waypoints, geo.Point{})
	copy(d.waypoints[index+1:], d.waypoints[index:])
	d.waypoints[index] = p
	return nil
}

// SetWaypoint moves the waypoint at index
func (d *Directions) SetWaypoint(index int, p geo.Point) error {
	if index < 0 || index >= len(d.waypoints) {
		return errors.Errorf("set at %d of %d: %w", index, len(d.waypoints), ErrIndexOutOfRange)
	}

	d.waypoints[index] = p
	return nil
}

// RemoveWaypoint deletes the waypoint at index
func (d *Directions) RemoveWaypoint(index int) error {
	if index < 0 || index >= len(d.waypoints) {
		return errors.Errorf("remove at %d of %d: %w", index, len(d.waypoints), ErrIndexOutOfRange)
	}

	d.waypoints = append(d.waypoints[:index], d.waypoints[index+1:]...)
	return nil
}

// Reverse swaps origin and destination and reverses the waypoints
func (d *Directions) Reverse() {
	d.origin, d.destination = d.destination, d.origin

	for i, j := 0, len(d.waypoints)-1; i < j; i, j = i+1, j-1 {
		d.waypoints[i], d.waypoints[j] = d.waypoints[j], d.waypoints[i]
	}

	// A side that was unset before the swap is now cleared
	if d.origin != nil {
		d.events.Origin.Publish(OriginEvent{Origin: *d.origin})
	} else {
		d.events.Origin.Publish(OriginEvent{Cleared: true})
	}
	if d.destination != nil {
		d.events.Destination.Publish(DestinationEvent{Destination: *d.destination})
	} else {
		d.events.Destination.Publish(DestinationEvent{Cleared: true})
	}
}

// Queryable reports whether both origin and destination are set
func (d *Directions) Queryable() bool {
	return d.origin != nil && d.destination != nil
}

// Query starts an asynchronous route computation for the current stops. The
// result is applied through the dispatcher; when several queries overlap the
// last response to arrive wins.
func (d *Directions) Query(ctx context.Context) error {
	if !d.Queryable() {
		return ErrNotQueryable
	}

	d.querySeq++
	seq := d.querySeq
	req := Request{
		Origin:      *d.origin,
		Destination: *d.destination,
		Waypoints:   d.Waypoints(),
	}

	logging.Debugw(ctx, "Route query started", "query", seq, "waypoints", len(req.Waypoints))

	d.spawn(func() {
		resp, err := d.runQuery(ctx, req)
		d.dispatcher.Post(func() {
			d.applyResponse(ctx, seq, resp, err)
		})
	})

	return nil
}

// runQuery calls the querier, converting a panic into an error
func (d *Directions) runQuery(ctx context.Context, req Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack, _ := errors.ParseStack(debug.Stack())
			skipFrames := 3
			numFrames := 5
			logging.Errorw(ctx, "Route query: recovered from panic",
				"error", r, "error.stack_trace", stack.MinimalStack(skipFrames, numFrames))
			err = errors.Errorf("route query panicked: %v", r)
		}
	}()

	return d.querier.Query(ctx, req)
}

func (d *Directions) applyResponse(ctx context.Context, seq uint64, resp *Response, err error) {
	if err == nil && (resp == nil || len(resp.Routes) == 0) {
		err = ErrNoRoutes
	}
	if err != nil {
		logging.Warnw(ctx, "Route query failed, keeping previous routes", "query", seq, "error", err)
		return
	}

	if seq != d.querySeq {
		logging.Debugw(ctx, "Applying out of order route response", "query", seq, "latest", d.querySeq)
	}

	if p, ferr := geo.FromFeature(resp.Origin); ferr == nil {
		d.origin = &p
	}
	if p, ferr := geo.FromFeature(resp.Destination); ferr == nil {
		d.destination = &p
	}

	waypoints := make([]geo.Point, 0, len(resp.Waypoints))
	for i, f := range resp.Waypoints {
		p, ferr := geo.FromFeature(f)
		if ferr != nil {
			logging.Warnw(ctx, "Dropping waypoint without point geometry", "query", seq, "index", i, "error", ferr)
			continue
		}
		waypoints = append(waypoints, p)
	}
	d.waypoints = waypoints
	d.routes = make([]Route, len(resp.Routes))
	for i, route := range resp.Routes {
		d.routes[i] = d.withGeometry(ctx, route)
	}
	d.selected = nil

	logging.Infow(ctx, "Route query loaded", "query", seq, "routes", len(d.routes), "waypoints", len(d.waypoints))

	d.events.Load.Publish(LoadEvent{
		Origin:      resp.Origin,
		Destination: resp.Destination,
		Waypoints:   resp.Waypoints,
		Routes:      d.Routes(),
	})

	d.SelectRoute(d.routes[0])
}

// withGeometry fills in the line of a route that only carries an encoded polyline
func (d *Directions) withGeometry(ctx context.Context, route Route) Route {
	if len(route.Geometry) > 0 || route.Polyline == "" {
		return route
	}

	points, err := d.geoUtils.DecodePolyline(route.Polyline)
	if err != nil {
		logging.Warnw(ctx, "Route polyline could not be decoded", "route", route.Summary, "error", err)
		return route
	}
	route.Geometry = geo.LineString(points)
	return route
}

// Routes returns a copy of the routes from the last successful query
func (d *Directions) Routes() []Route {
	return append([]Route(nil), d.routes...)
}

// SelectedRoute returns the selected route, if any
func (d *Directions) SelectedRoute() (Route, bool) {
	if d.selected == nil {
		return Route{}, false
	}
	return *d.selected, true
}

// SelectRoute marks route as selected and publishes a SelectRouteEvent
func (d *Directions) SelectRoute(route Route) {
	d.selected = &route
	d.events.SelectRoute.Publish(SelectRouteEvent{Route: route})
}

// HighlightRoute publishes a HighlightRouteEvent; nil clears the highlight
func (d *Directions) HighlightRoute(route *Route) {
	d.events.HighlightRoute.Publish(HighlightRouteEvent{Route: route})
}

// HighlightStep publishes a HighlightStepEvent; nil clears the highlight
func (d *Directions) HighlightStep(step *Step) {
	d.events.HighlightStep.Publish(HighlightStepEvent{Step: step})
}
