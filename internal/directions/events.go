package directions

import (
	"github.com/paulmach/orb/geojson"

	"github.com/Neilblaze/mapbox-directions.js/internal/events"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// OriginEvent is published when the origin is set or cleared
type OriginEvent struct {
	Origin  geo.Point
	Cleared bool // Origin is the zero value when set
}

// DestinationEvent is published when the destination is set or cleared
type DestinationEvent struct {
	Destination geo.Point
	Cleared     bool
}

// LoadEvent is published after a successful query and replaces all stops and routes
type LoadEvent struct {
	Origin      *geojson.Feature
	Destination *geojson.Feature
	Waypoints   []*geojson.Feature
	Routes      []Route
}

// SelectRouteEvent is published when a route becomes the selected route
type SelectRouteEvent struct {
	Route Route
}

// HighlightRouteEvent is published when a route is highlighted; Route is nil
// when the highlight is cleared
type HighlightRouteEvent struct {
	Route *Route
}

// HighlightStepEvent is published when a step is highlighted; Step is nil
// when the highlight is cleared
type HighlightStepEvent struct {
	Step *Step
}

// Events holds one bus per event kind emitted by Directions
type Events struct {
	Origin         events.Bus[OriginEvent]
	Destination    events.Bus[DestinationEvent]
	Load           events.Bus[LoadEvent]
	SelectRoute    events.Bus[SelectRouteEvent]
	HighlightRoute events.Bus[HighlightRouteEvent]
	HighlightStep  events.Bus[HighlightStepEvent]
}
