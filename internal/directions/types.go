package directions

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// Maneuver describes the action at the start of a step
type Maneuver struct {
	Type        string    `json:"type"` // "depart", "waypoint", "arrive", "turn"
	Instruction string    `json:"instruction"`
	Location    geo.Point `json:"location"`
}

// Step is one instruction along a route
type Step struct {
	Maneuver Maneuver      `json:"maneuver"`
	Distance float64       `json:"distance"` // meters
	Duration time.Duration `json:"duration"`
}

// Route is one candidate returned by the route query service
type Route struct {
	Summary  string         `json:"summary"`
	Distance float64        `json:"distance"` // meters
	Duration time.Duration  `json:"duration"`
	Geometry orb.LineString `json:"geometry"` // lng/lat order
	Polyline string         `json:"polyline,omitempty"`
	Steps    []Step         `json:"steps"`
}

// Request lists the stops of a route query in travel order
type Request struct {
	Origin      geo.Point   `json:"origin"`
	Destination geo.Point   `json:"destination"`
	Waypoints   []geo.Point `json:"waypoints"`
}

// Response is the result of a successful route query. Stops are returned as
// GeoJSON point features; the service may snap them and attach names.
type Response struct {
	Origin      *geojson.Feature   `json:"origin"`
	Destination *geojson.Feature   `json:"destination"`
	Waypoints   []*geojson.Feature `json:"waypoints"`
	Routes      []Route            `json:"routes"`
}

// Querier computes candidate routes for a request
type Querier interface {
	Query(ctx context.Context, req Request) (*Response, error)
}

// QuerierFunc adapts a function to the Querier interface
type QuerierFunc func(ctx context.Context, req Request) (*Response, error)

// Query calls f
func (f QuerierFunc) Query(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
