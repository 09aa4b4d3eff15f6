package routers

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// LocalRouter answers route queries without a routing backend. It returns a
// straight "Direct" route through every stop and, as an alternative, a "Grid"
// route that travels each leg north-south first and then east-west.
type LocalRouter struct {
	opts  Options
	utils geo.GeoUtils
}

// NewLocalRouter creates a LocalRouter, filling unset options with defaults
func NewLocalRouter(opts Options) *LocalRouter {
	defaults := DefaultOptions()
	if opts.SpeedKPH <= 0 {
		opts.SpeedKPH = defaults.SpeedKPH
	}
	if opts.SampleMeters <= 0 {
		opts.SampleMeters = defaults.SampleMeters
	}
	if opts.Alternatives <= 0 {
		opts.Alternatives = 1
	}

	return &LocalRouter{
		opts:  opts,
		utils: geo.NewGeoUtils(),
	}
}

// Query implements directions.Querier
func (r *LocalRouter) Query(ctx context.Context, req directions.Request) (*directions.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stops := stopsOf(req)
	for i, s := range stops {
		if !geo.IsValid(s) {
			return nil, errors.Errorf("stop %d %s: %w", i, s, ErrInvalidStop)
		}
	}

	direct, err := r.buildRoute("Direct", stops, func(a, b geo.Point) []geo.Point {
		return []geo.Point{a, b}
	})
	if err != nil {
		return nil, err
	}
	routes := []directions.Route{direct}

	if r.opts.Alternatives > 1 {
		grid, err := r.buildRoute("Grid", stops, func(a, b geo.Point) []geo.Point {
			corner := geo.Point{Latitude: b.Latitude, Longitude: a.Longitude}
			if corner == a || corner == b {
				return []geo.Point{a, b}
			}
			return []geo.Point{a, corner, b}
		})
		if err != nil {
			return nil, err
		}
		routes = append(routes, grid)
	}

	resp := &directions.Response{
		Origin:      geo.Feature(req.Origin, "Origin"),
		Destination: geo.Feature(req.Destination, "Destination"),
		Routes:      routes,
	}
	for i, w := range req.Waypoints {
		resp.Waypoints = append(resp.Waypoints, geo.Feature(w, fmt.Sprintf("Waypoint %d", i+1)))
	}

	logging.Debugw(ctx, "Local route computed",
		"stops", len(stops), "routes", len(routes), "distance", direct.Distance)

	return resp, nil
}

// buildRoute joins the legs produced by leg for each consecutive pair of stops
func (r *LocalRouter) buildRoute(summary string, stops []geo.Point, leg func(a, b geo.Point) []geo.Point) (directions.Route, error) {
	route := directions.Route{Summary: summary}

	var path []geo.Point
	for i := 1; i < len(stops); i++ {
		legPoints := leg(stops[i-1], stops[i])

		legLength, err := r.utils.PathLength(legPoints)
		if err != nil {
			return directions.Route{}, errors.Errorf("%s leg %d: %w", summary, i, err)
		}

		route.Steps = append(route.Steps, r.legSteps(i, len(stops), legPoints)...)
		route.Distance += legLength

		dense, err := r.utils.Densify(legPoints, r.opts.SampleMeters)
		if err != nil {
			return directions.Route{}, errors.Errorf("%s leg %d: %w", summary, i, err)
		}
		if len(path) > 0 {
			dense = dense[1:]
		}
		path = append(path, dense...)
	}

	route.Steps = append(route.Steps, directions.Step{
		Maneuver: directions.Maneuver{
			Type:        "arrive",
			Instruction: "You have arrived at your destination",
			Location:    stops[len(stops)-1],
		},
	})

	route.Duration = r.travelTime(route.Distance)
	route.Geometry = geo.LineString(path)
	route.Polyline = r.utils.EncodePolyline(path)

	return route, nil
}

// legSteps returns one step per straight piece of leg number n (1-based)
func (r *LocalRouter) legSteps(n, stopCount int, legPoints []geo.Point) []directions.Step {
	steps := make([]directions.Step, 0, len(legPoints)-1)

	for i := 1; i < len(legPoints); i++ {
		start, end := legPoints[i-1], legPoints[i]
		distance, _ := r.utils.PointToPoint(start, end)

		maneuver := directions.Maneuver{Location: start}
		switch {
		case i > 1:
			maneuver.Type = "turn"
			maneuver.Instruction = fmt.Sprintf("Turn %s", heading(start, end))
		case n == 1:
			maneuver.Type = "depart"
			maneuver.Instruction = fmt.Sprintf("Head %s", heading(start, end))
		default:
			maneuver.Type = "waypoint"
			maneuver.Instruction = fmt.Sprintf("Continue %s from waypoint %d", heading(start, end), n-1)
		}

		steps = append(steps, directions.Step{
			Maneuver: maneuver,
			Distance: distance,
			Duration: r.travelTime(distance),
		})
	}

	return steps
}

func (r *LocalRouter) travelTime(meters float64) time.Duration {
	metersPerSecond := r.opts.SpeedKPH * 1000 / 3600
	return time.Duration(meters / metersPerSecond * float64(time.Second)).Round(time.Second)
}

// heading names the dominant compass direction from a to b
func heading(a, b geo.Point) string {
	dLat := b.Latitude - a.Latitude
	dLng := b.Longitude - a.Longitude

	if math.Abs(dLat) >= math.Abs(dLng) {
		if dLat >= 0 {
			return "north"
		}
		return "south"
	}
	if dLng >= 0 {
		return "east"
	}
	return "west"
}

func stopsOf(req directions.Request) []geo.Point {
	stops := make([]geo.Point, 0, len(req.Waypoints)+2)
	stops = append(stops, req.Origin)
	stops = append(stops, req.Waypoints...)
	return append(stops, req.Destination)
}
