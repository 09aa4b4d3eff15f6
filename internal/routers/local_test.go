package routers

import (
	"context"
	"testing"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// Highway 4 between Arnold and Murphys
var (
	arnold  = geo.Point{Latitude: 38.2555, Longitude: -120.3519}
	avery   = geo.Point{Latitude: 38.2044, Longitude: -120.3713}
	murphys = geo.Point{Latitude: 38.1391, Longitude: -120.4561}
)

func TestLocalRouter_DirectRoute(t *testing.T) {
	router := NewLocalRouter(Options{SpeedKPH: 60, SampleMeters: 500, Alternatives: 1})
	utils := geo.NewGeoUtils()

	resp, err := router.Query(logging.EnsureLogger(context.Background()), directions.Request{
		Origin:      arnold,
		Destination: murphys,
		Waypoints:   []geo.Point{avery},
	})
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)

	route := resp.Routes[0]
	assert.Equal(t, "Direct", route.Summary)

	expected, err := utils.PathLength([]geo.Point{arnold, avery, murphys})
	require.NoError(t, err)
	assert.InDelta(t, expected, route.Distance, 1e-6)

	// 60 kph is 1km per minute
	assert.InDelta(t, expected/1000*60, route.Duration.Seconds(), 1)

	// Geometry starts and ends on the stops, passes the waypoint and is densified
	points := geo.PointsFromLineString(route.Geometry)
	assert.Equal(t, arnold, points[0])
	assert.Equal(t, murphys, points[len(points)-1])
	assert.Contains(t, points, avery)
	for i := 1; i < len(points); i++ {
		d, err := utils.PointToPoint(points[i-1], points[i])
		require.NoError(t, err)
		assert.LessOrEqual(t, d, 500.0*1.001)
	}

	decoded, err := utils.DecodePolyline(route.Polyline)
	require.NoError(t, err)
	assert.Len(t, decoded, len(points))

	// Stops come back as named features
	assert.Equal(t, "Origin", geo.FeatureName(resp.Origin))
	assert.Equal(t, "Destination", geo.FeatureName(resp.Destination))
	require.Len(t, resp.Waypoints, 1)
	assert.Equal(t, "Waypoint 1", geo.FeatureName(resp.Waypoints[0]))
	w, err := geo.FromFeature(resp.Waypoints[0])
	require.NoError(t, err)
	assert.Equal(t, avery, w)
}

func TestLocalRouter_Steps(t *testing.T) {
	router := NewLocalRouter(Options{Alternatives: 1})

	resp, err := router.Query(logging.EnsureLogger(context.Background()), directions.Request{
		Origin:      arnold,
		Destination: murphys,
		Waypoints:   []geo.Point{avery},
	})
	require.NoError(t, err)

	steps := resp.Routes[0].Steps
	require.Len(t, steps, 3)

	assert.Equal(t, "depart", steps[0].Maneuver.Type)
	assert.Equal(t, "Head south", steps[0].Maneuver.Instruction)
	assert.Equal(t, arnold, steps[0].Maneuver.Location)

	assert.Equal(t, "waypoint", steps[1].Maneuver.Type)
	assert.Equal(t, avery, steps[1].Maneuver.Location)

	assert.Equal(t, "arrive", steps[2].Maneuver.Type)
	assert.Equal(t, murphys, steps[2].Maneuver.Location)
	assert.Zero(t, steps[2].Distance)

	total := 0.0
	for _, s := range steps {
		total += s.Distance
	}
	assert.InDelta(t, resp.Routes[0].Distance, total, 1e-6)
}

func TestLocalRouter_GridAlternative(t *testing.T) {
	router := NewLocalRouter(Options{Alternatives: 2})

	resp, err := router.Query(logging.EnsureLogger(context.Background()), directions.Request{Origin: arnold, Destination: murphys})
	require.NoError(t, err)
	require.Len(t, resp.Routes, 2)

	direct, grid := resp.Routes[0], resp.Routes[1]
	assert.Equal(t, "Grid", grid.Summary)
	assert.Greater(t, grid.Distance, direct.Distance)
	assert.Greater(t, grid.Duration, direct.Duration)

	// Grid route turns at the corner below the origin
	require.Len(t, grid.Steps, 3)
	assert.Equal(t, "depart", grid.Steps[0].Maneuver.Type)
	assert.Equal(t, "turn", grid.Steps[1].Maneuver.Type)
	assert.Equal(t, "Turn west", grid.Steps[1].Maneuver.Instruction)
	assert.Equal(t, geo.Point{Latitude: murphys.Latitude, Longitude: arnold.Longitude}, grid.Steps[1].Maneuver.Location)
}

func TestLocalRouter_Errors(t *testing.T) {
	router := NewLocalRouter(DefaultOptions())

	_, err := router.Query(logging.EnsureLogger(context.Background()), directions.Request{
		Origin:      arnold,
		Destination: geo.Point{Latitude: 91, Longitude: 0},
	})
	assert.ErrorIs(t, err, ErrInvalidStop)

	ctx, cancel := context.WithCancel(logging.EnsureLogger(context.Background()))
	cancel()
	_, err = router.Query(ctx, directions.Request{Origin: arnold, Destination: murphys})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatImperial(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0ft"},
		{30.48, "100ft"},
		{1609.344, "1.00mi"},
		{1609.344 * 12.34, "12.3mi"},
		{1609.344 * 250, "250mi"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatImperial(tt.meters))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "12min", FormatDuration(12*time.Minute+30*time.Second))
	assert.Equal(t, "2h 5min", FormatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1.00mi, 1min", FormatDetails(1609.344, 90*time.Second))
}
