package replay

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neilblaze/mapbox-directions.js/internal/config"
	"github.com/Neilblaze/mapbox-directions.js/internal/editor"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/viewport"
	"github.com/Neilblaze/mapbox-directions.js/internal/routers"
)

func TestParse(t *testing.T) {
	f, err := os.Open("testdata/detour.yaml")
	require.NoError(t, err)
	defer f.Close()

	s, err := Parse(f)
	require.NoError(t, err)

	assert.Equal(t, "Hwy 4 detour through Vallecito", s.Name)
	assert.Equal(t, 256, s.Viewport.TileSize, "tile size defaults to 256")
	require.NotNil(t, s.Origin)
	assert.Equal(t, 38.1327, s.Origin.Latitude)
	require.Len(t, s.Steps, 10)
	assert.Equal(t, "ghost", s.Steps[2].Down)
	assert.Equal(t, Pixel{330, 260}, *s.Steps[3].Move)
	assert.True(t, s.Steps[5].Up)
	assert.True(t, s.Steps[9].Reverse)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"unknown field", "viewport: {width: 10, height: 10}\nbogus: 1\n"},
		{"missing size", "viewport: {zoom: 3}\n"},
		{"two actions", "viewport: {width: 10, height: 10}\nsteps:\n  - {up: true, reverse: true}\n"},
		{"empty step", "viewport: {width: 10, height: 10}\nsteps:\n  - {}\n"},
		{"bad marker", "viewport: {width: 10, height: 10}\nsteps:\n  - down: waypoint:x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.script))
			assert.Error(t, err)
		})
	}
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		in   string
		want editor.MarkerID
	}{
		{"origin", editor.OriginMarker},
		{"destination", editor.DestinationMarker},
		{"ghost", editor.GhostMarker},
		{"waypoint:0", editor.WaypointMarker(0)},
		{"waypoint:12", editor.WaypointMarker(12)},
	}
	for _, tt := range tests {
		got, err := ParseMarker(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "start", "waypoint:", "waypoint:-1"} {
		_, err := ParseMarker(bad)
		assert.ErrorIs(t, err, ErrInvalidScript, bad)
	}
}

func TestRunner_GhostDragThenRemove(t *testing.T) {
	origin := config.CoordinatesYAML{Latitude: 38.1327, Longitude: -120.4606}
	destination := config.CoordinatesYAML{Latitude: 38.2458, Longitude: -120.3486}
	center := config.CoordinatesYAML{Latitude: 38.18925, Longitude: -120.4046}

	spec := ViewportSpec{Center: center, Zoom: 12, TileSize: 256, Width: 800, Height: 600}
	view := viewport.New(center.ToPoint(), spec.Zoom, spec.TileSize, spec.Width, spec.Height)

	a := view.Project(origin.ToPoint())
	b := view.Project(destination.ToPoint())
	mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
	detour := orb.Point{mid[0] - 80, mid[1] - 40}

	px := func(p orb.Point) *Pixel { return &Pixel{p[0], p[1]} }

	script := &Script{
		Viewport:    spec,
		Origin:      &origin,
		Destination: &destination,
		Steps: []Step{
			{Hover: px(orb.Point{mid[0] + 3, mid[1]})},
			{Down: "ghost"},
			{Move: px(detour)},
			{Up: true},
			{Down: "waypoint:3"},
			{ClickMarker: "waypoint:0"},
		},
	}

	runner := NewRunner(routers.NewLocalRouter(routers.Options{Alternatives: 1}), 15)
	result, err := runner.Run(logging.EnsureLogger(context.Background()), script)
	require.NoError(t, err)
	require.Len(t, result.Steps, 6)

	hover := result.Steps[0]
	assert.NoError(t, hover.Err)
	assert.True(t, hover.Ghost.Visible)
	assert.Equal(t, editor.StateIdle, hover.State)

	down := result.Steps[1]
	require.NoError(t, down.Err)
	assert.Equal(t, editor.StateDraggingGhost, down.State)
	assert.Len(t, down.Waypoints, 1)
	assert.Len(t, down.Segments, 1)

	move := result.Steps[2]
	require.NoError(t, move.Err)
	require.Len(t, move.Waypoints, 1)
	assert.InDelta(t, view.Unproject(detour).Latitude, move.Waypoints[0].Latitude, 1e-6)
	assert.InDelta(t, view.Unproject(detour).Longitude, move.Waypoints[0].Longitude, 1e-6)

	up := result.Steps[3]
	assert.NoError(t, up.Err)
	assert.Equal(t, editor.StateIdle, up.State)

	assert.ErrorIs(t, result.Steps[4].Err, editor.ErrIndexOutOfRange)
	assert.Equal(t, editor.StateIdle, result.Steps[4].State)

	remove := result.Steps[5]
	assert.NoError(t, remove.Err)
	assert.Empty(t, remove.Waypoints)

	assert.Len(t, result.Drags, 1)
	assert.Empty(t, result.Waypoints)
	require.NotNil(t, result.Origin)
	assert.Equal(t, origin.ToPoint(), *result.Origin)
	require.NotNil(t, result.Route)
	assert.Equal(t, "Direct", result.Route.Summary)
	// initial load, one per move, one after the removal
	assert.Equal(t, 3, result.Loads)
}

func TestRunner_NoRouteRejectsGhost(t *testing.T) {
	script := &Script{
		Viewport: ViewportSpec{Center: config.CoordinatesYAML{Latitude: 38.2, Longitude: -120.4}, Zoom: 10, TileSize: 256, Width: 200, Height: 100},
		Steps: []Step{
			{Hover: &Pixel{100, 50}},
			{Down: "ghost"},
			{Click: &Pixel{20, 20}},
			{Click: &Pixel{180, 80}},
		},
	}

	result, err := NewRunner(routers.NewLocalRouter(routers.Options{}), 15).Run(logging.EnsureLogger(context.Background()), script)
	require.NoError(t, err)

	assert.False(t, result.Steps[0].Ghost.Visible)
	assert.ErrorIs(t, result.Steps[1].Err, editor.ErrNoRoute)
	assert.Nil(t, result.Steps[2].Segments)
	assert.NotNil(t, result.Steps[3].Segments)
	require.NotNil(t, result.Destination)
	assert.True(t, geo.IsValid(*result.Destination))
	assert.NotNil(t, result.Route)
	assert.Equal(t, 1, result.Loads)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(logging.EnsureLogger(context.Background()))
	cancel()

	script := &Script{Viewport: ViewportSpec{Zoom: 3, TileSize: 256, Width: 10, Height: 10}}
	_, err := NewRunner(routers.NewLocalRouter(routers.Options{}), 15).Run(ctx, script)
	assert.Error(t, err)
}

func TestRunner_WithoutLogger(t *testing.T) {
	f, err := os.Open("testdata/detour.yaml")
	require.NoError(t, err)
	defer f.Close()

	script, err := Parse(f)
	require.NoError(t, err)

	var result *Result
	assert.NotPanics(t, func() {
		result, err = NewRunner(routers.NewLocalRouter(routers.Options{}), 15).Run(context.Background(), script)
	})
	require.NoError(t, err)
	require.Len(t, result.Steps, len(script.Steps))
	assert.NotNil(t, result.Route)
}
