package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

type staticSource struct {
	origin, destination *geo.Point
	waypoints           []geo.Point
	route               *directions.Route
}

func (s staticSource) GetOrigin() (geo.Point, bool) {
	if s.origin == nil {
		return geo.Point{}, false
	}
	return *s.origin, true
}

func (s staticSource) GetDestination() (geo.Point, bool) {
	if s.destination == nil {
		return geo.Point{}, false
	}
	return *s.destination, true
}

func (s staticSource) Waypoints() []geo.Point { return s.waypoints }

func (s staticSource) SelectedRoute() (directions.Route, bool) {
	if s.route == nil {
		return directions.Route{}, false
	}
	return *s.route, true
}

var (
	arnold  = geo.Point{Latitude: 38.2555, Longitude: -120.3519}
	avery   = geo.Point{Latitude: 38.2044, Longitude: -120.3713}
	murphys = geo.Point{Latitude: 38.1391, Longitude: -120.4561}
)

func TestSnapshot(t *testing.T) {
	_, err := Snapshot("x", staticSource{})
	assert.ErrorIs(t, err, ErrIncompleteRoute)

	_, err = Snapshot("x", staticSource{origin: &arnold})
	assert.ErrorIs(t, err, ErrIncompleteRoute)

	doc, err := Snapshot("Hwy 4", staticSource{origin: &arnold, destination: &murphys, waypoints: []geo.Point{avery}})
	require.NoError(t, err)
	assert.Equal(t, "Hwy 4", doc.Name)
	assert.Equal(t, []geo.Point{avery}, doc.Waypoints)
	assert.Nil(t, doc.Route)
}

func TestWriteKML(t *testing.T) {
	route := &directions.Route{
		Summary:  "Direct",
		Distance: 17500,
		Duration: 21 * time.Minute,
		Geometry: orb.LineString{arnold.ToOrb(), avery.ToOrb(), murphys.ToOrb()},
	}
	doc, err := Snapshot("Hwy 4", staticSource{
		origin:      &arnold,
		destination: &murphys,
		waypoints:   []geo.Point{avery},
		route:       route,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, doc))
	out := buf.String()

	assert.Contains(t, out, "<name>Hwy 4</name>")
	assert.Contains(t, out, "<name>Origin</name>")
	assert.Contains(t, out, "<name>Waypoint 1</name>")
	assert.Contains(t, out, "<name>Destination</name>")
	assert.Contains(t, out, "<name>Direct</name>")
	assert.Contains(t, out, "-120.3519,38.2555")
	assert.Contains(t, out, "-120.4561,38.1391")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "#route")

	// Stops are written in travel order
	assert.Less(t, strings.Index(out, "Origin"), strings.Index(out, "Waypoint 1"))
	assert.Less(t, strings.Index(out, "Waypoint 1"), strings.Index(out, "<name>Destination"))
}

func TestWriteKML_WithoutRoute(t *testing.T) {
	doc := Document{Name: "Draft", Origin: arnold, Destination: murphys}

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, doc))
	assert.Equal(t, 2, strings.Count(buf.String(), "<Point>"))
	assert.NotContains(t, buf.String(), "<LineString>")
}
