package editor

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

func TestMarkerSet_InsertMoveRemove(t *testing.T) {
	var m MarkerSet

	m.InsertWaypoint(0, at(1, 1))
	m.InsertWaypoint(1, at(3, 3))
	m.InsertWaypoint(1, at(2, 2))
	assert.Equal(t, []geo.Point{at(1, 1), at(2, 2), at(3, 3)}, m.Waypoints())

	m.MoveWaypoint(2, at(4, 4))
	m.RemoveWaypoint(0)
	assert.Equal(t, []geo.Point{at(2, 2), at(4, 4)}, m.Waypoints())
	assert.Equal(t, 2, m.Len())

	// Waypoints returns a copy
	m.Waypoints()[0] = at(9, 9)
	assert.Equal(t, at(2, 2), m.Waypoints()[0])
}

func TestMarkerSet_Reconcile(t *testing.T) {
	tests := []struct {
		name    string
		start   []geo.Point
		points  []geo.Point
		updated int
		added   int
		removed int
	}{
		{"empty to two", nil, []geo.Point{at(1, 1), at(2, 2)}, 0, 2, 0},
		{"same length", []geo.Point{at(1, 1)}, []geo.Point{at(5, 5)}, 1, 0, 0},
		{"grow", []geo.Point{at(1, 1)}, []geo.Point{at(5, 5), at(6, 6), at(7, 7)}, 1, 2, 0},
		{"shrink", []geo.Point{at(1, 1), at(2, 2), at(3, 3)}, []geo.Point{at(8, 8)}, 1, 0, 2},
		{"clear", []geo.Point{at(1, 1), at(2, 2)}, nil, 0, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MarkerSet
			for i, p := range tt.start {
				m.InsertWaypoint(i, p)
			}

			updated, added, removed := m.Reconcile(tt.points)
			assert.Equal(t, tt.updated, updated)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, len(tt.points), m.Len())
			for i, p := range tt.points {
				assert.Equal(t, p, m.Waypoints()[i])
			}
		})
	}
}

func TestMarkerSet_HitTest(t *testing.T) {
	projector := linearProjector{scale: 1}
	var m MarkerSet

	_, ok := m.HitTest(projector, orb.Point{0, 0}, 10)
	assert.False(t, ok, "nothing placed")

	m.SetOrigin(at(0, 0))
	m.SetDestination(at(100, 0))
	m.InsertWaypoint(0, at(50, 0))
	m.InsertWaypoint(1, at(54, 0))

	id, ok := m.HitTest(projector, orb.Point{3, 4}, 5)
	require.True(t, ok)
	assert.Equal(t, OriginMarker, id)

	id, ok = m.HitTest(projector, orb.Point{97, 0}, 5)
	require.True(t, ok)
	assert.Equal(t, DestinationMarker, id)

	// Overlapping waypoints resolve to the last placed
	id, ok = m.HitTest(projector, orb.Point{52, 0}, 5)
	require.True(t, ok)
	assert.Equal(t, WaypointMarker(1), id)

	_, ok = m.HitTest(projector, orb.Point{30, 30}, 5)
	assert.False(t, ok)
}
