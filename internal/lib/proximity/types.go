package proximity

import (
	"math"

	"github.com/dpup/prefab/errors"
	"github.com/paulmach/orb"
)

// Epsilon is the tolerance used when comparing screen coordinates
const Epsilon = 1e-9

// ErrDegeneratePolyline is returned when a polyline has fewer than two points
var ErrDegeneratePolyline = errors.New("polyline must have at least 2 points")

// Polyline is an immutable sequence of screen-space points for the selected route.
// Segments are implicit: segment i joins point i-1 and point i, for i in [1, Len()-1].
type Polyline struct {
	points orb.LineString
}

// NewPolyline copies points into a new Polyline
func NewPolyline(points []orb.Point) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, ErrDegeneratePolyline
	}

	owned := make(orb.LineString, len(points))
	copy(owned, points)

	return Polyline{points: owned}, nil
}

// MustPolyline is like NewPolyline but panics on degenerate input
func MustPolyline(points ...orb.Point) Polyline {
	pl, err := NewPolyline(points)
	if err != nil {
		panic(err)
	}
	return pl
}

// Len returns the number of points
func (p Polyline) Len() int {
	return len(p.points)
}

// IsZero reports whether the polyline was never initialised
func (p Polyline) IsZero() bool {
	return len(p.points) == 0
}

// Point returns the i-th point
func (p Polyline) Point(i int) orb.Point {
	return p.points[i]
}

// Points returns a copy of the underlying points
func (p Polyline) Points() []orb.Point {
	out := make([]orb.Point, len(p.points))
	copy(out, p.points)
	return out
}

// Segment returns the endpoints of the 1-based segment i
func (p Polyline) Segment(i int) (orb.Point, orb.Point) {
	return p.points[i-1], p.points[i]
}

// Segments returns the number of segments
func (p Polyline) Segments() int {
	if len(p.points) == 0 {
		return 0
	}
	return len(p.points) - 1
}

// PointsEqual compares two points within Epsilon
func PointsEqual(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) <= Epsilon && math.Abs(a[1]-b[1]) <= Epsilon
}
