package proximity

import (
	"math"

	"github.com/paulmach/orb"
)

// NearestSegment returns the 1-based index of the segment closest to point and
// the squared distance to it. Distance is measured to the projection of point
// clamped onto the segment. When segments tie, the lowest index wins.
func NearestSegment(pl Polyline, point orb.Point) (int, float64) {
	mustUsable(pl)

	index := 0
	minSq := math.Inf(1)

	for i := 1; i < len(pl.points); i++ {
		_, sq := closestOnSegment(point, pl.points[i-1], pl.points[i])
		if sq < minSq {
			minSq = sq
			index = i
		}
	}

	return index, minSq
}

// ClosestPoint returns the point on the polyline nearest to point, and the
// euclidean distance between them
func ClosestPoint(pl Polyline, point orb.Point) (orb.Point, float64) {
	mustUsable(pl)

	var closest orb.Point
	minSq := math.Inf(1)

	for i := 1; i < len(pl.points); i++ {
		onSegment, sq := closestOnSegment(point, pl.points[i-1], pl.points[i])
		if sq < minSq {
			minSq = sq
			closest = onSegment
		}
	}

	return closest, math.Sqrt(minSq)
}

// closestOnSegment projects point onto segment a-b, clamping to the endpoints
func closestOnSegment(point, a, b orb.Point) (orb.Point, float64) {
	x, y := a[0], a[1]
	dx := b[0] - x
	dy := b[1] - y

	if dot := dx*dx + dy*dy; dot > 0 {
		t := ((point[0]-x)*dx + (point[1]-y)*dy) / dot

		if t > 1 {
			x, y = b[0], b[1]
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	ex := point[0] - x
	ey := point[1] - y

	return orb.Point{x, y}, ex*ex + ey*ey
}

func mustUsable(pl Polyline) {
	if len(pl.points) < 2 {
		panic(ErrDegeneratePolyline)
	}
}
