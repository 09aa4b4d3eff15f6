package viewport

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// MaxLatitude is the Web Mercator latitude limit
const MaxLatitude = 85.0511287798

// Viewport projects geographic coordinates to layer (screen) pixels for one
// zoom level. Origin is the global pixel coordinate of the layer's top-left
// corner. A Viewport is a value: changing zoom or panning yields a new one.
type Viewport struct {
	Zoom     float64
	TileSize int
	Origin   orb.Point
}

// New returns a viewport of the given size centred on center
func New(center geo.Point, zoom float64, tileSize int, width, height float64) Viewport {
	v := Viewport{Zoom: zoom, TileSize: tileSize}
	c := v.global(center)
	v.Origin = orb.Point{c[0] - width/2, c[1] - height/2}
	return v
}

// Project converts a geographic point into layer pixels
func (v Viewport) Project(p geo.Point) orb.Point {
	g := v.global(p)
	return orb.Point{g[0] - v.Origin[0], g[1] - v.Origin[1]}
}

// Unproject converts layer pixels back to a geographic point
func (v Viewport) Unproject(p orb.Point) geo.Point {
	scale := v.scale()
	x := (p[0] + v.Origin[0]) / scale
	y := (p[1] + v.Origin[1]) / scale

	lon := x*360.0 - 180.0
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180.0 / math.Pi

	return geo.Point{Latitude: lat, Longitude: lon}
}

// ProjectAll projects a sequence of points
func (v Viewport) ProjectAll(points []geo.Point) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, p := range points {
		out[i] = v.Project(p)
	}
	return out
}

// Pan shifts the viewport by a pixel offset
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Origin = orb.Point{v.Origin[0] + dx, v.Origin[1] + dy}
	return v
}

// ZoomTo returns a viewport at a new zoom keeping the given layer point fixed
func (v Viewport) ZoomTo(zoom float64, anchor orb.Point) Viewport {
	fixed := v.Unproject(anchor)
	next := Viewport{Zoom: zoom, TileSize: v.TileSize}
	g := next.global(fixed)
	next.Origin = orb.Point{g[0] - anchor[0], g[1] - anchor[1]}
	return next
}

func (v Viewport) scale() float64 {
	return math.Pow(2, v.Zoom) * float64(v.TileSize)
}

// global converts to world pixel coordinates at the viewport zoom
func (v Viewport) global(p geo.Point) orb.Point {
	scale := v.scale()
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, p.Latitude))

	x := (p.Longitude + 180.0) / 360.0 * scale

	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * scale

	return orb.Point{x, y}
}
