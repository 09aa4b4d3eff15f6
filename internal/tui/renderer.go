package tui

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/editor"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

var (
	routeStyle       = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	highlightStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	originStyle      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	destinationStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	waypointStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	ghostStyle       = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	stepStyle        = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	statusStyle      = tcell.StyleDefault.Reverse(true)
)

// maxLineSteps bounds the samples drawn for one segment
const maxLineSteps = 4096

// CellSize is the pixel size of one terminal cell
type CellSize struct {
	Width  float64
	Height float64
}

// ToPixel returns the pixel at the centre of cell (x, y)
func (c CellSize) ToPixel(x, y int) orb.Point {
	return orb.Point{(float64(x) + 0.5) * c.Width, (float64(y) + 0.5) * c.Height}
}

// ToCell returns the cell containing pixel p
func (c CellSize) ToCell(p orb.Point) (int, int) {
	return int(math.Floor(p[0] / c.Width)), int(math.Floor(p[1] / c.Height))
}

// Renderer keeps what the editor asked to show and paints it on a screen.
// It implements editor.Renderer.
type Renderer struct {
	origin      *geo.Point
	destination *geo.Point
	waypoints   []geo.Point
	ghost       *geo.Point
	route       *directions.Route
	highlight   *directions.Route
	step        *directions.Step
}

var _ editor.Renderer = (*Renderer)(nil)

func (r *Renderer) ShowGhost(at geo.Point)       { r.ghost = &at }
func (r *Renderer) HideGhost()                   { r.ghost = nil }
func (r *Renderer) ShowOrigin(at geo.Point)      { r.origin = &at }
func (r *Renderer) ShowDestination(at geo.Point) { r.destination = &at }
func (r *Renderer) HideOrigin()                  { r.origin = nil }
func (r *Renderer) HideDestination()             { r.destination = nil }

func (r *Renderer) SyncWaypoints(points []geo.Point) {
	r.waypoints = append(r.waypoints[:0], points...)
}

func (r *Renderer) ShowRoute(route *directions.Route)     { r.route = route }
func (r *Renderer) ShowHighlight(route *directions.Route) { r.highlight = route }
func (r *Renderer) ShowStep(step *directions.Step)        { r.step = step }

// Draw paints routes and markers into the map area, which is the screen
// above the status rows. Markers are drawn last so they stay on top.
func (r *Renderer) Draw(s tcell.Screen, projector editor.Projector, cell CellSize, mapRows int) {
	width, _ := s.Size()
	put := func(p geo.Point, ch rune, style tcell.Style) {
		x, y := cell.ToCell(projector.Project(p))
		if x >= 0 && x < width && y >= 0 && y < mapRows {
			s.SetContent(x, y, ch, nil, style)
		}
	}

	if r.route != nil {
		r.drawLine(s, projector, cell, mapRows, r.route.Geometry, '·', routeStyle)
	}
	if r.highlight != nil {
		r.drawLine(s, projector, cell, mapRows, r.highlight.Geometry, '•', highlightStyle)
	}
	if r.step != nil {
		put(r.step.Maneuver.Location, '*', stepStyle)
	}

	for i, w := range r.waypoints {
		put(w, waypointRune(i), waypointStyle)
	}
	if r.origin != nil {
		put(*r.origin, 'A', originStyle)
	}
	if r.destination != nil {
		put(*r.destination, 'B', destinationStyle)
	}
	if r.ghost != nil {
		put(*r.ghost, 'o', ghostStyle)
	}
}

// drawLine samples each segment at half-cell steps
func (r *Renderer) drawLine(s tcell.Screen, projector editor.Projector, cell CellSize, mapRows int, line orb.LineString, ch rune, style tcell.Style) {
	width, _ := s.Size()

	for i := 1; i < len(line); i++ {
		a := projector.Project(geo.FromOrb(line[i-1]))
		b := projector.Project(geo.FromOrb(line[i]))

		cells := math.Max(math.Abs(b[0]-a[0])/cell.Width, math.Abs(b[1]-a[1])/cell.Height)
		steps := min(int(math.Ceil(cells*2))+1, maxLineSteps)
		for n := 0; n <= steps; n++ {
			t := float64(n) / float64(steps)
			x, y := cell.ToCell(orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])})
			if x >= 0 && x < width && y >= 0 && y < mapRows {
				s.SetContent(x, y, ch, nil, style)
			}
		}
	}
}

// waypointRune labels waypoints 1-9, then '+'
func waypointRune(i int) rune {
	if i < 9 {
		return rune('1' + i)
	}
	return '+'
}

// drawText writes text from column x on row y, clipped to the screen width
func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) int {
	width, _ := s.Size()
	for _, ch := range text {
		if x >= width {
			break
		}
		s.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}
