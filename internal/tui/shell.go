package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/cache"
	"github.com/Neilblaze/mapbox-directions.js/internal/config"
	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/editor"
	"github.com/Neilblaze/mapbox-directions.js/internal/events"
	"github.com/Neilblaze/mapbox-directions.js/internal/export"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/viewport"
	"github.com/Neilblaze/mapbox-directions.js/internal/routers"
)

// statusRows are reserved below the map for the route list and status line
const statusRows = 2

const helpText = "drag A/B/stops, drag the line to add a stop, click a stop to remove | r reverse  tab route  n step  h highlight  e export  +/- zoom  q quit"

type quitSignal struct{}

// cacheStats is implemented by queriers that cache responses
type cacheStats interface {
	Stats() cache.CacheStats
}

// press is a mouse button held down that has not become a drag yet
type press struct {
	marker editor.MarkerID
	hit    bool
	x, y   int
}

// Shell runs the route editor in a terminal. The tcell event queue is the
// single event loop: mouse and key events and query completions are all
// handled on the goroutine calling Run.
type Shell struct {
	screen   tcell.Screen
	cfg      *config.Config
	model    *directions.Directions
	editor   *editor.RouteEditor
	renderer *Renderer
	view     viewport.Viewport
	cell     CellSize
	mapSize  orb.Point

	exportPath string

	press       *press
	routeIndex  int
	stepIndex   int
	highlighted int
	status      string
	subs        events.Subscriptions
	cache       cacheStats
}

// NewShell creates a shell on an initialized screen. Route queries go to
// querier; modelOpts are passed to the directions model.
func NewShell(screen tcell.Screen, querier directions.Querier, cfg *config.Config, exportPath string, modelOpts ...directions.Option) *Shell {
	s := &Shell{
		screen:      screen,
		cfg:         cfg,
		renderer:    &Renderer{},
		cell:        CellSize{Width: cfg.Terminal.CellWidth, Height: cfg.Terminal.CellHeight},
		exportPath:  exportPath,
		stepIndex:   -1,
		highlighted: -1,
	}

	if c, ok := querier.(cacheStats); ok {
		s.cache = c
	}

	s.model = directions.New(querier, s, modelOpts...)
	s.view = s.newViewport(cfg.Viewport.Center.ToPoint(), cfg.Viewport.Zoom)
	s.editor = editor.New(s.model, s.view, s.renderer, editor.Options{
		GhostThreshold: cfg.Editor.GhostThreshold,
	})

	return s
}

// Post implements eventloop.Dispatcher by queueing fn as a tcell interrupt
func (s *Shell) Post(fn func()) {
	ev := tcell.NewEventInterrupt(fn)
	if err := s.screen.PostEvent(ev); err != nil {
		// Queue is full; wait for room without blocking the caller, which
		// may be the event loop itself
		go s.screen.PostEventWait(ev)
	}
}

// Model returns the directions model being edited
func (s *Shell) Model() *directions.Directions {
	return s.model
}

// Editor returns the route editor
func (s *Shell) Editor() *editor.RouteEditor {
	return s.editor
}

// Start attaches the editor and loads the configured route
func (s *Shell) Start(ctx context.Context) error {
	ctx = logging.EnsureLogger(ctx)
	s.editor.OnAdd(ctx)
	s.subs.Add(s.model.Events().Load.Subscribe(func(evt directions.LoadEvent) {
		s.routeIndex = 0
		s.stepIndex = -1
		s.highlighted = -1
		s.status = fmt.Sprintf("%d route(s) loaded", len(evt.Routes))
	}))

	route := s.cfg.Route
	if route.Origin != nil {
		s.model.SetOrigin(route.Origin.ToPoint())
	}
	for i, w := range route.Waypoints {
		if err := s.model.AddWaypoint(i, w.ToPoint()); err != nil {
			return err
		}
	}
	if route.Destination != nil {
		s.model.SetDestination(route.Destination.ToPoint())
	}

	if s.model.Queryable() {
		return s.model.Query(ctx)
	}
	return nil
}

// Run handles events until the user quits or ctx is done
func (s *Shell) Run(ctx context.Context) error {
	ctx = logging.EnsureLogger(ctx)
	if err := s.Start(ctx); err != nil {
		return errors.Errorf("failed to load route: %w", err)
	}
	defer s.subs.Close()
	defer s.editor.OnRemove(ctx)

	s.screen.EnableMouse(tcell.MouseMotionEvents)
	defer s.screen.DisableMouse()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.screen.PostEventWait(tcell.NewEventInterrupt(quitSignal{}))
		case <-done:
		}
	}()

	s.Draw()
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if s.HandleEvent(ctx, ev) {
			return nil
		}
		s.Draw()
	}
}

// HandleEvent processes one screen event and reports whether to quit
func (s *Shell) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case func():
			data()
		case quitSignal:
			return true
		}

	case *tcell.EventResize:
		s.resize(ctx)
		s.screen.Sync()

	case *tcell.EventKey:
		return s.handleKey(ctx, ev)

	case *tcell.EventMouse:
		s.handleMouse(ctx, ev)
	}

	return false
}

func (s *Shell) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := s.cell.ToPixel(x, y)
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && s.press == nil:
		id, hit := s.editor.HitTest(p)
		s.press = &press{marker: id, hit: hit, x: x, y: y}

	case down:
		if s.editor.State() == editor.StateIdle {
			// Only markers can be dragged and only once the pointer leaves the cell
			if !s.press.hit || (x == s.press.x && y == s.press.y) {
				return
			}
			if err := s.editor.PointerDown(ctx, s.press.marker); err != nil {
				s.report(ctx, err)
				s.press.hit = false
				return
			}
		}
		if err := s.editor.PointerMove(ctx, p); err != nil {
			s.report(ctx, err)
			if s.editor.State() == editor.StateIdle {
				s.press.hit = false
			}
		}

	case s.press != nil:
		pressed := s.press
		s.press = nil

		switch {
		case s.editor.State() != editor.StateIdle:
			s.report(ctx, s.editor.PointerUp(ctx))
		case pressed.hit:
			s.report(ctx, s.editor.ClickMarker(ctx, pressed.marker))
		case x == pressed.x && y == pressed.y:
			s.report(ctx, s.editor.Click(ctx, p))
		}

	default:
		s.report(ctx, s.editor.PointerMove(ctx, p))
	}
}

func (s *Shell) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	quarterX, quarterY := s.mapSize[0]/4, s.mapSize[1]/4

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		s.setView(ctx, s.view.Pan(0, -quarterY))
	case tcell.KeyDown:
		s.setView(ctx, s.view.Pan(0, quarterY))
	case tcell.KeyLeft:
		s.setView(ctx, s.view.Pan(-quarterX, 0))
	case tcell.KeyRight:
		s.setView(ctx, s.view.Pan(quarterX, 0))
	case tcell.KeyTab:
		s.nextRoute()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'r':
			s.report(ctx, s.editor.Reverse(ctx))
		case '+', '=':
			s.zoom(ctx, 1)
		case '-':
			s.zoom(ctx, -1)
		case 'n':
			s.nextStep()
		case 'h':
			s.nextHighlight()
		case 'e':
			s.report(ctx, s.export(ctx))
		}
	}

	return false
}

func (s *Shell) nextRoute() {
	routes := s.model.Routes()
	if len(routes) == 0 {
		return
	}
	s.routeIndex = (s.routeIndex + 1) % len(routes)
	s.stepIndex = -1
	s.model.HighlightStep(nil)
	s.model.SelectRoute(routes[s.routeIndex])
}

// nextStep highlights the next maneuver of the selected route, then none
func (s *Shell) nextStep() {
	route, ok := s.model.SelectedRoute()
	if !ok || len(route.Steps) == 0 {
		return
	}

	s.stepIndex++
	if s.stepIndex >= len(route.Steps) {
		s.stepIndex = -1
		s.model.HighlightStep(nil)
		s.status = ""
		return
	}

	step := route.Steps[s.stepIndex]
	s.model.HighlightStep(&step)
	s.status = fmt.Sprintf("%d/%d %s", s.stepIndex+1, len(route.Steps), step.Maneuver.Instruction)
}

// nextHighlight cycles the highlighted route through all routes, then none
func (s *Shell) nextHighlight() {
	routes := s.model.Routes()
	if len(routes) == 0 {
		return
	}

	s.highlighted++
	if s.highlighted >= len(routes) {
		s.highlighted = -1
		s.model.HighlightRoute(nil)
		return
	}
	route := routes[s.highlighted]
	s.model.HighlightRoute(&route)
}

func (s *Shell) export(ctx context.Context) error {
	name := s.cfg.Route.Name
	if name == "" {
		name = "Route"
	}

	doc, err := export.Snapshot(name, s.model)
	if err != nil {
		return err
	}

	f, err := os.Create(s.exportPath)
	if err != nil {
		return errors.Errorf("failed to create %s: %w", s.exportPath, err)
	}
	defer f.Close()

	if err := export.WriteKML(f, doc); err != nil {
		return err
	}

	logging.Infow(ctx, "Route exported", "path", s.exportPath, "waypoints", len(doc.Waypoints))
	s.status = "exported to " + s.exportPath
	return nil
}

func (s *Shell) zoom(ctx context.Context, delta float64) {
	zoom := max(0, min(22, s.view.Zoom+delta))
	s.setView(ctx, s.view.ZoomTo(zoom, orb.Point{s.mapSize[0] / 2, s.mapSize[1] / 2}))
}

func (s *Shell) resize(ctx context.Context) {
	center := s.view.Unproject(orb.Point{s.mapSize[0] / 2, s.mapSize[1] / 2})
	s.setView(ctx, s.newViewport(center, s.view.Zoom))
}

func (s *Shell) setView(ctx context.Context, view viewport.Viewport) {
	s.view = view
	s.editor.SetProjector(ctx, view)
}

func (s *Shell) newViewport(center geo.Point, zoom float64) viewport.Viewport {
	width, _ := s.screen.Size()
	s.mapSize = orb.Point{float64(width) * s.cell.Width, float64(s.mapRows()) * s.cell.Height}
	return viewport.New(center, zoom, s.cfg.Viewport.TileSize, s.mapSize[0], s.mapSize[1])
}

func (s *Shell) mapRows() int {
	_, height := s.screen.Size()
	return max(height-statusRows, 1)
}

func (s *Shell) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logging.Debugw(ctx, "Editor action rejected", "error", err)
	s.status = err.Error()
}

// Draw repaints the whole screen
func (s *Shell) Draw() {
	s.screen.Clear()

	rows := s.mapRows()
	s.renderer.Draw(s.screen, s.view, s.cell, rows)

	x := 0
	for i, route := range s.model.Routes() {
		style := tcell.StyleDefault
		if i == s.routeIndex {
			style = statusStyle
		}
		label := fmt.Sprintf(" %d %s %s ", i+1, route.Summary, routers.FormatDetails(route.Distance, route.Duration))
		x = drawText(s.screen, x, rows, label, style)
	}

	status := s.status
	if status == "" {
		status = helpText
	}
	line := fmt.Sprintf("%s z%.0f", s.editor.State(), s.view.Zoom)
	if s.cache != nil {
		stats := s.cache.Stats()
		line += fmt.Sprintf(" cache %d/%d", stats.Hits, stats.FreshEntries)
	}
	drawText(s.screen, 0, rows+1, line+" "+status, tcell.StyleDefault)

	s.screen.Show()
}
