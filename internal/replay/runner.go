package replay

import (
	"context"
	"fmt"

	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/editor"
	"github.com/Neilblaze/mapbox-directions.js/internal/eventloop"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/routing"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/viewport"
)

// StepResult is the editor state after one step
type StepResult struct {
	Step      int
	Action    string
	Err       error
	State     editor.State
	Ghost     editor.GhostState
	Waypoints []geo.Point
	Segments  []int // nearest route segment per waypoint, nil without a route
}

// Result is the outcome of a replay
type Result struct {
	Steps       []StepResult
	Origin      *geo.Point
	Destination *geo.Point
	Waypoints   []geo.Point
	Route       *directions.Route
	Loads       int
	Drags       []uuid.UUID
}

// Runner replays scripts against a fresh model and editor
type Runner struct {
	querier   directions.Querier
	threshold float64
	resolver  routing.OrderResolver
}

// NewRunner creates a Runner that answers route queries with querier
func NewRunner(querier directions.Querier, ghostThreshold float64) *Runner {
	return &Runner{
		querier:   querier,
		threshold: ghostThreshold,
		resolver:  routing.NewOrderResolver(),
	}
}

// Run replays s. Each step runs on an event loop and the snapshot is taken
// after any route query it triggered has been applied. Rejected gestures are
// recorded in the step result rather than stopping the replay.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = logging.EnsureLogger(ctx)

	loop := eventloop.New()
	go loop.Run(ctx)
	defer func() {
		loop.Stop()
		<-loop.Done()
	}()

	model := directions.New(r.querier, loop, directions.WithSyncQueries())
	view := viewport.New(s.Viewport.Center.ToPoint(), s.Viewport.Zoom, s.Viewport.TileSize, s.Viewport.Width, s.Viewport.Height)
	ed := editor.New(model, view, nopRenderer{}, editor.Options{GhostThreshold: r.threshold})

	result := &Result{}
	model.Events().Load.Subscribe(func(directions.LoadEvent) { result.Loads++ })
	for _, kind := range []editor.MarkerKind{editor.MarkerOrigin, editor.MarkerDestination, editor.MarkerWaypoint, editor.MarkerGhost} {
		ed.OnGesture(editor.PhaseStart, kind, func(e editor.DragEvent) { result.Drags = append(result.Drags, e.SessionID) })
	}

	var setupErr error
	if err := loop.Do(ctx, func() {
		ed.OnAdd(ctx)
		setupErr = r.setup(ctx, model, s)
	}); err != nil {
		return nil, err
	}
	if setupErr != nil {
		return nil, setupErr
	}

	for i, step := range s.Steps {
		res := StepResult{Step: i + 1, Action: describe(step)}

		if err := loop.Do(ctx, func() { res.Err = r.apply(ctx, ed, step) }); err != nil {
			return nil, err
		}
		if err := loop.Do(ctx, func() { r.snapshot(ed, model, view, &res) }); err != nil {
			return nil, err
		}

		if res.Err != nil {
			logging.Debugw(ctx, "Replay step rejected", "step", res.Step, "action", res.Action, "error", res.Err)
		}
		result.Steps = append(result.Steps, res)
	}

	err := loop.Do(ctx, func() {
		if p, ok := model.GetOrigin(); ok {
			result.Origin = &p
		}
		if p, ok := model.GetDestination(); ok {
			result.Destination = &p
		}
		result.Waypoints = model.Waypoints()
		if route, ok := model.SelectedRoute(); ok {
			result.Route = &route
		}
		ed.OnRemove(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Runner) setup(ctx context.Context, model *directions.Directions, s *Script) error {
	if s.Origin != nil {
		model.SetOrigin(s.Origin.ToPoint())
	}
	for i, w := range s.Waypoints {
		if err := model.AddWaypoint(i, w.ToPoint()); err != nil {
			return err
		}
	}
	if s.Destination != nil {
		model.SetDestination(s.Destination.ToPoint())
	}

	if model.Queryable() {
		return model.Query(ctx)
	}
	return nil
}

func (r *Runner) apply(ctx context.Context, ed *editor.RouteEditor, step Step) error {
	switch {
	case step.Hover != nil:
		ed.Hover(step.Hover.point())
		return nil
	case step.Down != "":
		marker, err := ParseMarker(step.Down)
		if err != nil {
			return err
		}
		return ed.PointerDown(ctx, marker)
	case step.Move != nil:
		return ed.PointerMove(ctx, step.Move.point())
	case step.Up:
		return ed.PointerUp(ctx)
	case step.Click != nil:
		return ed.Click(ctx, step.Click.point())
	case step.ClickMarker != "":
		marker, err := ParseMarker(step.ClickMarker)
		if err != nil {
			return err
		}
		return ed.ClickMarker(ctx, marker)
	case step.Reverse:
		return ed.Reverse(ctx)
	}
	return nil
}

func (r *Runner) snapshot(ed *editor.RouteEditor, model *directions.Directions, view viewport.Viewport, res *StepResult) {
	res.State = ed.State()
	res.Ghost = ed.Ghost()
	res.Waypoints = model.Waypoints()

	if route := ed.RoutePolyline(); !route.IsZero() {
		res.Segments = r.resolver.SegmentIndices(route, view.ProjectAll(res.Waypoints))
	}
}

func describe(s Step) string {
	switch {
	case s.Hover != nil:
		return fmt.Sprintf("hover %v", *s.Hover)
	case s.Down != "":
		return "down " + s.Down
	case s.Move != nil:
		return fmt.Sprintf("move %v", *s.Move)
	case s.Up:
		return "up"
	case s.Click != nil:
		return fmt.Sprintf("click %v", *s.Click)
	case s.ClickMarker != "":
		return "click " + s.ClickMarker
	case s.Reverse:
		return "reverse"
	}
	return "noop"
}

// nopRenderer discards drawing; replays only inspect the model and editor
type nopRenderer struct{}

func (nopRenderer) ShowGhost(geo.Point)             {}
func (nopRenderer) HideGhost()                      {}
func (nopRenderer) ShowOrigin(geo.Point)            {}
func (nopRenderer) ShowDestination(geo.Point)       {}
func (nopRenderer) HideOrigin()                     {}
func (nopRenderer) HideDestination()                {}
func (nopRenderer) SyncWaypoints([]geo.Point)       {}
func (nopRenderer) ShowRoute(*directions.Route)     {}
func (nopRenderer) ShowHighlight(*directions.Route) {}
func (nopRenderer) ShowStep(*directions.Step)       {}
