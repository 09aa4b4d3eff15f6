package editor

import (
	"context"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// PointerDown starts dragging marker. Pressing the ghost marker inserts a new
// waypoint at the route-ordered position under the ghost and drags that.
func (e *RouteEditor) PointerDown(ctx context.Context, marker MarkerID) error {
	if e.session != nil {
		return ErrSessionActive
	}

	session := &DragSession{
		ID:     uuid.New(),
		Target: marker,
		Index:  -1,
	}

	switch marker.Kind {
	case MarkerOrigin:
		p, ok := e.markers.Origin()
		if !ok {
			return errors.Errorf("%s: %w", marker, ErrNoMarker)
		}
		session.Position = e.projector.Project(p)

	case MarkerDestination:
		p, ok := e.markers.Destination()
		if !ok {
			return errors.Errorf("%s: %w", marker, ErrNoMarker)
		}
		session.Position = e.projector.Project(p)

	case MarkerWaypoint:
		if marker.Index < 0 || marker.Index >= e.markers.Len() || marker.Index >= e.model.WaypointCount() {
			return errors.Errorf("%s of %d: %w", marker, e.markers.Len(), ErrIndexOutOfRange)
		}
		session.Index = marker.Index
		session.Position = e.projector.Project(e.markers.Waypoints()[marker.Index])

	case MarkerGhost:
		index, err := e.insertGhostWaypoint(ctx)
		if err != nil {
			return err
		}
		session.Index = index
		session.Target = GhostMarker
		session.Position = e.ghost.Position
		e.hideGhost()

	default:
		return errors.Errorf("unknown marker kind %d", marker.Kind)
	}

	e.session = session

	logging.Infow(ctx, "Drag started", "session_id", session.ID, "marker", marker, "index", session.Index)
	e.publishGesture(PhaseStart, session)

	return nil
}

// insertGhostWaypoint adds a waypoint at the ghost position and returns its index
func (e *RouteEditor) insertGhostWaypoint(ctx context.Context) (int, error) {
	if e.route.IsZero() {
		return 0, ErrNoRoute
	}
	if !e.ghost.Visible {
		return 0, ErrGhostHidden
	}

	waypoints := e.markers.Waypoints()
	screen := make([]orb.Point, len(waypoints))
	for i, w := range waypoints {
		screen[i] = e.projector.Project(w)
	}

	index := e.resolver.InsertionIndex(e.route, e.ghost.Position, screen)
	at := e.projector.Unproject(e.ghost.Position)

	if err := e.model.AddWaypoint(index, at); err != nil {
		return 0, err
	}
	e.markers.InsertWaypoint(index, at)
	e.renderer.SyncWaypoints(e.markers.Waypoints())

	logging.Debugw(ctx, "Ghost waypoint inserted", "index", index, "of", len(waypoints)+1)

	return index, nil
}

// PointerMove moves the dragged marker to p, or updates the ghost preview when idle
func (e *RouteEditor) PointerMove(ctx context.Context, p orb.Point) error {
	if e.session == nil {
		e.Hover(p)
		return nil
	}

	session := e.session
	session.Position = p
	at := e.projector.Unproject(p)

	switch session.Target.Kind {
	case MarkerOrigin:
		e.model.SetOrigin(at)

	case MarkerDestination:
		e.model.SetDestination(at)

	default:
		// A load may have shrunk the sequence since the drag started
		if session.Index >= e.model.WaypointCount() || session.Index >= e.markers.Len() {
			logging.Warnw(ctx, "Dragged waypoint no longer exists, ending drag",
				"session_id", session.ID, "index", session.Index, "waypoints", e.model.WaypointCount())
			e.endSession(ctx)
			return errors.Errorf("drag of waypoint %d: %w", session.Index, ErrIndexOutOfRange)
		}
		if err := e.model.SetWaypoint(session.Index, at); err != nil {
			return err
		}
		e.markers.MoveWaypoint(session.Index, at)
		e.renderer.SyncWaypoints(e.markers.Waypoints())
	}

	e.publishGesture(PhaseDrag, session)

	return e.queryIfReady(ctx)
}

// PointerUp ends the drag session; the last position stays in the model
func (e *RouteEditor) PointerUp(ctx context.Context) error {
	if e.session == nil {
		return ErrNoSession
	}

	e.publishGesture(PhaseEnd, e.session)
	e.endSession(ctx)
	return nil
}

func (e *RouteEditor) endSession(ctx context.Context) {
	logging.Infow(ctx, "Drag ended", "session_id", e.session.ID, "marker", e.session.Target, "index", e.session.Index)
	e.session = nil
}

func (e *RouteEditor) publishGesture(phase Phase, s *DragSession) {
	e.gestures[phase].Publish(DragEvent{
		Phase:     phase,
		Marker:    s.Target,
		SessionID: s.ID,
		Position:  e.projector.Unproject(s.Position),
	})
}
