package editor

import (
	"context"
	"fmt"

	"github.com/dpup/prefab/errors"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// DefaultGhostThreshold is the pixel radius used for ghost snapping and suppression
const DefaultGhostThreshold = 15.0

var (
	// ErrSessionActive is returned when a gesture starts while another is in progress
	ErrSessionActive = errors.New("a drag session is already active")

	// ErrNoSession is returned when a gesture ends without having started
	ErrNoSession = errors.New("no drag session is active")

	// ErrNoRoute is returned when a ghost drag starts without a selected route
	ErrNoRoute = errors.New("no route is selected")

	// ErrGhostHidden is returned when the ghost marker is pressed while hidden
	ErrGhostHidden = errors.New("ghost marker is not visible")

	// ErrNoMarker is returned when a gesture targets a marker that is not placed
	ErrNoMarker = errors.New("marker is not placed")

	// ErrIndexOutOfRange is returned for waypoint indices outside the sequence
	ErrIndexOutOfRange = errors.New("waypoint index out of range")
)

// MarkerKind identifies the kind of interactive marker
type MarkerKind int

const (
	MarkerOrigin MarkerKind = iota
	MarkerDestination
	MarkerWaypoint
	MarkerGhost
)

// String returns the kind name for logs
func (k MarkerKind) String() string {
	switch k {
	case MarkerOrigin:
		return "origin"
	case MarkerDestination:
		return "destination"
	case MarkerWaypoint:
		return "waypoint"
	case MarkerGhost:
		return "ghost"
	default:
		return "unknown"
	}
}

// MarkerID identifies one marker. Index is only meaningful for waypoints.
type MarkerID struct {
	Kind  MarkerKind
	Index int
}

var (
	OriginMarker      = MarkerID{Kind: MarkerOrigin, Index: -1}
	DestinationMarker = MarkerID{Kind: MarkerDestination, Index: -1}
	GhostMarker       = MarkerID{Kind: MarkerGhost, Index: -1}
)

// WaypointMarker returns the ID of the waypoint marker at index
func WaypointMarker(index int) MarkerID {
	return MarkerID{Kind: MarkerWaypoint, Index: index}
}

// String formats the marker for logs
func (m MarkerID) String() string {
	if m.Kind == MarkerWaypoint {
		return fmt.Sprintf("waypoint[%d]", m.Index)
	}
	return m.Kind.String()
}

// State is the drag state of the editor
type State int

const (
	StateIdle State = iota
	StateDraggingOrigin
	StateDraggingDestination
	StateDraggingWaypoint
	StateDraggingGhost
)

// String returns the state name for display
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDraggingOrigin:
		return "DRAGGING_ORIGIN"
	case StateDraggingDestination:
		return "DRAGGING_DESTINATION"
	case StateDraggingWaypoint:
		return "DRAGGING_WAYPOINT"
	case StateDraggingGhost:
		return "DRAGGING_GHOST"
	default:
		return "UNKNOWN"
	}
}

// DragSession is the state of one pointer-drag gesture. It exists from
// pointer-down until pointer-up.
type DragSession struct {
	ID       uuid.UUID
	Target   MarkerID
	Index    int // waypoint index being moved, -1 for origin and destination
	Position orb.Point
}

// GhostState is the outcome of the hover rule for one pointer position
type GhostState struct {
	Visible  bool
	Position orb.Point // snapped point on the route
	Distance float64   // pointer to route distance
}

// Phase is a stage of a drag gesture
type Phase int

const (
	PhaseStart Phase = iota
	PhaseDrag
	PhaseEnd
)

// DragEvent is delivered to gesture callbacks
type DragEvent struct {
	Phase     Phase
	Marker    MarkerID
	SessionID uuid.UUID
	Position  geo.Point
}

// Model is the route/waypoint model the editor mutates. *directions.Directions implements it.
type Model interface {
	GetOrigin() (geo.Point, bool)
	SetOrigin(p geo.Point)
	GetDestination() (geo.Point, bool)
	SetDestination(p geo.Point)

	Waypoints() []geo.Point
	WaypointCount() int
	AddWaypoint(index int, p geo.Point) error
	SetWaypoint(index int, p geo.Point) error
	RemoveWaypoint(index int) error

	Reverse()
	Queryable() bool
	Query(ctx context.Context) error
	SelectedRoute() (directions.Route, bool)
	Events() *directions.Events
}

// Projector converts between geographic and screen coordinates
type Projector interface {
	Project(p geo.Point) orb.Point
	Unproject(p orb.Point) geo.Point
}

// Renderer draws markers and routes. Calls are made on the editor's goroutine.
type Renderer interface {
	ShowGhost(at geo.Point)
	HideGhost()
	ShowOrigin(at geo.Point)
	HideOrigin()
	ShowDestination(at geo.Point)
	HideDestination()
	SyncWaypoints(points []geo.Point)
	ShowRoute(route *directions.Route)
	ShowHighlight(route *directions.Route)
	ShowStep(step *directions.Step)
}
