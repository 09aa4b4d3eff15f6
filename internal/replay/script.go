package replay

import (
	"io"
	"strconv"
	"strings"

	"github.com/dpup/prefab/errors"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/Neilblaze/mapbox-directions.js/internal/config"
	"github.com/Neilblaze/mapbox-directions.js/internal/editor"
)

// ErrInvalidScript is returned for scripts that cannot be replayed
var ErrInvalidScript = errors.New("invalid gesture script")

// Script is a recorded editing session: a starting route and the pointer
// gestures applied to it. Pointer positions are layer pixels.
type Script struct {
	Name        string                   `yaml:"name"`
	Viewport    ViewportSpec             `yaml:"viewport"`
	Origin      *config.CoordinatesYAML  `yaml:"origin"`
	Destination *config.CoordinatesYAML  `yaml:"destination"`
	Waypoints   []config.CoordinatesYAML `yaml:"waypoints"`
	Steps       []Step                   `yaml:"steps"`
}

// ViewportSpec is the map view the pixel positions refer to
type ViewportSpec struct {
	Center   config.CoordinatesYAML `yaml:"center"`
	Zoom     float64                `yaml:"zoom"`
	TileSize int                    `yaml:"tile_size"`
	Width    float64                `yaml:"width"`
	Height   float64                `yaml:"height"`
}

// Step is one gesture. Exactly one field is set.
type Step struct {
	Hover       *Pixel `yaml:"hover,omitempty"`
	Down        string `yaml:"down,omitempty"` // origin, destination, ghost or waypoint:N
	Move        *Pixel `yaml:"move,omitempty"`
	Up          bool   `yaml:"up,omitempty"`
	Click       *Pixel `yaml:"click,omitempty"`
	ClickMarker string `yaml:"click_marker,omitempty"`
	Reverse     bool   `yaml:"reverse,omitempty"`
}

// Pixel is an [x, y] layer position
type Pixel [2]float64

// Parse decodes and validates a YAML script
func Parse(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Errorf("failed to parse script: %w", err)
	}

	if s.Viewport.TileSize == 0 {
		s.Viewport.TileSize = 256
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return nil, errors.Errorf("viewport width and height are required: %w", ErrInvalidScript)
	}

	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, errors.Errorf("step %d has %d actions, want 1: %w", i+1, n, ErrInvalidScript)
		}
		for _, m := range []string{step.Down, step.ClickMarker} {
			if m == "" {
				continue
			}
			if _, err := ParseMarker(m); err != nil {
				return nil, errors.Errorf("step %d: %w", i+1, err)
			}
		}
	}

	return &s, nil
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Hover != nil, s.Down != "", s.Move != nil, s.Up, s.Click != nil, s.ClickMarker != "", s.Reverse} {
		if set {
			n++
		}
	}
	return n
}

// ParseMarker parses "origin", "destination", "ghost" or "waypoint:N"
func ParseMarker(s string) (editor.MarkerID, error) {
	switch s {
	case "origin":
		return editor.OriginMarker, nil
	case "destination":
		return editor.DestinationMarker, nil
	case "ghost":
		return editor.GhostMarker, nil
	}

	if rest, ok := strings.CutPrefix(s, "waypoint:"); ok {
		index, err := strconv.Atoi(rest)
		if err == nil && index >= 0 {
			return editor.WaypointMarker(index), nil
		}
	}

	return editor.MarkerID{}, errors.Errorf("unknown marker %q: %w", s, ErrInvalidScript)
}

func (p Pixel) point() orb.Point {
	return orb.Point{p[0], p[1]}
}
