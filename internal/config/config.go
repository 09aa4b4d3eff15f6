package config

import (
	"strings"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/routers"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// ROUTEEDIT_EDITOR__GHOST_THRESHOLD=20
const EnvPrefix = "ROUTEEDIT_"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete editor configuration
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	Viewport ViewportConfig `yaml:"viewport"`
	Router   RouterConfig   `yaml:"router"`
	Terminal TerminalConfig `yaml:"terminal"`
	Route    RouteConfig    `yaml:"route"`
}

// EditorConfig holds drag and hover settings
type EditorConfig struct {
	GhostThreshold float64 `yaml:"ghost_threshold"` // pixels
}

// ViewportConfig holds the initial map view
type ViewportConfig struct {
	Zoom     float64         `yaml:"zoom"`
	TileSize int             `yaml:"tile_size"`
	Center   CoordinatesYAML `yaml:"center"`
}

// RouterConfig holds local router and query cache settings
type RouterConfig struct {
	SpeedKPH     float64       `yaml:"speed_kph"`
	SampleMeters float64       `yaml:"sample_meters"`
	Alternatives int           `yaml:"alternatives"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// TerminalConfig holds the pixel size of one terminal cell
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// RouteConfig is the route loaded at startup. Origin and destination are
// optional; without them the editor starts empty.
type RouteConfig struct {
	Name        string            `yaml:"name"`
	Origin      *CoordinatesYAML  `yaml:"origin"`
	Destination *CoordinatesYAML  `yaml:"destination"`
	Waypoints   []CoordinatesYAML `yaml:"waypoints"`
}

// CoordinatesYAML represents lat/lon coordinates in YAML config
type CoordinatesYAML struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ToPoint converts CoordinatesYAML to a geo.Point
func (c CoordinatesYAML) ToPoint() geo.Point {
	return geo.Point{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

// Options converts RouterConfig to local router options
func (r RouterConfig) Options() routers.Options {
	return routers.Options{
		SpeedKPH:     r.SpeedKPH,
		SampleMeters: r.SampleMeters,
		Alternatives: r.Alternatives,
		CacheTTL:     r.CacheTTL,
	}
}

// defaults are loaded before the file and environment
func defaults() map[string]interface{} {
	router := routers.DefaultOptions()

	return map[string]interface{}{
		"editor.ghost_threshold":    15.0,
		"viewport.zoom":             11.0,
		"viewport.tile_size":        256,
		"viewport.center.latitude":  38.1900,
		"viewport.center.longitude": -120.4050,
		"router.speed_kph":          router.SpeedKPH,
		"router.sample_meters":      router.SampleMeters,
		"router.alternatives":       router.Alternatives,
		"router.cache_ttl":          router.CacheTTL,
		"terminal.cell_width":       8.0,
		"terminal.cell_height":      16.0,
	}
}

// Load reads configuration from defaults, then the YAML file at path (if
// path is not empty), then ROUTEEDIT_ environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ROUTEEDIT_ROUTER__SPEED_KPH to router.speed_kph
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch {
	case c.Editor.GhostThreshold <= 0:
		return errors.Errorf("editor.ghost_threshold must be positive: %w", ErrInvalidConfig)
	case c.Viewport.Zoom < 0 || c.Viewport.Zoom > 22:
		return errors.Errorf("viewport.zoom must be within [0, 22]: %w", ErrInvalidConfig)
	case c.Viewport.TileSize <= 0:
		return errors.Errorf("viewport.tile_size must be positive: %w", ErrInvalidConfig)
	case !geo.IsValid(c.Viewport.Center.ToPoint()):
		return errors.Errorf("viewport.center: %w", ErrInvalidConfig)
	case c.Router.SpeedKPH <= 0:
		return errors.Errorf("router.speed_kph must be positive: %w", ErrInvalidConfig)
	case c.Router.Alternatives < 1 || c.Router.Alternatives > 2:
		return errors.Errorf("router.alternatives must be 1 or 2: %w", ErrInvalidConfig)
	case c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0:
		return errors.Errorf("terminal cell size must be positive: %w", ErrInvalidConfig)
	}

	stops := append([]CoordinatesYAML(nil), c.Route.Waypoints...)
	if c.Route.Origin != nil {
		stops = append(stops, *c.Route.Origin)
	}
	if c.Route.Destination != nil {
		stops = append(stops, *c.Route.Destination)
	}
	for _, s := range stops {
		if !geo.IsValid(s.ToPoint()) {
			return errors.Errorf("route stop %.5f,%.5f: %w", s.Latitude, s.Longitude, ErrInvalidConfig)
		}
	}

	return nil
}
