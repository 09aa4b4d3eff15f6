package routers

import (
	"time"

	"github.com/dpup/prefab/errors"
)

// ErrInvalidStop is returned when a request stop is not a valid coordinate
var ErrInvalidStop = errors.New("route request contains an invalid stop")

// Options configure the local router
type Options struct {
	// SpeedKPH is the assumed travel speed used for durations
	SpeedKPH float64

	// SampleMeters is the maximum spacing between geometry points
	SampleMeters float64

	// Alternatives is the number of candidate routes to return (1 or 2)
	Alternatives int

	// CacheTTL is how long query responses are cached; zero disables caching
	CacheTTL time.Duration
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		SpeedKPH:     50,
		SampleMeters: 250,
		Alternatives: 2,
		CacheTTL:     10 * time.Minute,
	}
}
