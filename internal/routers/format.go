package routers

import (
	"fmt"
	"time"
)

const metersPerMile = 1609.344

// FormatImperial renders a distance in meters as miles, or feet below a tenth of a mile
func FormatImperial(meters float64) string {
	miles := meters / metersPerMile

	switch {
	case miles >= 100:
		return fmt.Sprintf("%.0fmi", miles)
	case miles >= 10:
		return fmt.Sprintf("%.1fmi", miles)
	case miles >= 0.1:
		return fmt.Sprintf("%.2fmi", miles)
	default:
		return fmt.Sprintf("%.0fft", miles*5280)
	}
}

// FormatDuration renders a travel time as "45s", "12min" or "2h 5min"
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	seconds %= 60
	minutes %= 60

	switch {
	case hours == 0 && minutes == 0:
		return fmt.Sprintf("%ds", seconds)
	case hours == 0:
		return fmt.Sprintf("%dmin", minutes)
	default:
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
}

// FormatDetails renders the distance and duration of a route for a route list
func FormatDetails(meters float64, d time.Duration) string {
	return FormatImperial(meters) + ", " + FormatDuration(d)
}
