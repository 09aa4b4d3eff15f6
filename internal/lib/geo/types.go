package geo

import "fmt"

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// String formats the point as "lat,lng" with five decimals
func (p Point) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Latitude, p.Longitude)
}

// Polyline represents an encoded polyline with optional decoded points
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline"`
	Points          []Point `json:"points"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Total great-circle length of a point sequence in meters
	PathLength(points []Point) (float64, error)

	// Densify a path so no two consecutive points are further apart than maxStepMeters
	Densify(points []Point, maxStepMeters float64) ([]Point, error)

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)

	// Encode point sequence to Google polyline string
	EncodePolyline(points []Point) string
}

// NewGeoUtils is implemented in geo.go
