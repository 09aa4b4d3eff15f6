package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/dpup/prefab/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or longitudes outside [-180, 180]
var ErrInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

const earthRadius = 6371000

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using Haversine formula
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if !IsValid(p1) || !IsValid(p2) {
		return 0, ErrInvalidCoordinate
	}

	if p1 == p2 {
		return 0, nil
	}

	lat1 := p1.Latitude * math.Pi / 180
	lon1 := p1.Longitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	lon2 := p2.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c, nil
}

// PathLength sums the great-circle length of consecutive legs
func (g *geoUtils) PathLength(points []Point) (float64, error) {
	total := 0.0
	for i := 1; i < len(points); i++ {
		d, err := g.PointToPoint(points[i-1], points[i])
		if err != nil {
			return 0, errors.Errorf("leg %d: %w", i, err)
		}
		total += d
	}
	return total, nil
}

// Densify inserts linearly interpolated points along each leg
func (g *geoUtils) Densify(points []Point, maxStepMeters float64) ([]Point, error) {
	if len(points) == 0 {
		return nil, errors.New("path has no points")
	}
	if maxStepMeters <= 0 {
		return nil, errors.Errorf("step must be positive, got %v", maxStepMeters)
	}

	out := []Point{points[0]}
	for i := 1; i < len(points); i++ {
		start, end := points[i-1], points[i]
		length, err := g.PointToPoint(start, end)
		if err != nil {
			return nil, errors.Errorf("leg %d: %w", i, err)
		}

		steps := int(math.Ceil(length / maxStepMeters))
		for s := 1; s < steps; s++ {
			out = append(out, Interpolate(start, end, float64(s)/float64(steps)))
		}
		out = append(out, end)
	}

	return out, nil
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !IsValid(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes points with the Google polyline algorithm
func (g *geoUtils) EncodePolyline(points []Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// Interpolate returns the point at fraction t along the straight line from start to end
func Interpolate(start, end Point, t float64) Point {
	return Point{
		Latitude:  start.Latitude + t*(end.Latitude-start.Latitude),
		Longitude: start.Longitude + t*(end.Longitude-start.Longitude),
	}
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !IsValid(point) {
		return Point{}, ErrInvalidCoordinate
	}
	return point, nil
}

// ParsePoint parses "lat,lng", as printed by Point.String
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, errors.Errorf("want \"lat,lng\", got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, errors.Errorf("latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, errors.Errorf("longitude %q: %w", parts[1], err)
	}

	return NewPoint(lat, lng)
}

// ToOrb converts to an orb point in GeoJSON axis order (lng, lat)
func (p Point) ToOrb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// FromOrb converts a (lng, lat) orb point
func FromOrb(p orb.Point) Point {
	return Point{Latitude: p[1], Longitude: p[0]}
}

// LineString converts a point sequence to an orb.LineString
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.ToOrb()
	}
	return ls
}

// PointsFromLineString converts an orb.LineString back to points
func PointsFromLineString(ls orb.LineString) []Point {
	points := make([]Point, len(ls))
	for i, p := range ls {
		points[i] = FromOrb(p)
	}
	return points
}

// Feature wraps a point as a GeoJSON feature carrying a display name
func Feature(p Point, name string) *geojson.Feature {
	f := geojson.NewFeature(p.ToOrb())
	f.Properties["name"] = name
	return f
}

// FromFeature extracts the point geometry of a GeoJSON feature
func FromFeature(f *geojson.Feature) (Point, error) {
	if f == nil || f.Geometry == nil {
		return Point{}, errors.New("feature has no geometry")
	}

	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return Point{}, errors.Errorf("feature geometry is %s, want Point", f.Geometry.GeoJSONType())
	}

	return FromOrb(p), nil
}

// FeatureName returns the "name" property of a feature, or "" when absent
func FeatureName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	return f.Properties.MustString("name", "")
}

// IsValid validates latitude and longitude values
func IsValid(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
