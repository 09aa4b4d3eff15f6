package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/dpup/prefab/errors"
	"github.com/twpayne/go-kml/v2"

	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
)

// ErrIncompleteRoute is returned when exporting without origin and destination
var ErrIncompleteRoute = errors.New("route needs an origin and a destination to export")

// Source is the subset of the route model needed for export
type Source interface {
	GetOrigin() (geo.Point, bool)
	GetDestination() (geo.Point, bool)
	Waypoints() []geo.Point
	SelectedRoute() (directions.Route, bool)
}

// Document is a snapshot of an edited route
type Document struct {
	Name        string
	Origin      geo.Point
	Destination geo.Point
	Waypoints   []geo.Point
	Route       *directions.Route // nil before the first query completes
}

// Snapshot copies the current stops and selected route from src
func Snapshot(name string, src Source) (Document, error) {
	origin, ok := src.GetOrigin()
	if !ok {
		return Document{}, ErrIncompleteRoute
	}
	destination, ok := src.GetDestination()
	if !ok {
		return Document{}, ErrIncompleteRoute
	}

	doc := Document{
		Name:        name,
		Origin:      origin,
		Destination: destination,
		Waypoints:   src.Waypoints(),
	}
	if route, ok := src.SelectedRoute(); ok {
		doc.Route = &route
	}
	return doc, nil
}

var routeColor = color.RGBA{R: 0x33, G: 0x88, B: 0xff, A: 0xff}

// WriteKML renders doc as an indented KML document: one placemark per stop
// and a line for the selected route
func WriteKML(w io.Writer, doc Document) error {
	routeStyle := kml.SharedStyle("route",
		kml.LineStyle(
			kml.Color(routeColor),
			kml.Width(4),
		),
	)

	children := []kml.Element{
		kml.Name(doc.Name),
		routeStyle,
		stopPlacemark("Origin", doc.Origin),
	}
	for i, waypoint := range doc.Waypoints {
		children = append(children, stopPlacemark(fmt.Sprintf("Waypoint %d", i+1), waypoint))
	}
	children = append(children, stopPlacemark("Destination", doc.Destination))

	if doc.Route != nil && len(doc.Route.Geometry) > 1 {
		coords := make([]kml.Coordinate, len(doc.Route.Geometry))
		for i, p := range doc.Route.Geometry {
			coords[i] = kml.Coordinate{Lon: p[0], Lat: p[1]}
		}

		children = append(children, kml.Placemark(
			kml.Name(doc.Route.Summary),
			kml.Description(fmt.Sprintf("%.0f m, %s", doc.Route.Distance, doc.Route.Duration)),
			kml.StyleURL(routeStyle.URL()),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		))
	}

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return errors.Errorf("failed to write KML: %w", err)
	}
	return nil
}

func stopPlacemark(name string, p geo.Point) kml.Element {
	return kml.Placemark(
		kml.Name(name),
		kml.Point(
			kml.Coordinates(kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}),
		),
	)
}
