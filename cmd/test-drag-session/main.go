package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/orb"

	"github.com/Neilblaze/mapbox-directions.js/internal/export"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/proximity"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/routing"
	"github.com/Neilblaze/mapbox-directions.js/internal/replay"
	"github.com/Neilblaze/mapbox-directions.js/internal/routers"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "replay":
		handleReplay()
	case "resolve":
		handleResolve()
	case "sample":
		fmt.Print(sampleScript)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleReplay() {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	scriptFile := fs.String("script", "", "Path to YAML gesture script")
	kmlFile := fs.String("kml", "", "Write the final route as KML to this file (- for stdout)")
	threshold := fs.Float64("threshold", 15, "Ghost marker threshold in pixels")
	alternatives := fs.Int("alternatives", 1, "Number of routes the local router returns (1 or 2)")
	verbose := fs.Bool("verbose", false, "Show ghost and segment details for every step")

	fs.Parse(os.Args[2:])

	if *scriptFile == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-drag-session sample > detour.yaml")
		fmt.Println("  test-drag-session replay --script detour.yaml --verbose")
		fmt.Println("  test-drag-session replay --script detour.yaml --kml detour.kml")
		os.Exit(1)
	}

	f, err := os.Open(*scriptFile)
	if err != nil {
		log.Fatalf("Error reading script %s: %v", *scriptFile, err)
	}
	script, err := replay.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("Error parsing script: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := logging.NewProdLogger()
	if *verbose {
		logger = logging.NewDevLogger()
	}
	ctx = logging.With(ctx, logger.Named("replay"))

	router := routers.NewLocalRouter(routers.Options{Alternatives: *alternatives})
	start := time.Now()
	result, err := replay.NewRunner(router, *threshold).Run(ctx, script)
	if err != nil {
		log.Fatalf("Error replaying script: %v", err)
	}

	fmt.Printf("Replayed %d step(s) of %q in %v\n\n", len(result.Steps), script.Name, time.Since(start).Round(time.Millisecond))

	for _, step := range result.Steps {
		status := "ok"
		if step.Err != nil {
			status = "rejected: " + step.Err.Error()
		}
		fmt.Printf("%3d. %-24s %-22s %s\n", step.Step, step.Action, step.State, status)

		if *verbose {
			if step.Ghost.Visible {
				fmt.Printf("       ghost at (%.1f, %.1f), %.1fpx from route\n", step.Ghost.Position[0], step.Ghost.Position[1], step.Ghost.Distance)
			} else {
				fmt.Printf("       ghost hidden\n")
			}
			for i, w := range step.Waypoints {
				segment := "-"
				if i < len(step.Segments) {
					segment = strconv.Itoa(step.Segments[i])
				}
				fmt.Printf("       waypoint %d %s segment %s\n", i, w, segment)
			}
		}
	}

	fmt.Printf("\nFINAL ROUTE:\n")
	if result.Origin != nil {
		fmt.Printf("  Origin:      %s\n", *result.Origin)
	}
	for i, w := range result.Waypoints {
		fmt.Printf("  Waypoint %d:  %s\n", i+1, w)
	}
	if result.Destination != nil {
		fmt.Printf("  Destination: %s\n", *result.Destination)
	}
	if result.Route != nil {
		fmt.Printf("  Route:       %s, %s\n", result.Route.Summary, routers.FormatDetails(result.Route.Distance, result.Route.Duration))
	}
	fmt.Printf("  Loads: %d, drags: %d\n", result.Loads, len(result.Drags))

	if *kmlFile != "" {
		writeKML(*kmlFile, script.Name, result)
	}
}

func writeKML(path, name string, result *replay.Result) {
	if result.Origin == nil || result.Destination == nil {
		log.Fatalf("Error exporting KML: %v", export.ErrIncompleteRoute)
	}

	doc := export.Document{
		Name:        name,
		Origin:      *result.Origin,
		Destination: *result.Destination,
		Waypoints:   result.Waypoints,
		Route:       result.Route,
	}

	if path == "-" {
		if err := export.WriteKML(os.Stdout, doc); err != nil {
			log.Fatalf("Error writing KML: %v", err)
		}
		return
	}

	out, err := os.Create(path)
	if err != nil {
		log.Fatalf("Error creating %s: %v", path, err)
	}
	defer out.Close()

	if err := export.WriteKML(out, doc); err != nil {
		log.Fatalf("Error writing KML: %v", err)
	}
	fmt.Printf("\nKML written to %s\n", path)
}

func handleResolve() {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	routeStr := fs.String("route", "", "Screen route as space separated x,y pairs")
	candidateStr := fs.String("candidate", "", "Candidate waypoint as x,y")
	waypointsStr := fs.String("waypoints", "", "Existing waypoints as space separated x,y pairs")

	fs.Parse(os.Args[2:])

	if *routeStr == "" || *candidateStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-drag-session resolve --route '0,0 100,0 100,80' --candidate 100,40 --waypoints '50,5 100,70'")
		os.Exit(1)
	}

	routePoints, err := parsePixels(*routeStr)
	if err != nil {
		log.Fatalf("Error parsing route: %v", err)
	}
	route, err := proximity.NewPolyline(routePoints)
	if err != nil {
		log.Fatalf("Error building route: %v", err)
	}

	candidates, err := parsePixels(*candidateStr)
	if err != nil || len(candidates) != 1 {
		log.Fatalf("Error parsing candidate %q: want a single x,y pair", *candidateStr)
	}
	candidate := candidates[0]

	var waypoints []orb.Point
	if *waypointsStr != "" {
		if waypoints, err = parsePixels(*waypointsStr); err != nil {
			log.Fatalf("Error parsing waypoints: %v", err)
		}
	}

	resolver := routing.NewOrderResolver()
	segment, distance := proximity.NearestSegment(route, candidate)
	closest, _ := proximity.ClosestPoint(route, candidate)

	fmt.Printf("Route: %d point(s), %d segment(s)\n\n", route.Len(), route.Segments())
	fmt.Printf("CANDIDATE (%.1f, %.1f):\n", candidate[0], candidate[1])
	fmt.Printf("  Nearest segment: %d (%.2fpx)\n", segment, distance)
	fmt.Printf("  Closest point:   (%.2f, %.2f)\n\n", closest[0], closest[1])

	if len(waypoints) > 0 {
		fmt.Printf("WAYPOINTS:\n")
		for i, segment := range resolver.SegmentIndices(route, waypoints) {
			fmt.Printf("  %d. (%.1f, %.1f) segment %d\n", i, waypoints[i][0], waypoints[i][1], segment)
		}
		fmt.Printf("\n")
	}

	fmt.Printf("Insertion index: %d of %d\n", resolver.InsertionIndex(route, candidate, waypoints), len(waypoints)+1)
}

// parsePixels parses "x,y x,y ..." into screen points
func parsePixels(s string) ([]orb.Point, error) {
	var points []orb.Point
	for _, pair := range strings.Fields(s) {
		x, y, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q", pair)
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x in %q: %w", pair, err)
		}
		py, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid y in %q: %w", pair, err)
		}
		points = append(points, orb.Point{px, py})
	}
	return points, nil
}

// sampleScript drags a detour off Hwy 4 between Murphys and Arnold, then removes it
const sampleScript = `name: Hwy 4 detour
viewport:
  center: { latitude: 38.18925, longitude: -120.4046 }
  zoom: 12
  width: 800
  height: 600
origin: { latitude: 38.1327, longitude: -120.4606 }
destination: { latitude: 38.2458, longitude: -120.3486 }
steps:
  - hover: [403, 300]
  - down: ghost
  - move: [330, 260]
  - up: true
  - click_marker: waypoint:0
`

func printUsage() {
	fmt.Printf(`test-drag-session - Route editing gesture testing tool

USAGE:
    test-drag-session <command> [options]

COMMANDS:
    replay             Replay a YAML gesture script against the local router
    resolve            Show where a candidate waypoint is inserted along a screen route
    sample             Print a sample gesture script
    help               Show this help message

EXAMPLES:
    # Replay the sample detour and export the result
    test-drag-session sample > detour.yaml
    test-drag-session replay --script detour.yaml --verbose --kml detour.kml

    # Candidate on the second leg of an L-shaped route
    test-drag-session resolve --route '0,0 100,0 100,80' --candidate 100,40 --waypoints '50,5 100,70'

SCRIPT STEPS:
    hover: [x, y]          Move the pointer without a button pressed
    down: MARKER           Press on origin, destination, ghost or waypoint:N
    move: [x, y]           Move the pointer while dragging
    up: true               Release the pointer
    click: [x, y]          Click empty map (places origin, then destination)
    click_marker: MARKER   Click a marker (waypoint:N removes it)
    reverse: true          Swap origin and destination
`)
}
