package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpup/prefab/logging"
	"github.com/gdamore/tcell/v2"

	"github.com/Neilblaze/mapbox-directions.js/internal/cache"
	"github.com/Neilblaze/mapbox-directions.js/internal/config"
	"github.com/Neilblaze/mapbox-directions.js/internal/directions"
	"github.com/Neilblaze/mapbox-directions.js/internal/lib/geo"
	"github.com/Neilblaze/mapbox-directions.js/internal/routers"
	"github.com/Neilblaze/mapbox-directions.js/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	origin := flag.String("origin", "", "Origin as lat,lng (overrides config)")
	destination := flag.String("destination", "", "Destination as lat,lng (overrides config)")
	exportPath := flag.String("export", "route.kml", "File written by the export key")
	noCache := flag.Bool("no-cache", false, "Disable the route response cache")

	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *origin != "" {
		cfg.Route.Origin = parseStop("origin", *origin)
	}
	if *destination != "" {
		cfg.Route.Destination = parseStop("destination", *destination)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JSON logs go to stderr, which the screen does not use
	ctx = logging.With(ctx, logging.NewProdLogger().Named("routeedit"))

	var querier directions.Querier = routers.NewLocalRouter(cfg.Router.Options())
	if ttl := cfg.Router.CacheTTL; ttl > 0 && !*noCache {
		responses := cache.NewCache()
		responses.StartPeriodicCleanup(ctx, ttl)
		querier = routers.NewCachingQuerier(querier, responses, ttl)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}

	shell := tui.NewShell(screen, querier, cfg, *exportPath)
	err = shell.Run(ctx)
	screen.Fini()

	if err != nil {
		log.Fatalf("Editor failed: %v", err)
	}
}

func parseStop(name, value string) *config.CoordinatesYAML {
	p, err := geo.ParsePoint(value)
	if err != nil {
		log.Fatalf("Invalid %s %q: %v", name, value, err)
	}
	return &config.CoordinatesYAML{Latitude: p.Latitude, Longitude: p.Longitude}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `routeedit - Interactive terminal route editor

USAGE:
    routeedit [options] 2>routeedit.log

OPTIONS:
    -config PATH          YAML config file (see internal/config/testdata/routeedit.yaml)
    -origin LAT,LNG       Start of the route
    -destination LAT,LNG  End of the route
    -export PATH          File written by the 'e' key (default route.kml)
    -no-cache             Query the router for every edit

MOUSE:
    click empty map       Place the origin, then the destination
    drag A / B            Move the origin or destination
    hover the route       Show the ghost marker 'o'; drag it to add a waypoint
    drag 1-9              Move a waypoint
    click 1-9             Remove a waypoint

KEYS:
    arrows                Pan            + / -   Zoom
    tab                   Next route     r       Reverse
    n                     Next step      h       Highlight next route
    e                     Export KML     q, esc  Quit

ENVIRONMENT:
    ROUTEEDIT_ROUTER__SPEED_KPH=80 overrides router.speed_kph, and so on.
`)
}
