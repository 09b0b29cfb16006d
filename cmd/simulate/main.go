package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cargolink/tracking-system/internal/adapter/osrm"
	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/internal/service/lifecycle"
	"github.com/cargolink/tracking-system/internal/service/simulation"
	"github.com/cargolink/tracking-system/pkg/logger"
)

// simulate drives a single vehicle along a routed path and prints every
// position update. Useful for exercising the simulation loop without the
// tracker service, a database or a broker.
//
// Usage:
//
//	simulate [flags] [vehicle_id] [tick_interval_seconds]

const defaultVehicleID = "vehicle-sim-1"

var (
	originFlag = flag.String("origin", "76.889709,43.238949", "origin as lon,lat")
	destFlag   = flag.String("dest", "76.945465,43.255058", "destination as lon,lat")
	osrmFlag   = flag.String("osrm", "https://router.project-osrm.org", "OSRM base URL")
	speedFlag  = flag.Float64("speed", simulation.DefaultSpeedKmh, "vehicle speed in km/h")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	log := logger.InitLogger("simulate", logger.LevelInfo)

	vehicleID := flag.Arg(0)
	if vehicleID == "" {
		vehicleID = defaultVehicleID
		log.Warn(ctx, "no vehicle id given, using default", "vehicle_id", vehicleID)
	}

	interval := simulation.DefaultTickInterval
	if flag.NArg() >= 2 {
		seconds, err := strconv.Atoi(flag.Arg(1))
		if err != nil || seconds <= 0 {
			log.Warn(ctx, "invalid tick interval, using default",
				"given", flag.Arg(1),
				"default", simulation.DefaultTickInterval.String(),
			)
		} else {
			interval = time.Duration(seconds) * time.Second
		}
	}

	origin, err := parseCoord(*originFlag)
	if err != nil {
		log.Error(ctx, "invalid origin", err)
		os.Exit(2)
	}
	destination, err := parseCoord(*destFlag)
	if err != nil {
		log.Error(ctx, "invalid destination", err)
		os.Exit(2)
	}

	geometry, err := osrm.New(*osrmFlag).GetRoute(ctx, origin, destination)
	if err != nil {
		log.Error(ctx, "failed to fetch route", err)
		os.Exit(1)
	}
	log.Info(ctx, "route fetched",
		"points", len(geometry.Points),
		"distance_meters", geometry.DistanceMeters,
	)

	machine, err := lifecycle.NewAt(types.StateEnRoute)
	if err != nil {
		log.Error(ctx, "failed to init lifecycle", err)
		os.Exit(1)
	}

	ticker := simulation.NewTicker(interval, *speedFlag, printPublisher{}, log, "simulate")
	ticker.OnArrival(func(ctx context.Context, vehicleID string) {
		log.Info(ctx, "vehicle arrived, exiting", "vehicle_id", vehicleID)
		// Let the in-flight tick finish before the process goes away.
		go func() {
			ticker.Stop(context.Background())
			os.Exit(0)
		}()
	})

	ticker.Register(simulation.NewSimulator(vehicleID, geometry, simulation.DefaultLookaheadMeters), machine)
	ticker.Start(ctx)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh

	ticker.Stop(ctx)
}

type printPublisher struct{}

func (printPublisher) Publish(_ context.Context, update models.LocationUpdate) error {
	fmt.Printf("%s lat=%.6f lon=%.6f heading=%.1f speed=%.1f\n",
		update.Time().Format(time.RFC3339),
		update.Latitude, update.Longitude,
		update.Heading, update.Speed,
	)
	return nil
}

func parseCoord(input string) (models.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("invalid coordinate: %s", input)
	}

	lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return models.Coordinate{}, fmt.Errorf("invalid lon/lat: %s", input)
	}

	coord := models.Coordinate{Longitude: lon, Latitude: lat}
	if !coord.Valid() {
		return models.Coordinate{}, fmt.Errorf("coordinate out of range: %s", input)
	}
	return coord, nil
}
