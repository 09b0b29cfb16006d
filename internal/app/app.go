package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cargolink/tracking-system/config"
	"github.com/cargolink/tracking-system/internal/adapter/gmaps"
	"github.com/cargolink/tracking-system/internal/adapter/http/server"
	"github.com/cargolink/tracking-system/internal/adapter/locationiq"
	"github.com/cargolink/tracking-system/internal/adapter/osrm"
	repo "github.com/cargolink/tracking-system/internal/adapter/postgres"
	brokeradapter "github.com/cargolink/tracking-system/internal/adapter/rabbit"
	"github.com/cargolink/tracking-system/internal/adapter/redisstore"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/internal/service/geocode"
	"github.com/cargolink/tracking-system/internal/service/route"
	"github.com/cargolink/tracking-system/internal/service/simulation"
	"github.com/cargolink/tracking-system/internal/service/tracking"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/postgres"
	"github.com/cargolink/tracking-system/pkg/rabbit"
	ws "github.com/cargolink/tracking-system/pkg/wsHub"
)

// App wires the tracker service together: storage, broker, routing and
// geocoding backends, the simulation ticker and the HTTP surface.
type App struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	redis      *goredis.Client
	hub        *ws.ConnectionHub
	ticker     *simulation.Ticker
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	shipmentRepo := repo.NewShipmentRepo(postgresDB.Pool)

	// Position snapshots live in Redis when configured, otherwise in memory.
	var store tracking.Store
	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		store = redisstore.New(redisClient, cfg.Redis.TTL)
	} else {
		store = tracking.NewMemoryStore()
	}

	channel := tracking.NewChannel(store, cfg.Tracking.PollInterval, log, server.ServiceName)

	// Location updates fan out through RabbitMQ so every instance sees the
	// full stream. Without a broker the ticker feeds the channel directly.
	var publisher simulation.Publisher = channel
	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Warn(ctx, "rabbitmq unavailable, publishing locations locally only", "err", err.Error())
		rabbitMQ = nil
	} else {
		broker, err := brokeradapter.NewLocationBroker(rabbitMQ)
		if err != nil {
			log.Error(ctx, "Failed to setup location broker", err)
			return nil, err
		}
		publisher = broker

		if err := broker.ConsumeLocations(ctx, brokeradapter.QueueLocationUpdates, brokeradapter.BindingAllVehicles, channel.Publish); err != nil {
			log.Error(ctx, "Failed to start location consumer", err)
			return nil, err
		}
	}

	ticker := simulation.NewTicker(cfg.Simulation.TickInterval, cfg.Simulation.SpeedKmh, publisher, log, server.ServiceName)

	// Routing backend is selected by configuration.
	var backend route.Backend
	switch cfg.Routing.Backend {
	case "google":
		backend, err = gmaps.New(cfg.Routing.GoogleAPIKey)
		if err != nil {
			log.Error(ctx, "Failed to setup google routing backend", err)
			return nil, err
		}
	default:
		backend = osrm.New(cfg.Routing.OSRMBaseURL)
	}
	routes := route.NewProvider(backend, cfg.Routing.CacheTTL, log)

	geocoder := geocode.NewCache(locationiq.New(cfg.Geocode.LocationIQapiKey), cfg.Geocode.CacheTTL, log)

	simService := simulation.NewService(shipmentRepo, geocoder, routes, ticker, cfg.Simulation.LookaheadMeters, log)

	// Persist arrival so the shipment record catches up with the machine.
	ticker.OnArrival(func(ctx context.Context, vehicleID string) {
		shipment, err := shipmentRepo.GetByVehicleID(ctx, vehicleID)
		if err != nil {
			log.Error(wrap.WithVehicleID(ctx, vehicleID), "failed to find shipment for arrived vehicle", err)
			return
		}
		if err := shipmentRepo.UpdateStatus(ctx, shipment.ID, types.StateArrivedAtDropoff); err != nil {
			log.Error(wrap.WithShipmentID(ctx, shipment.ID), "failed to persist arrival status", err)
		}
	})

	hub := ws.NewConnHub(log)

	httpServer, err := server.New(cfg, simService, channel, channel, hub, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &App{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		redis:      redisClient,
		hub:        hub,
		ticker:     ticker,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

// Run starts the ticker and HTTP server and blocks until a shutdown signal
// or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.ticker.Start(ctx)
	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "tracker service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "tracker service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	a.ticker.Stop(ctx)

	if a.hub != nil {
		a.hub.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn(ctx, "Failed to close redis client", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
