package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cargolink/tracking-system/config"
	"github.com/cargolink/tracking-system/internal/adapter/http/handler"
	"github.com/cargolink/tracking-system/internal/adapter/http/middleware"
	"github.com/cargolink/tracking-system/internal/service/tracking"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	ws "github.com/cargolink/tracking-system/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

const ServiceName = "tracker"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health    *handler.Health
	tracking  *handler.Tracking
	vehicleWS *handler.VehicleWS
}

func New(
	cfg config.Config,
	simulations handler.SimulationService,
	locations handler.LocationService,
	channel *tracking.Channel,
	hub *ws.ConnectionHub,
	log logger.Logger,
) (*API, error) {
	if simulations == nil {
		return nil, errors.New("simulation service is required")
	}
	if locations == nil {
		return nil, errors.New("location service is required")
	}

	addr := fmt.Sprintf(serverIPAddress, cfg.Server.Host, cfg.Server.Port)

	routes := &handlers{
		health:    handler.NewHealth(ServiceName, log),
		tracking:  handler.NewTracking(simulations, locations, log),
		vehicleWS: handler.NewVehicleWS(hub, channel, cfg.Tracking.StaleThreshold, log, ServiceName),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(log),
		addr:   addr,
		cfg:    cfg,
		log:    log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(ServiceName)(a.mux))))
}
