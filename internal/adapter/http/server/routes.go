package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	// Swagger UI endpoint
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("tracker")))

	// Prometheus metrics endpoint
	a.mux.Handle("/metrics", promhttp.Handler())

	// Vehicle tracking
	a.mux.HandleFunc("GET /vehicles/{vehicle_id}/location", a.routes.tracking.GetLocation) // Latest known position
	a.mux.HandleFunc("GET /vehicles/{vehicle_id}/track", a.routes.tracking.GetTrack)       // Recent positions
	a.mux.HandleFunc("GET /vehicles/{vehicle_id}", a.routes.tracking.GetVehicle)           // Simulation snapshot
	a.mux.HandleFunc("GET /ws/vehicles/{vehicle_id}", a.routes.vehicleWS.HandleWS)         // WebSocket stream

	// Shipment simulation control
	a.mux.HandleFunc("POST /shipments/{shipment_id}/simulation/start", a.routes.tracking.StartSimulation)
	a.mux.HandleFunc("POST /shipments/{shipment_id}/simulation/stop", a.routes.tracking.StopSimulation)
	a.mux.HandleFunc("POST /shipments/{shipment_id}/status", a.routes.tracking.UpdateStatus)
}
