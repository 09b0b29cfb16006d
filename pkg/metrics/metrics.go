package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Simulation metrics
	ActiveSimulationsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_simulations_total",
			Help: "Current number of vehicles registered with the simulation ticker",
		},
		[]string{"service"},
	)

	SimulationTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulation_ticks_total",
			Help: "Total number of simulation ticks processed",
		},
		[]string{"service"},
	)

	RoutesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routes_completed_total",
			Help: "Total number of simulated vehicles that reached route end",
		},
		[]string{"service"},
	)

	// Update channel metrics
	UpdatesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_updates_published_total",
			Help: "Total number of location updates published to the channel",
		},
		[]string{"service", "status"},
	)

	UpdatesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_updates_dropped_total",
			Help: "Total number of location updates dropped (invalid or stale)",
		},
		[]string{"service", "reason"},
	)

	TransportFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transport_fallbacks_total",
			Help: "Total number of subscriptions that fell back from push to pull",
		},
		[]string{"service"},
	)

	ActiveSubscriptionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_subscriptions_total",
			Help: "Current number of active channel subscriptions",
		},
		[]string{"service", "transport"},
	)

	StaleSessionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stale_sessions_total",
			Help: "Current number of tracking sessions whose last update is stale",
		},
		[]string{"service"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	// Database metrics
	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "exchange", "status"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, exchange string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesPublished.WithLabelValues(service, exchange, status).Inc()
}

// RecordRabbitMQConsume records RabbitMQ consume metrics
func RecordRabbitMQConsume(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesConsumed.WithLabelValues(service, queue, status).Inc()
}
