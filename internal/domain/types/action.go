package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"
	ActionRabbitPublish           = "rabbitmq_publish"
	ActionRabbitConsume           = "rabbitmq_consume"

	ActionExternalServiceFailed = "external_service_failed"

	ActionSimulationTick      = "simulation_tick"
	ActionSimulationStart     = "simulation_start"
	ActionSimulationStop      = "simulation_stop"
	ActionRouteFetch          = "route_fetch"
	ActionGeocodeLookup       = "geocode_lookup"
	ActionPublishUpdate       = "publish_location_update"
	ActionTransportFallback   = "transport_fallback"
	ActionStateTransition     = "vehicle_state_transition"
	ActionStalenessCheck      = "staleness_check"
	ActionSubscriptionCleanup = "subscription_cleanup"
)
