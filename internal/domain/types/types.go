package types

// Transport is the delivery mechanism of a channel subscription.
type Transport string

const (
	TransportPush Transport = "PUSH"
	TransportPull Transport = "PULL"
)

// SubscriptionStatus is the lifecycle status of a channel subscription.
type SubscriptionStatus string

const (
	SubscriptionIdle        SubscriptionStatus = "IDLE"
	SubscriptionSubscribing SubscriptionStatus = "SUBSCRIBING"
	SubscriptionActive      SubscriptionStatus = "ACTIVE"
	SubscriptionError       SubscriptionStatus = "ERROR"
)

// RoutingBackendKind selects the routing backend implementation.
type RoutingBackendKind string

const (
	RoutingBackendOSRM   RoutingBackendKind = "osrm"
	RoutingBackendGoogle RoutingBackendKind = "google"
)

// GeocodeMethod describes how an address was resolved to coordinates.
type GeocodeMethod string

const (
	GeocodeExact    GeocodeMethod = "EXACT"
	GeocodeApproxim GeocodeMethod = "APPROXIMATE"
)
