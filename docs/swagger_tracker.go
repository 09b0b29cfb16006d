package docs

// @title           Vehicle Tracking Service API
// @version         1.0
// @description     Tracker service simulates vehicle movement along shipment routes and streams live positions to subscribers over WebSocket or polling. Exposes shipment lifecycle control and per-vehicle location history.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
