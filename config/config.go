package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cargolink/tracking-system/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Server     ServerConfig
		Database   DatabaseConfig
		RabbitMQ   RabbitMQConfig
		Redis      RedisConfig
		Routing    RoutingConfig
		Geocode    GeocodeConfig
		Simulation SimulationConfig
		Tracking   TrackingConfig
		Log        LogConfig
	}

	ServerConfig struct {
		Host string `env:"SERVER_HOST" default:"0.0.0.0"`
		Port string `env:"SERVER_PORT" default:"3000" validate:"required"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost" validate:"required"`
		Port     string `env:"DATABASE_PORT" default:"5432" validate:"required"`
		User     string `env:"DATABASE_USER" default:"cargolink_user"`
		Password string `env:"DATABASE_PASSWORD" default:"cargolink_pass"`
		Database string `env:"DATABASE_DATABASE" default:"cargolink_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20" validate:"min=1"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2" validate:"min=0"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost" validate:"required"`
		Port     string `env:"RABBITMQ_PORT" default:"5672" validate:"required"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	RedisConfig struct {
		// Addr empty means positions are kept in process memory only.
		Addr string        `env:"REDIS_ADDR" default:""`
		TTL  time.Duration `env:"REDIS_TTL" default:"10m"`
	}

	RoutingConfig struct {
		// Backend selects the routing source: "osrm" or "google".
		Backend      string        `env:"ROUTING_BACKEND" default:"osrm" validate:"oneof=osrm google"`
		OSRMBaseURL  string        `env:"ROUTING_OSRM_BASE_URL" default:"https://router.project-osrm.org"`
		GoogleAPIKey string        `env:"ROUTING_GOOGLE_API_KEY" default:""`
		CacheTTL     time.Duration `env:"ROUTING_CACHE_TTL" default:"0"`
	}

	GeocodeConfig struct {
		LocationIQapiKey string        `env:"LOCATIONIQ_API_KEY"`
		CacheTTL         time.Duration `env:"GEOCODE_CACHE_TTL" default:"24h"`
	}

	SimulationConfig struct {
		TickInterval    time.Duration `env:"SIMULATION_TICK_INTERVAL" default:"5s" validate:"min=1s"`
		SpeedKmh        float64       `env:"SIMULATION_SPEED_KMH" default:"70" validate:"gt=0"`
		LookaheadMeters float64       `env:"SIMULATION_LOOKAHEAD_METERS" default:"50" validate:"gt=0"`
	}

	TrackingConfig struct {
		PollInterval   time.Duration `env:"TRACKING_POLL_INTERVAL" default:"5s" validate:"min=100ms"`
		StaleThreshold time.Duration `env:"TRACKING_STALE_THRESHOLD" default:"30s" validate:"min=1s"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"DEBUG" validate:"oneof=DEBUG INFO WARN ERROR"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Routing.Backend == "google" && cfg.Routing.GoogleAPIKey == "" {
		return nil, fmt.Errorf("invalid config: ROUTING_GOOGLE_API_KEY is required for the google backend")
	}

	return cfg, nil
}
