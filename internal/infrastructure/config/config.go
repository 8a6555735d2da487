package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=logistics"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// UpstreamConfig holds the collaborator endpoints: the management service
// (depots, clients, containers, tariffs), the fleet service (trucks) and the
// external distance-matrix API.
type UpstreamConfig struct {
	ManagementURL  string        `env:"MANAGEMENT_URL,   default=http://localhost:8081"`
	FleetURL       string        `env:"FLEET_URL,        default=http://localhost:8082"`
	DistanceURL    string        `env:"DISTANCE_URL"`
	DistanceAPIKey string        `env:"DISTANCE_API_KEY"`
	Timeout        time.Duration `env:"UPSTREAM_TIMEOUT, default=5s"`
	Retries        int           `env:"UPSTREAM_RETRIES, default=2"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
