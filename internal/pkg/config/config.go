package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8765"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIURL is the root of the remote SaveEat REST API.
	APIURL         string        `env:"API_URL,         default=http://localhost:8000/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`

	SessionBackend string `env:"SESSION_BACKEND, default=sqlite"`
	SessionRestore bool   `env:"SESSION_RESTORE, default=true"`
	RefreshWorkers int    `env:"REFRESH_WORKERS, default=4"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SQLite SQLiteConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=saveeat.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=saveeat"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and checks the session backend.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	switch cfg.SessionBackend {
	case BackendSQLite, BackendRedis, BackendMongo:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be sqlite, redis or mongo, got %q", cfg.SessionBackend)
	}
	return &cfg, nil
}
