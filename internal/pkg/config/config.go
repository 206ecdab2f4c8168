package config

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // REFERENCE_TIMEZONE must resolve on images without zoneinfo

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=720h"`

	// ReferenceTimezone is the IANA zone whose calendar days bound daily records.
	ReferenceTimezone string `env:"REFERENCE_TIMEZONE, default=UTC"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Rabbit    RabbitConfig
	Otel      OtelConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mood_tracker"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// RabbitConfig is optional; an empty URL disables the broker sink.
type RabbitConfig struct {
	URL      string `env:"RABBIT_URL"`
	Exchange string `env:"RABBIT_EXCHANGE, default=mood.records"`
}

// OtelConfig is optional; an empty endpoint disables trace export.
type OtelConfig struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS,   default=5"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST, default=10"`
}

// IsDevelopment reports whether human-friendly logs should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves ReferenceTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: REFERENCE_TIMEZONE %q: %w", c.ReferenceTimezone, err)
	}
	return loc, nil
}

// Validate checks the settings Load cannot default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Real environment variables win over .env.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := loadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func loadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
