// Package config loads bingohall settings.
package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Game      Game      `yaml:"game"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
	NATS      NATS      `yaml:"nats"`
	Cache     Cache     `yaml:"cache"`
}

// Server holds HTTP listener settings.
type Server struct {
	Addr              string        `yaml:"addr" env:"BINGO_ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"BINGO_READ_HEADER_TIMEOUT"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"BINGO_REQUEST_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"BINGO_SHUTDOWN_TIMEOUT"`
	KeepAlive         time.Duration `yaml:"keep_alive" env:"BINGO_KEEP_ALIVE"`
}

// Game holds draw settings.
type Game struct {
	PoolSize         int           `yaml:"pool_size" env:"BINGO_POOL_SIZE"`
	DrawInterval     time.Duration `yaml:"draw_interval" env:"BINGO_DRAW_INTERVAL"`
	SubscriberBuffer int           `yaml:"subscriber_buffer" env:"BINGO_SUBSCRIBER_BUFFER"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level" env:"BINGO_LOG_LEVEL"`
	Service string `yaml:"service" env:"BINGO_LOG_SERVICE"`
}

// Telemetry holds OpenTelemetry export settings. An empty endpoint disables export.
type Telemetry struct {
	Endpoint string `yaml:"endpoint" env:"BINGO_OTEL_ENDPOINT"`
	Insecure bool   `yaml:"insecure" env:"BINGO_OTEL_INSECURE"`
}

// NATS holds relay settings. An empty URL disables the relay.
type NATS struct {
	URL           string `yaml:"url" env:"BINGO_NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" env:"BINGO_NATS_SUBJECT_PREFIX"`
}

// Cache holds the winner payload cache size.
type Cache struct {
	MaxCostBytes int64 `yaml:"max_cost_bytes" env:"BINGO_CACHE_MAX_COST"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:              ":3000",
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			KeepAlive:         25 * time.Second,
		},
		Game: Game{
			PoolSize:         75,
			DrawInterval:     time.Second,
			SubscriberBuffer: 64,
		},
		Logging: Logging{
			Level:   "info",
			Service: "bingohall",
		},
		Telemetry: Telemetry{
			Insecure: true,
		},
		NATS: NATS{
			SubjectPrefix: "bingo",
		},
		Cache: Cache{
			MaxCostBytes: 1 << 20,
		},
	}
}
