package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTP      `yaml:"http"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
	Hub       Hub       `yaml:"hub"`
}

type HTTP struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"3001"`
	AllowedOrigins  []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	MaxMessageSize  int64         `yaml:"max-message-size" env:"MAX_MESSAGE_SIZE" env-default:"1024"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Redis configures the lifecycle event sink. An empty address disables it.
type Redis struct {
	Addr    string `yaml:"addr" env:"REDIS_CONNSTRING"`
	Channel string `yaml:"channel" env:"REDIS_EVENTS_CHANNEL" env-default:"channel:events"`
}

// Telemetry configures OTLP export. An empty endpoint disables exporters.
type Telemetry struct {
	Endpoint       string `yaml:"endpoint" env:"OTEL_COLLECTOR_ENDPOINT"`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.1.0"`
}

type Hub struct {
	QueueSize        int  `yaml:"queue-size" env:"HUB_QUEUE_SIZE" env-default:"256"`
	SendBufferSize   int  `yaml:"send-buffer-size" env:"HUB_SEND_BUFFER_SIZE" env-default:"64"`
	EventQueueSize   int  `yaml:"event-queue-size" env:"HUB_EVENT_QUEUE_SIZE" env-default:"1024"`
	RejectionReplies bool `yaml:"rejection-replies" env:"HUB_REJECTION_REPLIES" env-default:"false"`
}

// Load reads the YAML file at path, if given, and then the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return config, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Addr returns the listen address for the HTTP server.
func (h HTTP) Addr() string {
	return ":" + h.Port
}
