package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort        = 8080
	DefaultOfflineInterval = 10 * time.Minute
	DefaultOfflineWindow   = 10 * time.Minute
	DefaultPowerInterval   = 5 * time.Minute
	DefaultPowerTimeout    = 5 * time.Minute
	DefaultDoorInterval    = 5 * time.Minute
	DefaultDoorMaxOpen     = 5 * time.Minute
	DefaultDoorOpenValue   = 1.0
	DefaultExpiryInterval  = time.Hour
	DefaultTokenTTL        = 24 * time.Hour
)

// Config holds the server configuration parsed from config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// DB configures MySQL persistence. An empty resolved DSN selects the
	// in-memory store (development mode).
	DB DBConfig `yaml:"db"`

	// Redis configures the shared dedupe gate. An empty address selects the
	// in-process gate.
	Redis RedisConfig `yaml:"redis"`

	// MQTT configures the reading consumer. An empty broker URL disables it.
	MQTT MQTTConfig `yaml:"mqtt"`

	// Kafka configures the gateway heartbeat consumer. No brokers selects the
	// static in-memory provider.
	Kafka KafkaConfig `yaml:"kafka"`

	// Auth configures JWT issuance for the HTTP API.
	Auth AuthConfig `yaml:"auth"`

	// Checks holds the four monitoring check schedules.
	Checks ChecksConfig `yaml:"checks"`

	// Notify holds notification channel targets.
	Notify NotifyConfig `yaml:"notify"`
}

// DBConfig selects the MySQL DSN via environment.
type DBConfig struct {
	// DSNEnv is the name of the environment variable holding the MySQL DSN.
	DSNEnv string `yaml:"dsn_env"`
}

// DSN returns the DSN resolved from the environment.
func (d DBConfig) DSN() string {
	if d.DSNEnv == "" {
		return ""
	}
	return os.Getenv(d.DSNEnv)
}

// RedisConfig configures the Redis-backed dedupe gate.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// MQTTConfig configures the MQTT reading consumer.
type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url"`
	Topic       string `yaml:"topic"`
	ClientID    string `yaml:"client_id"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
}

// Username returns the broker username resolved from the environment.
func (m MQTTConfig) Username() string { return envOrEmpty(m.UsernameEnv) }

// Password returns the broker password resolved from the environment.
func (m MQTTConfig) Password() string { return envOrEmpty(m.PasswordEnv) }

// KafkaConfig configures the gateway heartbeat consumer.
type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	HeartbeatTopic string   `yaml:"heartbeat_topic"`
	Group          string   `yaml:"group"`
}

// AuthConfig configures JWT issuance.
type AuthConfig struct {
	// SecretEnv is the name of the environment variable holding the HS256
	// signing secret.
	SecretEnv string        `yaml:"secret_env"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Secret returns the signing secret resolved from the environment.
func (a AuthConfig) Secret() string { return envOrEmpty(a.SecretEnv) }

// ChecksConfig holds the four check schedules.
type ChecksConfig struct {
	Offline OfflineCheck `yaml:"offline"`
	Power   PowerCheck   `yaml:"power"`
	Door    DoorCheck    `yaml:"door"`
	Expiry  ExpiryCheck  `yaml:"expiry"`
}

// OfflineCheck schedules the sensor liveness check.
type OfflineCheck struct {
	Interval time.Duration `yaml:"interval"`
	// Window is how long without a ping marks a sensor offline. A last ping
	// exactly at the boundary is still alive.
	Window time.Duration `yaml:"window"`
}

// PowerCheck schedules the gateway heartbeat check.
type PowerCheck struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DoorCheck schedules the door-ajar check.
type DoorCheck struct {
	Interval time.Duration `yaml:"interval"`
	// OpenValue is the reading value meaning "door open".
	OpenValue float64 `yaml:"open_value"`
	// MaxOpen is how long a door may read open before alerting.
	MaxOpen time.Duration `yaml:"max_open"`
}

// ExpiryCheck schedules the item expiry check.
type ExpiryCheck struct {
	Interval time.Duration `yaml:"interval"`
	// DaysBefore widens the expiry horizon: 0 alerts on items expired or
	// expiring today.
	DaysBefore int `yaml:"days_before"`
}

// NotifyConfig holds notification channel targets.
type NotifyConfig struct {
	SMTP    SMTPConfig    `yaml:"smtp"`
	SMS     WebhookTarget `yaml:"sms"`
	Webhook WebhookTarget `yaml:"webhook"`
}

// SMTPConfig configures the email channel.
type SMTPConfig struct {
	// AddrEnv names the environment variable holding "host:port".
	AddrEnv     string   `yaml:"addr_env"`
	From        string   `yaml:"from"`
	To          []string `yaml:"to"`
	UsernameEnv string   `yaml:"username_env"`
	PasswordEnv string   `yaml:"password_env"`
}

// Addr returns the SMTP address resolved from the environment.
func (s SMTPConfig) Addr() string { return envOrEmpty(s.AddrEnv) }

// Username returns the SMTP username resolved from the environment.
func (s SMTPConfig) Username() string { return envOrEmpty(s.UsernameEnv) }

// Password returns the SMTP password resolved from the environment.
func (s SMTPConfig) Password() string { return envOrEmpty(s.PasswordEnv) }

// WebhookTarget is an HTTP POST delivery target resolved from the environment.
type WebhookTarget struct {
	URLEnv string `yaml:"url_env"`
}

// URL returns the target URL resolved from the environment.
func (w WebhookTarget) URL() string { return envOrEmpty(w.URLEnv) }

func envOrEmpty(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults mirroring the original deployment (10m offline, 5m power,
// 5m door, hourly expiry) before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			MQTT: MQTTConfig{
				Topic:    "coldwatch/readings",
				ClientID: "coldwatch-server",
			},
			Kafka: KafkaConfig{
				HeartbeatTopic: "gateway.heartbeats",
				Group:          "coldwatch-server",
			},
			Auth: AuthConfig{
				SecretEnv: "COLDWATCH_JWT_SECRET",
				TokenTTL:  DefaultTokenTTL,
			},
			Checks: ChecksConfig{
				Offline: OfflineCheck{Interval: DefaultOfflineInterval, Window: DefaultOfflineWindow},
				Power:   PowerCheck{Interval: DefaultPowerInterval, Timeout: DefaultPowerTimeout},
				Door:    DoorCheck{Interval: DefaultDoorInterval, OpenValue: DefaultDoorOpenValue, MaxOpen: DefaultDoorMaxOpen},
				Expiry:  ExpiryCheck{Interval: DefaultExpiryInterval},
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	checks := cfg.Server.Checks
	for _, iv := range []struct {
		name string
		d    time.Duration
	}{
		{"checks.offline.interval", checks.Offline.Interval},
		{"checks.offline.window", checks.Offline.Window},
		{"checks.power.interval", checks.Power.Interval},
		{"checks.power.timeout", checks.Power.Timeout},
		{"checks.door.interval", checks.Door.Interval},
		{"checks.door.max_open", checks.Door.MaxOpen},
		{"checks.expiry.interval", checks.Expiry.Interval},
	} {
		if iv.d <= 0 {
			return fmt.Errorf("server.%s must be positive", iv.name)
		}
	}
	if checks.Expiry.DaysBefore < 0 {
		return fmt.Errorf("server.checks.expiry.days_before must not be negative")
	}
	if cfg.Server.Auth.TokenTTL <= 0 {
		return fmt.Errorf("server.auth.token_ttl must be positive")
	}
	return nil
}
