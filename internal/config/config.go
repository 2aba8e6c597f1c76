package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" envconfig:"LISTEN_ADDR"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" envconfig:"DATABASE_PATH"`
}

type OutboxConfig struct {
	Path string `yaml:"path" envconfig:"OUTBOX_PATH"`
}

// The rates are pointers so an explicit zero in the file or environment
// is distinguishable from an unset value and survives setDefaults.
type SimulatorConfig struct {
	DeliveredRate *float64      `yaml:"delivered_rate" envconfig:"DELIVERED_RATE"`
	OpenRate      *float64      `yaml:"open_rate" envconfig:"OPEN_RATE"`
	MaxOpenDelay  time.Duration `yaml:"max_open_delay" envconfig:"MAX_OPEN_DELAY"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Load reads configuration from an optional YAML file, applies defaults,
// then lets EMAILBOT_* environment variables override individual values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	setDefaults(cfg)

	if err := envconfig.Process("emailbot", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/emailbot.db"
	}
	if cfg.Outbox.Path == "" {
		cfg.Outbox.Path = "data/outbox.db"
	}
	if cfg.Simulator.DeliveredRate == nil {
		v := 0.9
		cfg.Simulator.DeliveredRate = &v
	}
	if cfg.Simulator.OpenRate == nil {
		v := 0.2
		cfg.Simulator.OpenRate = &v
	}
	if cfg.Simulator.MaxOpenDelay == 0 {
		cfg.Simulator.MaxOpenDelay = 60 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if r := *cfg.Simulator.DeliveredRate; r < 0 || r > 1 {
		return fmt.Errorf("simulator.delivered_rate must be between 0 and 1, got %v", r)
	}
	if r := *cfg.Simulator.OpenRate; r < 0 || r > 1 {
		return fmt.Errorf("simulator.open_rate must be between 0 and 1, got %v", r)
	}
	if cfg.Simulator.MaxOpenDelay < 0 {
		return fmt.Errorf("simulator.max_open_delay must not be negative, got %v", cfg.Simulator.MaxOpenDelay)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	return nil
}
