// Package config provides configuration loading for the Pressroom server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sessions SessionsConfig `yaml:"sessions"`
	Media    MediaConfig    `yaml:"media"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Addr is the listen address (default :8080)
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	// Path is the SQLite file path
	Path string `yaml:"path"`
}

// SessionsConfig configures the session store
type SessionsConfig struct {
	// Path is the Badger directory for session tokens
	Path string `yaml:"path"`
	// TTL is how long a session stays valid
	TTL Duration `yaml:"ttl"`
}

// Duration is a time.Duration that unmarshals from strings like "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MediaConfig configures uploaded file storage
type MediaConfig struct {
	// Dir receives uploaded post images
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "data/pressroom.db"},
		Sessions: SessionsConfig{Path: "data/sessions", TTL: Duration(24 * time.Hour)},
		Media:    MediaConfig{Dir: "data/media"},
	}
}

// Load reads the configuration file at path, applying defaults for
// anything unset. A missing file just yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Sessions.Path == "" {
		return fmt.Errorf("sessions.path is required")
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be positive")
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("media.dir is required")
	}
	return nil
}
