// Package config loads the obelisk configuration file. All fields have
// working defaults so the binary runs with no config at all; a YAML
// file overrides only what it names.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped value as a plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root of the configuration file.
type Config struct {
	// AgentTimeout bounds each agent's run. Zero means the built-in
	// default.
	AgentTimeout Duration `yaml:"agent_timeout"`

	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`

	// ConfigBaseline is a known-good config snapshot the extractor diffs
	// incident config against. Optional.
	ConfigBaseline map[string]any `yaml:"config_baseline"`
}

// Log controls structured logging output.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Server configures the HTTP analysis endpoint.
type Server struct {
	Addr string `yaml:"addr"`
}

// Store configures execution history persistence. An empty path keeps
// history in memory only.
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		AgentTimeout: Duration(30 * time.Second),
		Log:          Log{Level: "info", Format: "text"},
		Server:       Server{Addr: ":8080"},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AgentTimeout < 0 {
		return fmt.Errorf("agent_timeout must not be negative, got %s", c.AgentTimeout.Std())
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
