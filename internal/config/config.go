// Package config loads accessbridge settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mj1618/accessbridge/internal/logging"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ACCESSBRIDGE_LOGGING_LEVEL.
const EnvPrefix = "ACCESSBRIDGE"

// Config is the complete accessbridge configuration.
type Config struct {
	Logging logging.Config `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig   `mapstructure:"output"  yaml:"output"`
	Journal JournalConfig  `mapstructure:"journal" yaml:"journal"`
	Serve   ServeConfig    `mapstructure:"serve"   yaml:"serve"`
	Replay  ReplayConfig   `mapstructure:"replay"  yaml:"replay"`
	Backend BackendConfig  `mapstructure:"backend" yaml:"backend"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	// Format is "yaml" or "json".
	Format string `mapstructure:"format" yaml:"format"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// JournalConfig controls the lifecycle journal.
type JournalConfig struct {
	// Path of the SQLite database. Empty disables the journal.
	Path            string `mapstructure:"path"              yaml:"path,omitempty"`
	BufferSize      int    `mapstructure:"buffer_size"       yaml:"buffer_size"`
	FlushIntervalMs int    `mapstructure:"flush_interval_ms" yaml:"flush_interval_ms"`
}

// FlushInterval returns the journal flush interval as a duration.
func (c JournalConfig) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// ServeConfig controls the MCP server.
type ServeConfig struct {
	// Transport is "stdio" or "http".
	Transport string `mapstructure:"transport" yaml:"transport"`
	Addr      string `mapstructure:"addr"      yaml:"addr"`
}

// ReplayConfig controls the replay command.
type ReplayConfig struct {
	StopOnError bool `mapstructure:"stop_on_error" yaml:"stop_on_error"`
}

// BackendConfig selects how adapters reach the OS accessibility service.
type BackendConfig struct {
	// Kind is "native" for the backend compiled in for this OS family, or
	// "mirror" for the platform-neutral in-process backend.
	Kind string `mapstructure:"kind"    yaml:"kind"`
	// Trigger overrides the activation trigger; empty uses the OS default.
	Trigger string `mapstructure:"trigger" yaml:"trigger,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Logging: logging.Config{
			Level: "warning",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Journal: JournalConfig{
			BufferSize:      1024,
			FlushIntervalMs: 200,
		},
		Serve: ServeConfig{
			Transport: "stdio",
			Addr:      "127.0.0.1:8765",
		},
		Backend: BackendConfig{
			Kind: "native",
		},
	}
}

// SetDefaults registers every default value with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.pretty", defaults.Output.Pretty)

	v.SetDefault("journal.path", defaults.Journal.Path)
	v.SetDefault("journal.buffer_size", defaults.Journal.BufferSize)
	v.SetDefault("journal.flush_interval_ms", defaults.Journal.FlushIntervalMs)

	v.SetDefault("serve.transport", defaults.Serve.Transport)
	v.SetDefault("serve.addr", defaults.Serve.Addr)

	v.SetDefault("replay.stop_on_error", defaults.Replay.StopOnError)

	v.SetDefault("backend.kind", defaults.Backend.Kind)
	v.SetDefault("backend.trigger", defaults.Backend.Trigger)
}

// Dir returns the user's accessbridge config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "accessbridge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".accessbridge"
	}
	return filepath.Join(home, ".config", "accessbridge")
}

// File returns the default config file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// NewViper returns a viper instance with defaults and environment overrides
// registered. When path is empty the default config file is used if it
// exists.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Output.Format {
	case "yaml", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("output.format: unsupported format %q (use yaml or json)", c.Output.Format))
	}
	if c.Journal.BufferSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("journal.buffer_size: must be positive, got %d", c.Journal.BufferSize))
	}
	if c.Journal.FlushIntervalMs <= 0 {
		result = multierror.Append(result, fmt.Errorf("journal.flush_interval_ms: must be positive, got %d", c.Journal.FlushIntervalMs))
	}
	switch c.Serve.Transport {
	case "stdio", "http":
	default:
		result = multierror.Append(result, fmt.Errorf("serve.transport: unsupported transport %q (use stdio or http)", c.Serve.Transport))
	}
	if c.Serve.Transport == "http" && c.Serve.Addr == "" {
		result = multierror.Append(result, errors.New("serve.addr: required for the http transport"))
	}
	switch c.Backend.Kind {
	case "native", "mirror":
	default:
		result = multierror.Append(result, fmt.Errorf("backend.kind: unsupported backend %q (use native or mirror)", c.Backend.Kind))
	}
	if c.Backend.Trigger != "" {
		if _, err := platform.ParseTrigger(c.Backend.Trigger); err != nil {
			result = multierror.Append(result, fmt.Errorf("backend.trigger: %w", err))
		}
	}
	return result.ErrorOrNil()
}
