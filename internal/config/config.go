package config

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loom-dev/loom/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loom.yaml"

	// DefaultTickRate is the default demo pump rate in cycles per second.
	DefaultTickRate = 60

	// MaxTickRate bounds demo.tickRate; faster than this burns a core
	// for no visible gain.
	MaxTickRate = 240

	// DefaultDevtoolsAddr is the default inspection server address.
	DefaultDevtoolsAddr = "localhost:7317"

	// DefaultNamespace is the default telemetry metric namespace.
	DefaultNamespace = "loom"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Color modes for the demo renderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete loom.yaml configuration.
type Config struct {
	// Name is the project name, shown in the demo header.
	Name string `yaml:"name,omitempty"`

	// Demo contains settings for the terminal demo.
	Demo DemoConfig `yaml:"demo,omitempty"`

	// Devtools contains inspection server settings.
	Devtools DevtoolsConfig `yaml:"devtools,omitempty"`

	// Telemetry contains metric naming settings.
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// Archive contains trace archive settings.
	Archive ArchiveConfig `yaml:"archive,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DemoConfig contains settings for the terminal demo.
type DemoConfig struct {
	// TickRate is how many pump cycles the demo drives per second.
	TickRate int `yaml:"tickRate,omitempty"`

	// Color controls ANSI colors: auto, always, or never.
	Color string `yaml:"color,omitempty"`

	// Width overrides the detected terminal width (0 = detect).
	Width int `yaml:"width,omitempty"`
}

// DevtoolsConfig contains inspection server settings.
type DevtoolsConfig struct {
	// Enabled controls whether `loom demo` serves the inspection API.
	Enabled bool `yaml:"enabled,omitempty"`

	// Addr is the host:port the inspection server listens on.
	Addr string `yaml:"addr,omitempty"`
}

// TelemetryConfig contains metric naming settings.
type TelemetryConfig struct {
	// Namespace is the Prometheus metric namespace.
	Namespace string `yaml:"namespace,omitempty"`

	// Subsystem is the optional Prometheus metric subsystem.
	Subsystem string `yaml:"subsystem,omitempty"`
}

// ArchiveConfig contains trace archive settings. An empty bucket
// disables archiving to object storage.
type ArchiveConfig struct {
	// Bucket is the S3 bucket receiving archived traces.
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is the key prefix for archived traces.
	Prefix string `yaml:"prefix,omitempty"`

	// Region is the bucket's region.
	Region string `yaml:"region,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum level to log: debug, info, warn, or error.
	Level string `yaml:"level,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Demo: DemoConfig{
			TickRate: DefaultTickRate,
			Color:    ColorAuto,
		},
		Devtools: DevtoolsConfig{
			Addr: DefaultDevtoolsAddr,
		},
		Telemetry: TelemetryConfig{
			Namespace: DefaultNamespace,
		},
		Archive: ArchiveConfig{
			Prefix: "traces/",
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads configuration from the specified directory. It looks
// for loom.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path, applies
// defaults for missing fields, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E070").
				WithDetail("No %s found in %s", ConfigFileName, filepath.Dir(path)).
				WithSuggestion("Create loom.yaml or run without one to use defaults")
		}
		return nil, errors.New("E070").Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E071").
			WithDetail("Failed to parse %s: %s", path, err.Error()).
			WithSuggestion("Check that loom.yaml is valid YAML").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromWorkingDir loads configuration from the nearest loom.yaml
// at or above the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path as YAML.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E071").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E070").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Demo.TickRate == 0 {
		c.Demo.TickRate = DefaultTickRate
	}
	if c.Demo.Color == "" {
		c.Demo.Color = ColorAuto
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "traces/"
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Demo.TickRate < 1 || c.Demo.TickRate > MaxTickRate {
		return errors.New("E072").
			WithDetail("demo.tickRate is %d, must be between 1 and %d", c.Demo.TickRate, MaxTickRate)
	}
	switch c.Demo.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New("E072").
			WithDetail("demo.color is %q, must be auto, always, or never", c.Demo.Color)
	}
	if c.Demo.Width < 0 {
		return errors.New("E072").
			WithDetail("demo.width is %d, must not be negative", c.Demo.Width)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E072").
			WithDetail("log.level is %q, must be debug, info, warn, or error", c.Log.Level)
	}
	if c.Devtools.Enabled {
		if _, _, err := net.SplitHostPort(c.Devtools.Addr); err != nil {
			return errors.New("E072").
				WithDetail("devtools.addr %q is not a host:port address", c.Devtools.Addr).
				Wrap(err)
		}
	}
	return nil
}

// TickInterval returns the demo pump interval derived from TickRate.
func (c *Config) TickInterval() time.Duration {
	rate := c.Demo.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing loom.yaml, or an E070 error if
// none is found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E070").
				WithDetail("No %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}
