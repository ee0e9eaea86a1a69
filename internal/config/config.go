package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viant/fastmks/kernel"
)

// Config holds the fastmks command configuration.
type Config struct {
	Kernel   kernel.Config  `yaml:"kernel"`
	Search   SearchConfig   `yaml:"search"`
	Store    StoreConfig    `yaml:"store"`
	Generate GenerateConfig `yaml:"generate"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	Mode        string  `yaml:"mode"` // naive, single, dual (default: dual)
	K           int     `yaml:"k"`
	Base        float64 `yaml:"base"`
	Bound       string  `yaml:"bound"` // per_node, level (default: per_node)
	Parallelism int     `yaml:"parallelism"`
}

// StoreConfig holds SQLite storage settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// GenerateConfig holds random dataset settings.
type GenerateConfig struct {
	Distribution string  `yaml:"distribution"` // normal, uniform, sparse (default: normal)
	Dim          int     `yaml:"dim"`
	Size         int     `yaml:"size"`
	Density      float64 `yaml:"density"`
	Seed         int64   `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod (default: local)
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Prometheus text file written after a search, disabled when empty
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. ${VAR} and ${VAR:-default}
// are substituted from the environment before parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Kernel.Name == "" {
		c.Kernel.Name = "linear"
	}
	if c.Search.Mode == "" {
		c.Search.Mode = "dual"
	}
	if c.Search.K <= 0 {
		c.Search.K = 10
	}
	if c.Search.Base <= 1 {
		c.Search.Base = 1.3
	}
	if c.Search.Bound == "" {
		c.Search.Bound = "per_node"
	}
	if c.Search.Parallelism <= 0 {
		c.Search.Parallelism = 1
	}
	if c.Store.Path == "" {
		c.Store.Path = "fastmks.db"
	}
	if c.Generate.Distribution == "" {
		c.Generate.Distribution = "normal"
	}
	if c.Generate.Dim <= 0 {
		c.Generate.Dim = 5
	}
	if c.Generate.Size <= 0 {
		c.Generate.Size = 1000
	}
	if c.Generate.Density <= 0 {
		c.Generate.Density = 0.3
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if _, err := kernel.New(c.Kernel); err != nil {
		return err
	}
	switch c.Search.Mode {
	case "naive", "single", "dual":
	default:
		return fmt.Errorf("search.mode must be \"naive\", \"single\" or \"dual\", got %q", c.Search.Mode)
	}
	switch c.Search.Bound {
	case "per_node", "level":
	default:
		return fmt.Errorf("search.bound must be \"per_node\" or \"level\", got %q", c.Search.Bound)
	}
	switch c.Generate.Distribution {
	case "normal", "uniform", "sparse":
	default:
		return fmt.Errorf("generate.distribution must be \"normal\", \"uniform\" or \"sparse\", got %q", c.Generate.Distribution)
	}
	if c.Generate.Density > 1 {
		return fmt.Errorf("generate.density must be in (0, 1], got %g", c.Generate.Density)
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
