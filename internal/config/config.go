package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"product-sync/internal/logging"
	"product-sync/internal/registry"
)

// Backend kinds.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PRODUCT_SYNC_"

// Config is the application configuration.
type Config struct {
	Logging logging.Config `yaml:"logging"`
	Backend BackendConfig  `yaml:"backend"`

	// Configuration is the name of the mapping configuration to use.
	Configuration string `yaml:"configuration"`
	// Domain is the short name of the domain of expertise owning created
	// elements and parameters.
	Domain string `yaml:"domain,omitempty"`
	// Option and State are the default selection, by short name.
	Option string `yaml:"option,omitempty"`
	State  string `yaml:"state,omitempty"`

	// PruneOrphans removes correspondences whose node or element is gone.
	PruneOrphans bool `yaml:"prune_orphans,omitempty"`

	Bindings map[registry.Kind]registry.Binding `yaml:"bindings,omitempty"`

	// MetricsFile receives the metrics of a run when set.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// BackendConfig selects where mapping configurations are stored.
type BackendConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path,omitempty"`
	DSN  string `yaml:"dsn,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging:       logging.DefaultConfig(),
		Backend:       BackendConfig{Kind: BackendFile, Path: "mapping.yaml"},
		Configuration: "default",
	}
}

// Load reads the configuration file at path over the defaults and applies
// the environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	overrides := map[string]*string{
		"CONFIGURATION": &c.Configuration,
		"DOMAIN":        &c.Domain,
		"OPTION":        &c.Option,
		"STATE":         &c.State,
		"BACKEND":       &c.Backend.Kind,
		"BACKEND_PATH":  &c.Backend.Path,
		"DSN":           &c.Backend.DSN,
		"LOG_LEVEL":     &c.Logging.Level,
		"LOG_FORMAT":    &c.Logging.Format,
		"METRICS_FILE":  &c.MetricsFile,
	}

	for name, target := range overrides {
		if value := os.Getenv(EnvPrefix + name); value != "" {
			*target = value
		}
	}

	if value := os.Getenv(EnvPrefix + "PRUNE_ORPHANS"); value != "" {
		prune, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %sPRUNE_ORPHANS %q: %w", EnvPrefix, value, err)
		}

		c.PruneOrphans = prune
	}

	return nil
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	var errs []error

	if c.Configuration == "" {
		errs = append(errs, errors.New("configuration name is empty"))
	}

	switch c.Backend.Kind {
	case BackendMemory:
	case BackendFile:
		if c.Backend.Path == "" {
			errs = append(errs, errors.New("file backend needs a path"))
		}
	case BackendPostgres:
		if c.Backend.DSN == "" {
			errs = append(errs, errors.New("postgres backend needs a dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend kind %q", c.Backend.Kind))
	}

	for kind := range c.Bindings {
		if _, ok := registry.DefaultShortNames[kind]; !ok {
			errs = append(errs, fmt.Errorf("binding for unknown parameter kind %q", kind))
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() (*Config, error) {
	var clone Config
	if err := deepcopy.Copy(&clone, c); err != nil {
		return nil, fmt.Errorf("failed to copy config: %w", err)
	}

	return &clone, nil
}
