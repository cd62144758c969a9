// Package config loads settings from defaults, an optional YAML file, a
// .env file and the environment, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
)

// Config holds every setting of the CLI and the server.
type Config struct {
	Transitivity      bool   `yaml:"transitivity"`
	SkipNamedGateways bool   `yaml:"skip_named_gateways"`
	Format            string `yaml:"format"`
	PrecedenceOrder   string `yaml:"precedence_order"` // comma separated template names
	CacheSize         int    `yaml:"cache_size"`
	Workers           int    `yaml:"workers"`
	Port              int    `yaml:"port"`
	DatabaseURL       string `yaml:"database_url"`
	LogLevel          string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:    string(compiler.FormatDeclare),
		CacheSize: 256,
		Workers:   runtime.GOMAXPROCS(0),
		Port:      8080,
		LogLevel:  "INFO",
	}
}

// Load builds a Config. path names an optional YAML file; a missing file
// is an error only when path is not empty. A .env file in the working
// directory is loaded when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	boolVar := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	intVar := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	stringVar := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	boolVar("BPMN_TRANSITIVITY", &c.Transitivity)
	boolVar("BPMN_SKIP_NAMED_GATEWAYS", &c.SkipNamedGateways)
	stringVar("BPMN_FORMAT", &c.Format)
	stringVar("BPMN_PRECEDENCE_ORDER", &c.PrecedenceOrder)
	intVar("BPMN_CACHE_SIZE", &c.CacheSize)
	intVar("BPMN_WORKERS", &c.Workers)
	intVar("PORT", &c.Port)
	stringVar("DATABASE_URL", &c.DatabaseURL)
	stringVar("LOG_LEVEL", &c.LogLevel)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := compiler.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Order(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache_size must be positive, got %d", c.CacheSize))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Order parses PrecedenceOrder; empty means compiler.DefaultOrder.
func (c Config) Order() (compiler.PrecedenceOrder, error) {
	if strings.TrimSpace(c.PrecedenceOrder) == "" {
		return nil, nil
	}
	return compiler.ParseOrder(c.PrecedenceOrder)
}

// CompilerOptions converts the settings into compile flags.
func (c Config) CompilerOptions() (compiler.Options, error) {
	order, err := c.Order()
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Transitivity:      c.Transitivity,
		SkipNamedGateways: c.SkipNamedGateways,
		Order:             order,
	}, nil
}

// OutputFormat returns the parsed Format.
func (c Config) OutputFormat() compiler.Format {
	f, err := compiler.ParseFormat(c.Format)
	if err != nil {
		return compiler.FormatDeclare
	}
	return f
}
