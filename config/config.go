package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/zefrenchwan/docfilters.git/reports"
)

const (
	// ENV_PREFIX starts environment variables read as configuration
	ENV_PREFIX = "DOCFILTERS_"
	// DEFAULT_CONFIG_FILE is read when no file is given and it exists
	DEFAULT_CONFIG_FILE = "docfilters.yaml"
	// DEFAULT_PORT is the serving port
	DEFAULT_PORT = ":8080"
)

// Config is the configuration of the commands
type Config struct {
	// DatabaseURL is the postgresql url, empty to work on files only
	DatabaseURL string `koanf:"database_url"`
	// Port to serve, as :number
	Port string `koanf:"port"`
	// Snapshot is the document snapshot file
	Snapshot string `koanf:"snapshot"`
	// Document is the id of the document to load from the database
	Document string `koanf:"document"`
	// Verbose sets debug logs
	Verbose bool `koanf:"verbose"`
	// Format of reports: CSV, TXT or EXCEL
	Format string `koanf:"format"`
	// OutputDir is where reports go, empty for standard output
	OutputDir string `koanf:"output_dir"`
}

// Load reads configuration. Precedence, highest first: flags, environment, file, defaults.
// Only flags that were explicitly set override other values.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"port":    DEFAULT_PORT,
		"verbose": false,
		"format":  reports.CSV.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configFile == "" {
		if _, err := os.Stat(DEFAULT_CONFIG_FILE); err == nil {
			configFile = DEFAULT_CONFIG_FILE
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// DOCFILTERS_DATABASE_URL -> database_url
	if err := k.Load(env.Provider(ENV_PREFIX, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, ENV_PREFIX))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}

			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values of the configuration
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}

	var globalErr error
	if !strings.HasPrefix(c.Port, ":") {
		globalErr = errors.Join(globalErr, fmt.Errorf("invalid port %s : it should be a : and a valid number", c.Port))
	}

	if _, err := reports.ParseFormat(c.Format); err != nil {
		globalErr = errors.Join(globalErr, err)
	}

	return globalErr
}

// ReportFormat returns the configured report format
func (c *Config) ReportFormat() reports.Format {
	if c == nil {
		return reports.CSV
	} else if format, err := reports.ParseFormat(c.Format); err != nil {
		return reports.CSV
	} else {
		return format
	}
}
