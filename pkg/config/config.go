package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/cargo-override/pkg/safeio"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in each search directory.
const FileName = ".cargo-override.yaml"

// EnvPrefix prefixes environment overrides, e.g. CARGO_OVERRIDE_REGISTRY.
const EnvPrefix = "CARGO_OVERRIDE"

// ErrInvalidConfig wraps every configuration problem.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for cargo-override
type Config struct {
	Registry string         `mapstructure:"registry"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Write    WriteConfig    `mapstructure:"write"`

	// Source is the file the values came from, empty when only defaults
	// and environment applied.
	Source string `mapstructure:"-"`
}

// ManifestConfig controls how Cargo.toml is located
type ManifestConfig struct {
	SearchDepth   int  `mapstructure:"search_depth"`
	StopAtGitRoot bool `mapstructure:"stop_at_git_root"`
}

// WriteConfig controls how the edited manifest is written
type WriteConfig struct {
	Backup bool `mapstructure:"backup"`
}

var defaultConfig = Config{
	Registry: "crates-io",
	Manifest: ManifestConfig{
		SearchDepth:   10,
		StopAtGitRoot: true,
	},
	Write: WriteConfig{
		Backup: false,
	},
}

// Default returns the built-in configuration.
func Default() Config {
	return defaultConfig
}

// LoadConfig loads configuration from defaults, the first config file found
// in searchDirs, and CARGO_OVERRIDE_* environment variables, in increasing
// precedence.
func LoadConfig(searchDirs ...string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("registry", defaults.Registry)
	v.SetDefault("manifest.search_depth", defaults.Manifest.SearchDepth)
	v.SetDefault("manifest.stop_at_git_root", defaults.Manifest.StopAtGitRoot)
	v.SetDefault("write.backup", defaults.Write.Backup)

	v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	v.SetConfigType("yaml")
	for _, dir := range searchDirs {
		if dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := ""
	if len(searchDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
		} else {
			source = v.ConfigFileUsed()
			data, err := safeio.ReadFileLimited(source, 1<<20)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			if err := ValidateConfig(data); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, source, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %v", ErrInvalidConfig, err)
	}
	config.Source = source

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that may have come from the environment, which
// the file schema never sees.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Registry) == "" {
		return fmt.Errorf("%w: registry must not be empty", ErrInvalidConfig)
	}
	if c.Manifest.SearchDepth < 1 {
		return fmt.Errorf("%w: manifest.search_depth must be at least 1, got %d", ErrInvalidConfig, c.Manifest.SearchDepth)
	}
	return nil
}
