package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// LLAMABRIDGE_MODEL_CONTEXT_SIZE.
const EnvPrefix = "LLAMABRIDGE"

// Config represents the application configuration
type Config struct {
	Model   ModelConfig   `mapstructure:"model"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ModelConfig struct {
	Path        string `mapstructure:"path"`
	ContextSize int    `mapstructure:"context_size"`
	GPULayers   int    `mapstructure:"gpu_layers"`
	LibPath     string `mapstructure:"lib_path"`
	Verbose     bool   `mapstructure:"verbose"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	TombstoneTTL time.Duration `mapstructure:"tombstone_ttl"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			ContextSize: 2048,
			GPULayers:   0,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			TombstoneTTL: 10 * time.Minute,
			ReadTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load loads configuration from file, environment, and defaults.
// A missing config file is not an error; an explicit cfgFile that cannot be
// read is.
func Load(cfgFile string) (*Config, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith is Load on a caller-supplied viper instance, so command line
// flags bound to v take precedence over file and environment values.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".llamabridge"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("llamabridge")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Model.ContextSize < 1 || c.Model.ContextSize > 131072 {
		return errors.New("model.context_size must be between 1 and 131072")
	}
	if c.Model.GPULayers < 0 {
		return errors.New("model.gpu_layers must not be negative")
	}
	if c.Server.TombstoneTTL < 0 {
		return errors.New("server.tombstone_ttl must not be negative")
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// ExpandPaths expands ~ and environment variables in paths
func (c *Config) ExpandPaths() {
	c.Model.Path = expandPath(c.Model.Path)
	c.Model.LibPath = expandPath(c.Model.LibPath)
	c.Logging.File = expandPath(c.Logging.File)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("model.path", cfg.Model.Path)
	v.SetDefault("model.context_size", cfg.Model.ContextSize)
	v.SetDefault("model.gpu_layers", cfg.Model.GPULayers)
	v.SetDefault("model.lib_path", cfg.Model.LibPath)
	v.SetDefault("model.verbose", cfg.Model.Verbose)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.tombstone_ttl", cfg.Server.TombstoneTTL)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}
