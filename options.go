package llamabridge

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultContextSize is the fixed context window used when none is configured.
const DefaultContextSize = 2048

// Config holds configuration for opening a Session.
type Config struct {
	ContextSize int            // Context window size in tokens
	GPULayers   int            // Number of layers to offload to GPU (GPULayersAll for all)
	LibPath     string         // Directory of the llama.cpp shared libraries
	Engine      Engine         // Native engine (nil = llama.cpp via yzma)
	Logger      *logrus.Logger // Logger for this session (nil = package logger)
}

// DefaultConfig returns a Config with the bridge defaults.
func DefaultConfig() Config {
	return Config{
		ContextSize: DefaultContextSize,
		GPULayers:   0, // engine default parameters: CPU
	}
}

// Option configures session opening.
type Option func(*Config)

// WithContextSize sets the context window size.
// Values <= 0 fall back to DefaultContextSize.
func WithContextSize(n int) Option {
	return func(c *Config) { c.ContextSize = n }
}

// WithGPULayers sets the number of layers to offload to GPU.
// Use GPULayersAll to offload all layers, 0 for CPU only.
func WithGPULayers(n int) Option {
	return func(c *Config) { c.GPULayers = n }
}

// WithLibPath sets the directory holding the llama.cpp shared libraries.
// Only the first successful library load in a process takes effect; after a
// failed load the next Open tries again with its own path.
func WithLibPath(path string) Option {
	return func(c *Config) { c.LibPath = path }
}

// WithEngine replaces the native engine.
func WithEngine(e Engine) Option {
	return func(c *Config) { c.Engine = e }
}

// WithLogger sets the logger used by the session.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultTombstoneTTL is how long a Registry remembers destroyed handles.
const DefaultTombstoneTTL = 10 * time.Minute

// RegistryConfig holds configuration for a Registry.
type RegistryConfig struct {
	TombstoneTTL   time.Duration // How long destroyed handles are reported as destroyed
	SessionOptions []Option      // Options applied to every Create before per-call options
}

// DefaultRegistryConfig returns the default registry configuration.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		TombstoneTTL: DefaultTombstoneTTL,
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*RegistryConfig)

// WithTombstoneTTL sets how long destroyed handles are remembered.
func WithTombstoneTTL(d time.Duration) RegistryOption {
	return func(c *RegistryConfig) { c.TombstoneTTL = d }
}

// WithSessionOptions sets options applied to every session the registry opens.
func WithSessionOptions(opts ...Option) RegistryOption {
	return func(c *RegistryConfig) { c.SessionOptions = append(c.SessionOptions, opts...) }
}
