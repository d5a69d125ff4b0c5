package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's real config out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Model.ContextSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Server.TombstoneTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_TOMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "llamabridge.toml")
	content := `
[model]
path = "/models/tiny.gguf"
context_size = 512

[server]
addr = "127.0.0.1:9000"
tombstone_ttl = "1m"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/models/tiny.gguf", cfg.Model.Path)
	assert.Equal(t, 512, cfg.Model.ContextSize)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.TombstoneTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLSearchPath(t *testing.T) {
	isolate(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	content := "model:\n  gpu_layers: 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(wd, "llamabridge.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Model.GPULayers)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("LLAMABRIDGE_MODEL_CONTEXT_SIZE", "1024")
	t.Setenv("LLAMABRIDGE_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Model.ContextSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("LLAMABRIDGE_LOGGING_LEVEL", "loud")

	_, err := Load("")
	assert.ErrorContains(t, err, "logging.level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero context", func(c *Config) { c.Model.ContextSize = 0 }, true},
		{"negative gpu layers", func(c *Config) { c.Model.GPULayers = -1 }, true},
		{"negative ttl", func(c *Config) { c.Server.TombstoneTTL = -time.Second }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("MODELS", "/srv/models")

	cfg := DefaultConfig()
	cfg.Model.Path = "$MODELS/a.gguf"
	cfg.Logging.File = "~/logs/bridge.log"
	cfg.ExpandPaths()

	assert.Equal(t, "/srv/models/a.gguf", cfg.Model.Path)
	assert.Equal(t, "/home/tester/logs/bridge.log", cfg.Logging.File)
}
