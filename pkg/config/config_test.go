package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewConfig("test")
	cfg.Pools = []PoolConfig{
		{ID: "bullet", InitialCapacity: 8, MaxInstances: 64},
		{ID: "spark", InitialCapacity: 0},
	}
	return cfg
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig("demo")
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, DuplicateModeReject, cfg.Policy.DuplicateMode)
	assert.True(t, cfg.Policy.DestroyOrphans)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.False(t, cfg.Policy.ReplaceOnDuplicate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "name is required"},
		{"no pools", func(c *Config) { c.Pools = nil }, "at least one pool"},
		{"empty pool id", func(c *Config) { c.Pools[0].ID = "" }, "id is required"},
		{"duplicate pool id", func(c *Config) { c.Pools[1].ID = "bullet" }, "duplicate pool id"},
		{"negative capacity", func(c *Config) { c.Pools[0].InitialCapacity = -1 }, "cannot be negative"},
		{"capacity over cap", func(c *Config) { c.Pools[0].InitialCapacity = 100 }, "exceeds max_instances"},
		{"bad duplicate mode", func(c *Config) { c.Policy.DuplicateMode = "panic" }, "duplicate_mode"},
		{"negative total limit", func(c *Config) { c.Limits.MaxTotalInstances = -1 }, "max_total_instances"},
		{"negative spawn rate", func(c *Config) { c.Simulation.SpawnRate = -1 }, "spawn_rate"},
		{"zero lifetime", func(c *Config) { c.Simulation.Lifetime = 0 }, "lifetime"},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "loud" }, "log_level"},
		{"bad log encoding", func(c *Config) { c.Observability.LogEncoding = "xml" }, "log_encoding"},
		{"bad sample rate", func(c *Config) { c.Observability.TracingSampleRate = 1.5 }, "tracing_sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadYAMLWithEnvSubstitution(t *testing.T) {
	t.Setenv("PREFAB_TEST_NAME", "from-env")

	path := filepath.Join(t.TempDir(), "prefab.yaml")
	doc := `name: ${PREFAB_TEST_NAME}
version: "1.0.0"
pools:
  - id: bullet
    initial_capacity: 4
    max_instances: 16
policy:
  duplicate_mode: replace
simulation:
  ticks: 10
  spawn_rate: 2
  lifetime: 5
observability:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	var cfg Config
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, "from-env", cfg.Name)
	require.Len(t, cfg.Pools, 1)
	assert.Equal(t, "bullet", cfg.Pools[0].ID)
	assert.Equal(t, 4, cfg.Pools[0].InitialCapacity)
	assert.Equal(t, 16, cfg.Pools[0].MaxInstances)
	assert.True(t, cfg.Policy.ReplaceOnDuplicate())
	assert.Equal(t, 10, cfg.Simulation.Ticks)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoadIntoDefaultsKeepsOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	doc := `name: minimal
pools:
  - id: bullet
    initial_capacity: 1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	// Decoding into a default-seeded config must leave omitted sections at
	// their documented defaults, so the result both validates and runs.
	cfg := NewConfig("")
	require.NoError(t, Load(path, cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "minimal", cfg.Name)
	assert.Equal(t, DuplicateModeReject, cfg.Policy.DuplicateMode)
	assert.Equal(t, "json", cfg.Observability.LogEncoding)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Positive(t, cfg.Simulation.Lifetime)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefab.json")
	doc := `{"name":"json-demo","pools":[{"id":"bolt","initial_capacity":2}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	var cfg Config
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, "json-demo", cfg.Name)
	require.Len(t, cfg.Pools, 1)
	assert.Equal(t, "bolt", cfg.Pools[0].ID)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := validConfig()
	require.NoError(t, Save(path, cfg))

	var loaded Config
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, cfg.Name, loaded.Name)
	assert.Equal(t, cfg.Pools, loaded.Pools)
	assert.Equal(t, cfg.Policy, loaded.Policy)
}

func TestPoolLookup(t *testing.T) {
	cfg := validConfig()
	p, ok := cfg.Pool("bullet")
	require.True(t, ok)
	assert.Equal(t, 8, p.InitialCapacity)

	_, ok = cfg.Pool("ghost")
	assert.False(t, ok)
}
