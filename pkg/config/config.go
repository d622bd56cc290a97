// Package config provides the unified configuration system for Prefab.
// It defines a single Config structure describing the pool registry and
// the simulation that drives it, ensuring consistent configuration across
// the CLI and library entry points.
//
// The configuration is organized into logical sections:
//   - Pools: Blueprint declarations (identifier, capacity, instance cap)
//   - Policy: Registry behavior for duplicates and orphaned instances
//   - Simulation: Tick loop settings for the driver world
//   - Observability: Metrics, tracing, logging
//
// Example usage:
//
//	cfg := config.NewConfig("turret-demo")
//	cfg.Pools = append(cfg.Pools, config.PoolConfig{ID: "bullet", InitialCapacity: 32})
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"
)

// Config is the single unified configuration structure for a Prefab
// deployment. It declares every pool up front so the registry can be
// populated before the first acquire.
type Config struct {
	// Name identifies the registry instance
	Name string `yaml:"name" json:"name"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Pools declares the blueprints registered at startup
	Pools []PoolConfig `yaml:"pools" json:"pools"`

	// Policy controls registry behavior on duplicates and orphans
	Policy PolicyConfig `yaml:"policy" json:"policy"`

	// Limits bounds registry-wide resource usage
	Limits LimitsConfig `yaml:"limits" json:"limits"`

	// Simulation settings for the tick-driven driver world
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// PoolConfig declares a single pool blueprint.
type PoolConfig struct {
	// ID is the unique pool identifier
	ID string `yaml:"id" json:"id"`
	// InitialCapacity is the number of instances built eagerly at registration
	InitialCapacity int `yaml:"initial_capacity" json:"initial_capacity"`
	// MaxInstances caps total instances for the pool (0 = unlimited growth)
	MaxInstances int `yaml:"max_instances" json:"max_instances"`
}

// PolicyConfig contains registry-wide behavioral settings.
type PolicyConfig struct {
	// DuplicateMode selects handling of repeated registrations ("reject" or "replace")
	DuplicateMode string `yaml:"duplicate_mode" json:"duplicate_mode"`
	// DestroyOrphans destroys instances released to the wrong registry
	// instead of leaking them
	DestroyOrphans bool `yaml:"destroy_orphans" json:"destroy_orphans"`
}

// LimitsConfig bounds registry-wide resource usage.
type LimitsConfig struct {
	// MaxTotalInstances caps instances across all pools (0 = unlimited).
	// Acquires that would exceed it fail with an allocation failure.
	MaxTotalInstances int `yaml:"max_total_instances" json:"max_total_instances"`
}

// SimulationConfig contains settings for the driver world's tick loop.
type SimulationConfig struct {
	// Ticks is the number of simulation steps to run (0 = until cancelled)
	Ticks int `yaml:"ticks" json:"ticks"`
	// TickInterval is the wall-clock delay between steps (0 = run flat out)
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
	// SpawnRate is the number of instances acquired per tick
	SpawnRate int `yaml:"spawn_rate" json:"spawn_rate"`
	// Lifetime is how many ticks an instance stays issued before release
	Lifetime int `yaml:"lifetime" json:"lifetime"`
	// Seed fixes the random source for reproducible runs (0 = time-based)
	Seed int64 `yaml:"seed" json:"seed"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// EnableMetrics activates Prometheus metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing activates OpenTelemetry tracing
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding selects the log output format (json or console)
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// Duplicate mode values accepted by PolicyConfig.
const (
	DuplicateModeReject  = "reject"
	DuplicateModeReplace = "replace"
)

// NewConfig creates a new Config with sensible defaults. Pools start empty;
// callers append their blueprint declarations before Validate.
func NewConfig(name string) *Config {
	return &Config{
		Name:    name,
		Version: "1.0.0",
		Policy: PolicyConfig{
			DuplicateMode:  DuplicateModeReject,
			DestroyOrphans: true,
		},
		Simulation: SimulationConfig{
			Ticks:        600,
			TickInterval: 0,
			SpawnRate:    4,
			Lifetime:     30,
			Seed:         0,
		},
		Observability: ObservabilityConfig{
			EnableMetrics:     true,
			EnableTracing:     false,
			LogLevel:          "info",
			LogEncoding:       "json",
			TracingSampleRate: 0.1,
		},
	}
}

// Validate checks required fields and ensures values are within acceptable
// ranges. Callers should invoke it after loading configuration to catch
// errors before the registry is populated.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Pools) == 0 {
		return fmt.Errorf("at least one pool must be declared")
	}

	seen := make(map[string]bool, len(c.Pools))
	for i, p := range c.Pools {
		if p.ID == "" {
			return fmt.Errorf("pools[%d]: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("pools[%d]: duplicate pool id %q", i, p.ID)
		}
		seen[p.ID] = true
		if p.InitialCapacity < 0 {
			return fmt.Errorf("pool %q: initial_capacity cannot be negative", p.ID)
		}
		if p.MaxInstances < 0 {
			return fmt.Errorf("pool %q: max_instances cannot be negative", p.ID)
		}
		if p.MaxInstances > 0 && p.InitialCapacity > p.MaxInstances {
			return fmt.Errorf("pool %q: initial_capacity %d exceeds max_instances %d",
				p.ID, p.InitialCapacity, p.MaxInstances)
		}
	}

	if c.Limits.MaxTotalInstances < 0 {
		return fmt.Errorf("limits.max_total_instances cannot be negative")
	}

	switch c.Policy.DuplicateMode {
	case DuplicateModeReject, DuplicateModeReplace:
	default:
		return fmt.Errorf("policy.duplicate_mode must be %q or %q, got %q",
			DuplicateModeReject, DuplicateModeReplace, c.Policy.DuplicateMode)
	}

	if c.Simulation.Ticks < 0 {
		return fmt.Errorf("simulation.ticks cannot be negative")
	}
	if c.Simulation.SpawnRate < 0 {
		return fmt.Errorf("simulation.spawn_rate cannot be negative")
	}
	if c.Simulation.Lifetime <= 0 {
		return fmt.Errorf("simulation.lifetime must be positive")
	}

	switch c.Observability.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level %q is not a valid level", c.Observability.LogLevel)
	}
	switch c.Observability.LogEncoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("observability.log_encoding must be \"json\" or \"console\", got %q", c.Observability.LogEncoding)
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be in [0,1]")
	}
	return nil
}

// Pool returns the declaration for the given pool id, if present.
func (c *Config) Pool(id string) (PoolConfig, bool) {
	for _, p := range c.Pools {
		if p.ID == id {
			return p, true
		}
	}
	return PoolConfig{}, false
}

// ReplaceOnDuplicate returns true when repeated registrations should
// supersede the existing pool.
func (p *PolicyConfig) ReplaceOnDuplicate() bool {
	return p.DuplicateMode == DuplicateModeReplace
}
