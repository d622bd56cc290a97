// Package prefab provides pooled instance lifecycle management: named pools
// of reusable instances behind a single registry, with explicit acquire and
// release semantics.
//
// Instead of constructing and destroying short-lived objects per use, a
// registry is populated once with blueprints and then lends instances out.
// Releases return instances to a FIFO idle queue for reuse; pools grow on
// demand when the queue runs dry.
//
// # Quick Start
//
// Register a pool and cycle an instance through it:
//
//	import "github.com/prefab-dev/prefab/pkg/pool"
//
//	registry := pool.NewRegistry[*Bullet]()
//
//	err := registry.Register(pool.Blueprint[*Bullet]{
//	    ID:              "bullet",
//	    Template:        func() (*Bullet, error) { return &Bullet{}, nil },
//	    InitialCapacity: 32,
//	})
//
//	b, err := registry.Acquire("bullet", pool.Placement{
//	    Position: pool.Vec3{X: 10, Y: 0, Z: 4},
//	})
//	// ... use b ...
//	err = registry.Release(b)
//
// Instances may implement pool.Lifecycle to be notified on acquire and
// release; the capability is probed once at construction and cached.
//
// # Key Packages
//
//	pkg/pool          - Registry, pools, blueprints, lifecycle hooks
//	pkg/config        - Unified configuration management
//	pkg/prefaberrors  - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus metrics collection
//	pkg/observability - Tracing bootstrap
//	internal/sim      - Tick-driven world exercising the registry
//
// # Error Model
//
// Registry operations distinguish three failure classes:
//
//   - Configuration mistakes (unknown or duplicate identifiers) are no-ops
//     surfaced as errors.
//   - Integrity violations (double release, unmanaged instances) are
//     rejected, logged, and contained; the violating instance never reaches
//     an idle queue.
//   - Allocation failures (template errors, instance caps) are the only
//     hard failures propagated from Acquire.
//
// # Configuration
//
// Prefab uses a single YAML configuration with ${VAR_NAME} environment
// substitution:
//
//	name: turret-demo
//	pools:
//	  - id: bullet
//	    initial_capacity: 32
//	    max_instances: 256
//	policy:
//	  duplicate_mode: reject
//	observability:
//	  log_level: info
//
// See the prefab CLI (cmd/prefab) for validate and run commands.
package prefab
