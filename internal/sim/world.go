package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/prefab-dev/prefab/pkg/config"
	"github.com/prefab-dev/prefab/pkg/metrics"
	"github.com/prefab-dev/prefab/pkg/observability"
	"github.com/prefab-dev/prefab/pkg/pool"
)

// World drives a pool registry through a tick loop. Each tick it acquires a
// batch of entities, advances everything in flight, and releases whatever
// has expired. It is the reference consumer of the registry API.
type World struct {
	registry *pool.Registry[*Entity]
	poolIDs  []pool.ID

	// Tick loop settings
	ticks        int
	tickInterval time.Duration
	spawnRate    int
	lifetime     int

	active []*Entity
	rng    *rand.Rand

	// Counters
	spawned   int64
	released  int64
	exhausted int64
	destroyed int64
	ticksRun  int64

	logger    *zap.Logger
	tracer    *observability.RegistryTracer
	startTime time.Time
}

// NewWorld builds a registry from the configuration and registers every
// declared pool. The returned world is ready to Run.
func NewWorld(cfg *config.Config, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Pools) == 0 {
		return nil, fmt.Errorf("no pools declared")
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := &World{
		ticks:        cfg.Simulation.Ticks,
		tickInterval: cfg.Simulation.TickInterval,
		spawnRate:    cfg.Simulation.SpawnRate,
		lifetime:     cfg.Simulation.Lifetime,
		rng:          rand.New(rand.NewSource(seed)), //nolint:gosec // simulation randomness, not crypto
		logger:       log,
	}

	opts := []pool.Option[*Entity]{
		pool.WithLogger[*Entity](log.Named("registry")),
		pool.WithPlacer(func(e *Entity, p pool.Placement) {
			e.Position = p.Position
		}),
		pool.WithResetter(func(e *Entity) {
			e.Position = pool.Vec3{}
		}),
	}
	if cfg.Policy.DestroyOrphans {
		opts = append(opts, pool.WithDestroyer(func(e *Entity) {
			e.active = false
			w.destroyed++
		}))
	}
	if cfg.Policy.ReplaceOnDuplicate() {
		opts = append(opts, pool.WithDuplicatePolicy[*Entity](pool.DuplicateReplace))
	}
	if cfg.Limits.MaxTotalInstances > 0 {
		opts = append(opts, pool.WithMaxTotal[*Entity](cfg.Limits.MaxTotalInstances))
	}
	if cfg.Observability.EnableMetrics {
		opts = append(opts, pool.WithCollector[*Entity](metrics.NewCollector(cfg.Name)))
	}
	if cfg.Observability.EnableTracing {
		w.tracer = observability.NewRegistryTracer(cfg.Name)
	}

	w.registry = pool.NewRegistry(opts...)

	for _, pc := range cfg.Pools {
		id := pool.ID(pc.ID)
		err := w.registry.Register(pool.Blueprint[*Entity]{
			ID:              id,
			Template:        func() (*Entity, error) { return NewEntity(id), nil },
			InitialCapacity: pc.InitialCapacity,
			MaxInstances:    pc.MaxInstances,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register pool %q: %w", pc.ID, err)
		}
		w.poolIDs = append(w.poolIDs, id)
	}

	return w, nil
}

// Registry exposes the underlying registry for stats and inspection.
func (w *World) Registry() *pool.Registry[*Entity] {
	return w.registry
}

// Run executes the tick loop until the configured tick count is reached or
// the context is cancelled. A tick count of zero runs until cancellation.
func (w *World) Run(ctx context.Context) error {
	w.startTime = time.Now()
	w.logger.Info("starting world",
		zap.Int("pools", len(w.poolIDs)),
		zap.Int("ticks", w.ticks),
		zap.Int("spawn_rate", w.spawnRate),
		zap.Int("lifetime", w.lifetime))

	var ticker *time.Ticker
	if w.tickInterval > 0 {
		ticker = time.NewTicker(w.tickInterval)
		defer ticker.Stop()
	}

	for tick := 0; w.ticks == 0 || tick < w.ticks; tick++ {
		select {
		case <-ctx.Done():
			w.logger.Info("world cancelled", zap.Int("tick", tick))
			return ctx.Err()
		default:
		}

		w.step(ctx)
		w.ticksRun++

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				w.logger.Info("world cancelled", zap.Int("tick", tick))
				return ctx.Err()
			}
		}
	}

	duration := time.Since(w.startTime)
	w.logger.Info("world completed",
		zap.Int64("ticks", w.ticksRun),
		zap.Int64("spawned", w.spawned),
		zap.Int64("released", w.released),
		zap.Int64("exhausted", w.exhausted),
		zap.Int("in_flight", len(w.active)),
		zap.Duration("duration", duration))

	return nil
}

// acquire goes through the registry, wrapped in a span when tracing is on.
func (w *World) acquire(ctx context.Context, id pool.ID, placement pool.Placement) (*Entity, error) {
	if w.tracer == nil {
		return w.registry.Acquire(id, placement)
	}
	var e *Entity
	err := w.tracer.TracePoolOp(ctx, string(id), "acquire", func() error {
		var acquireErr error
		e, acquireErr = w.registry.Acquire(id, placement)
		return acquireErr
	})
	return e, err
}

// release returns an entity to its pool, wrapped in a span when tracing is on.
func (w *World) release(ctx context.Context, e *Entity) error {
	if w.tracer == nil {
		return w.registry.Release(e)
	}
	return w.tracer.TracePoolOp(ctx, string(e.Kind), "release", func() error {
		return w.registry.Release(e)
	})
}

// step performs one tick: spawn new entities, advance everything in flight,
// release the expired.
func (w *World) step(ctx context.Context) {
	for i := 0; i < w.spawnRate; i++ {
		id := w.poolIDs[w.rng.Intn(len(w.poolIDs))]
		placement := pool.Placement{
			Position: pool.Vec3{
				X: w.rng.Float64()*100 - 50,
				Y: w.rng.Float64()*100 - 50,
				Z: 0,
			},
		}

		e, err := w.acquire(ctx, id, placement)
		if err != nil {
			// Exhaustion is an expected steady-state condition when pools
			// are capped; anything else is a wiring bug worth surfacing.
			w.exhausted++
			w.logger.Debug("spawn skipped",
				zap.String("pool_id", string(id)),
				zap.Error(err))
			continue
		}

		e.Velocity = pool.Vec3{
			X: w.rng.Float64()*2 - 1,
			Y: w.rng.Float64()*2 - 1,
			Z: 0,
		}
		w.active = append(w.active, e)
		w.spawned++
	}

	// Advance and compact in one pass; expired entities go back to their
	// pools.
	survivors := w.active[:0]
	for _, e := range w.active {
		e.Advance()
		if !e.Expired(w.lifetime) {
			survivors = append(survivors, e)
			continue
		}
		if err := w.release(ctx, e); err != nil {
			w.logger.Warn("release failed", zap.Error(err))
			continue
		}
		w.released++
	}
	w.active = survivors
}

// Drain releases every in-flight entity and clears all pools, destroying
// everything the registry owns.
func (w *World) Drain() {
	for _, e := range w.active {
		if err := w.registry.Release(e); err != nil {
			w.logger.Warn("drain release failed", zap.Error(err))
			continue
		}
		w.released++
	}
	w.active = w.active[:0]
	w.registry.ClearAll()
	w.logger.Info("world drained")
}

// InFlight returns the number of entities currently issued to the world.
func (w *World) InFlight() int {
	return len(w.active)
}

// Metrics returns a run summary keyed for structured output.
func (w *World) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"ticks_run": w.ticksRun,
		"spawned":   w.spawned,
		"released":  w.released,
		"exhausted": w.exhausted,
		"destroyed": w.destroyed,
		"in_flight": len(w.active),
	}
}
