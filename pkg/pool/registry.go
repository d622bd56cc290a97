package pool

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/prefab-dev/prefab/pkg/metrics"
	"github.com/prefab-dev/prefab/pkg/prefaberrors"
)

// DuplicatePolicy controls what Register does when the identifier is already
// taken.
type DuplicatePolicy int

const (
	// DuplicateReject fails the second registration with
	// ErrDuplicateIdentifier and leaves the existing pool untouched.
	// This is the default: silently replacing a pool risks orphaning
	// issued instances whose owning pool vanished.
	DuplicateReject DuplicatePolicy = iota

	// DuplicateReplace destroys the old pool's idle instances, retires its
	// issued instances (they are destroyed quietly when eventually
	// released), and installs the new pool under the same identifier.
	DuplicateReplace
)

// Option configures a Registry.
type Option[T comparable] func(*Registry[T])

// WithPlacer sets the engine transform adapter: given an instance and a
// placement, apply it. When unset, placements are ignored.
func WithPlacer[T comparable](place func(T, Placement)) Option[T] {
	return func(r *Registry[T]) { r.place = place }
}

// WithResetter sets a callback invoked on every successful release, after the
// release hook and before the instance is parked. Use it to clear residual
// engine-side state (motion, forces) that lives outside the instance itself.
func WithResetter[T comparable](reset func(T)) Option[T] {
	return func(r *Registry[T]) { r.reset = reset }
}

// WithDestroyer sets the callback used to dispose of instances on Clear and
// when a stray unmanaged instance is handed to Release. When unset, instances
// are simply dropped and left to the garbage collector.
func WithDestroyer[T comparable](destroy func(T)) Option[T] {
	return func(r *Registry[T]) { r.destroy = destroy }
}

// WithDuplicatePolicy selects the Register behavior for identifiers that are
// already registered.
func WithDuplicatePolicy[T comparable](policy DuplicatePolicy) Option[T] {
	return func(r *Registry[T]) { r.policy = policy }
}

// WithMaxTotal caps the number of instances the registry may own across all
// pools. Zero means unlimited. Pre-population and growth fail with
// ErrAllocationFailure once the cap is reached.
func WithMaxTotal[T comparable](n int) Option[T] {
	return func(r *Registry[T]) { r.maxTotal = n }
}

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger[T comparable](logger *zap.Logger) Option[T] {
	return func(r *Registry[T]) { r.logger = logger }
}

// WithCollector attaches a metrics collector. When unset, no metrics are
// recorded.
func WithCollector[T comparable](c *metrics.Collector) Option[T] {
	return func(r *Registry[T]) { r.collector = c }
}

// Registry is the single point of contact for acquiring and releasing pooled
// instances. It owns the identifier→pool map and the reverse instance→
// identifier index used to validate releases.
//
// A Registry exclusively owns every instance it has registered or grown.
// Construct one Registry per session and pass it to the components that need
// it; do not share instances between registries.
type Registry[T comparable] struct {
	mu sync.Mutex

	pools   map[ID]*instancePool[T]
	owners  map[T]ID       // reverse index over all managed instances
	hooks   map[T]Lifecycle // capability cache, populated at construction
	retired map[T]struct{} // issued instances whose pool was replaced

	place    func(T, Placement)
	reset    func(T)
	destroy  func(T)
	policy   DuplicatePolicy
	maxTotal int // 0 = unlimited

	logger    *zap.Logger
	collector *metrics.Collector
}

// NewRegistry creates an empty registry.
func NewRegistry[T comparable](opts ...Option[T]) *Registry[T] {
	r := &Registry[T]{
		pools:   make(map[ID]*instancePool[T]),
		owners:  make(map[T]ID),
		hooks:   make(map[T]Lifecycle),
		retired: make(map[T]struct{}),
		policy:  DuplicateReject,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.collector != nil {
		r.logger.Debug("metrics collector attached", zap.String("collector", r.collector.Name()))
	}
	return r
}

// Register creates a new pool from the blueprint and eagerly pre-populates
// it with InitialCapacity idle instances. Registration is atomic: if any
// template call fails, already-built instances are destroyed and the pool is
// not installed.
func (r *Registry[T]) Register(bp Blueprint[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bp.Template == nil {
		return prefaberrors.Wrap(ErrNilTemplate, prefaberrors.ErrorTypeConfig, "registration rejected").
			WithDetail("pool_id", string(bp.ID))
	}

	if old, exists := r.pools[bp.ID]; exists {
		if r.policy == DuplicateReject {
			r.logger.Error("duplicate pool registration rejected",
				zap.String("pool_id", string(bp.ID)))
			return prefaberrors.Wrap(ErrDuplicateIdentifier, prefaberrors.ErrorTypeConfig, "registration rejected").
				WithDetail("pool_id", string(bp.ID))
		}
		r.replaceLocked(old)
	}

	p := newInstancePool(bp)
	for i := 0; i < bp.InitialCapacity; i++ {
		if r.atCapacityLocked() {
			for _, built := range p.idle {
				r.forgetLocked(built)
				r.destroyInstance(built)
			}
			return prefaberrors.Wrap(ErrAllocationFailure, prefaberrors.ErrorTypeExhaustion, "global instance limit reached").
				WithDetail("pool_id", string(bp.ID)).
				WithDetail("max_total", r.maxTotal)
		}
		inst, err := p.construct()
		if err != nil {
			// Roll back: the pool is not installed.
			for _, built := range p.idle {
				r.forgetLocked(built)
				r.destroyInstance(built)
			}
			return prefaberrors.Wrap(err, prefaberrors.ErrorTypeExhaustion, "pre-population failed").
				WithDetail("pool_id", string(bp.ID)).
				WithDetail("built", i)
		}
		r.adoptLocked(bp.ID, inst)
		// Pre-populated instances can never collide in the idle set.
		_ = p.returnIdle(inst)
	}

	r.pools[bp.ID] = p
	if r.collector != nil {
		r.collector.ObserveConstructed(string(bp.ID), bp.InitialCapacity)
		r.collector.SetOccupancy(string(bp.ID), len(p.idle), len(p.issued))
	}
	r.logger.Debug("pool registered",
		zap.String("pool_id", string(bp.ID)),
		zap.Int("initial_capacity", bp.InitialCapacity),
		zap.Int("max_instances", bp.MaxInstances))
	return nil
}

// Acquire returns an instance from the identified pool, positioned per the
// placement. The idle queue is FIFO: the longest-idle instance is reused
// first. When the queue is empty the pool grows by constructing a new
// instance; growth succeeds or the call fails with ErrAllocationFailure.
func (r *Registry[T]) Acquire(id ID, placement Placement) (T, error) {
	timer := metrics.NewTimer("acquire")
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	p, ok := r.pools[id]
	if !ok {
		r.logger.Error("acquire from unknown pool", zap.String("pool_id", string(id)))
		return zero, prefaberrors.Wrap(ErrUnknownIdentifier, prefaberrors.ErrorTypeConfig, "acquire rejected").
			WithDetail("pool_id", string(id))
	}

	inst, reused := p.tryTakeIdle()
	if !reused {
		if p.full() {
			return zero, prefaberrors.Wrap(ErrAllocationFailure, prefaberrors.ErrorTypeExhaustion, "instance cap reached").
				WithDetail("pool_id", string(id)).
				WithDetail("max_instances", p.max)
		}
		if r.atCapacityLocked() {
			return zero, prefaberrors.Wrap(ErrAllocationFailure, prefaberrors.ErrorTypeExhaustion, "global instance limit reached").
				WithDetail("pool_id", string(id)).
				WithDetail("max_total", r.maxTotal)
		}
		grown, err := p.construct()
		if err != nil {
			cause := fmt.Errorf("%w: %w", ErrAllocationFailure, err)
			return zero, prefaberrors.Wrap(cause, prefaberrors.ErrorTypeExhaustion, "pool growth failed").
				WithDetail("pool_id", string(id))
		}
		r.adoptLocked(id, grown)
		inst = grown
		if r.collector != nil {
			r.collector.ObserveConstructed(string(id), 1)
		}
		r.logger.Debug("pool grown",
			zap.String("pool_id", string(id)),
			zap.Int("size", p.size()+1))
	}

	p.issued[inst] = struct{}{}

	// Placement first, then the hook: OnAcquire must observe the instance
	// already positioned.
	if r.place != nil {
		r.place(inst, placement)
	}
	if h := r.hooks[inst]; h != nil {
		h.OnAcquire()
	}

	if r.collector != nil {
		r.collector.ObserveAcquire(string(id), reused, timer.Stop())
		r.collector.SetOccupancy(string(id), len(p.idle), len(p.issued))
	}
	return inst, nil
}

// Release returns a borrowed instance to its owning pool's idle queue. The
// owning pool is resolved through the reverse index; instances the registry
// never issued are destroyed rather than leaked, and double releases are
// rejected without touching the idle queue. Both conditions return integrity
// errors that callers may safely ignore: they are logged and contained here.
func (r *Registry[T]) Release(inst T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Instances of replaced pools are retired on their way back: their
	// owning pool is gone, so they are destroyed instead of parked.
	if _, retired := r.retired[inst]; retired {
		if h := r.hooks[inst]; h != nil {
			h.OnRelease()
		}
		delete(r.retired, inst)
		delete(r.hooks, inst)
		r.destroyInstance(inst)
		r.logger.Debug("released instance of replaced pool destroyed")
		return nil
	}

	id, managed := r.owners[inst]
	if !managed {
		r.destroyInstance(inst)
		r.logger.Warn("unmanaged instance released; destroying orphan")
		if r.collector != nil {
			r.collector.ObserveViolation("unmanaged_instance")
		}
		return prefaberrors.Wrap(ErrUnmanagedInstance, prefaberrors.ErrorTypeIntegrity, "orphan destroyed")
	}

	p := r.pools[id]
	if _, issued := p.issued[inst]; !issued {
		r.logger.Warn("double release rejected", zap.String("pool_id", string(id)))
		if r.collector != nil {
			r.collector.ObserveViolation("double_release")
		}
		return prefaberrors.Wrap(ErrDoubleRelease, prefaberrors.ErrorTypeIntegrity, "release rejected").
			WithDetail("pool_id", string(id))
	}

	// Hook first, then the external reset, then park: OnRelease must fire
	// strictly before the instance reaches the idle queue.
	if h := r.hooks[inst]; h != nil {
		h.OnRelease()
	}
	if r.reset != nil {
		r.reset(inst)
	}

	delete(p.issued, inst)
	if err := p.returnIdle(inst); err != nil {
		// Unreachable while the partition invariant holds; kept as a
		// hard guard against corrupting the idle queue.
		p.issued[inst] = struct{}{}
		return prefaberrors.Wrap(err, prefaberrors.ErrorTypeIntegrity, "release rejected").
			WithDetail("pool_id", string(id))
	}

	if r.collector != nil {
		r.collector.ObserveRelease(string(id))
		r.collector.SetOccupancy(string(id), len(p.idle), len(p.issued))
	}
	return nil
}

// Clear destroys every instance, idle and issued, belonging to the
// identified pool, then removes the pool and all its reverse-index entries.
func (r *Registry[T]) Clear(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(id)
}

// ClearAll clears every registered pool and destroys any retired instances
// still out with callers.
func (r *Registry[T]) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.pools {
		// clearLocked only fails for unknown identifiers.
		_ = r.clearLocked(id)
	}
	for inst := range r.retired {
		delete(r.retired, inst)
		delete(r.hooks, inst)
		r.destroyInstance(inst)
	}
}

// Has reports whether a pool is registered for the identifier.
func (r *Registry[T]) Has(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pools[id]
	return ok
}

// Stats returns a snapshot of every pool's occupancy and reuse counters.
func (r *Registry[T]) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RegistryStats{Pools: make(map[ID]PoolStats, len(r.pools))}
	for id, p := range r.pools {
		ps := snapshotPool(p)
		stats.Pools[id] = ps
		stats.TotalIdle += ps.Idle
		stats.TotalIssued += ps.Issued
		stats.TotalCreated += ps.Created
		stats.TotalReused += ps.Reused
	}
	return stats
}

// PoolStats returns the snapshot for a single pool.
func (r *Registry[T]) PoolStats(id ID) (PoolStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[id]
	if !ok {
		return PoolStats{}, prefaberrors.Wrap(ErrUnknownIdentifier, prefaberrors.ErrorTypeConfig, "stats unavailable").
			WithDetail("pool_id", string(id))
	}
	return snapshotPool(p), nil
}

func (r *Registry[T]) clearLocked(id ID) error {
	p, ok := r.pools[id]
	if !ok {
		r.logger.Error("clear of unknown pool", zap.String("pool_id", string(id)))
		return prefaberrors.Wrap(ErrUnknownIdentifier, prefaberrors.ErrorTypeConfig, "clear rejected").
			WithDetail("pool_id", string(id))
	}

	destroyed := 0
	for _, inst := range p.idle {
		r.forgetLocked(inst)
		r.destroyInstance(inst)
		destroyed++
	}
	for inst := range p.issued {
		r.forgetLocked(inst)
		r.destroyInstance(inst)
		destroyed++
	}
	delete(r.pools, id)

	if r.collector != nil {
		r.collector.ObserveDestroyed(string(id), destroyed)
		r.collector.ForgetPool(string(id))
	}
	r.logger.Debug("pool cleared",
		zap.String("pool_id", string(id)),
		zap.Int("destroyed", destroyed))
	return nil
}

// replaceLocked retires an existing pool so a new one can take its
// identifier. Idle instances are destroyed immediately; issued instances are
// moved to the retired set and destroyed when the borrower releases them.
func (r *Registry[T]) replaceLocked(old *instancePool[T]) {
	for _, inst := range old.idle {
		r.forgetLocked(inst)
		r.destroyInstance(inst)
	}
	for inst := range old.issued {
		delete(r.owners, inst)
		r.retired[inst] = struct{}{}
	}
	delete(r.pools, old.id)
	r.logger.Warn("pool replaced",
		zap.String("pool_id", string(old.id)),
		zap.Int("idle_destroyed", len(old.idle)),
		zap.Int("issued_retired", len(old.issued)))
}

// adoptLocked records a freshly constructed instance: reverse-index entry
// plus the one-time lifecycle capability probe.
func (r *Registry[T]) adoptLocked(id ID, inst T) {
	r.owners[inst] = id
	if h, ok := probeLifecycle(inst); ok {
		r.hooks[inst] = h
	}
}

// atCapacityLocked reports whether the registry-wide instance limit has been
// reached. The owners index covers every live managed instance, so its size
// is the registry's total.
func (r *Registry[T]) atCapacityLocked() bool {
	return r.maxTotal > 0 && len(r.owners)+len(r.retired) >= r.maxTotal
}

// forgetLocked drops every registry record of an instance.
func (r *Registry[T]) forgetLocked(inst T) {
	delete(r.owners, inst)
	delete(r.hooks, inst)
}

func (r *Registry[T]) destroyInstance(inst T) {
	if r.destroy != nil {
		r.destroy(inst)
	}
}
