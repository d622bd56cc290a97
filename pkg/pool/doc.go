// Package pool provides keyed instance pooling with lifecycle hooks for
// Prefab. It recycles expensive-to-create instances (game entities,
// projectiles, effects) through acquire/release cycles instead of
// constructing and destroying them every time, significantly reducing
// allocation churn during gameplay.
//
// The package provides:
//   - A Registry as the single point of contact for acquiring and releasing
//     pooled instances, keyed by pool identifier
//   - Per-identifier FIFO idle queues for even wear and predictable reuse
//   - A reverse index from issued instances back to their owning pool,
//     used to validate and route release calls
//   - Optional per-instance lifecycle hooks fired on acquire and release
//   - Graceful pool growth when the idle queue is exhausted
//
// Example usage:
//
//	reg := pool.NewRegistry(
//	    pool.WithPlacer[*Bullet](func(b *Bullet, p pool.Placement) {
//	        b.Position = p.Position
//	    }),
//	)
//
//	err := reg.Register(pool.Blueprint[*Bullet]{
//	    ID:              "bullet",
//	    Template:        func() (*Bullet, error) { return &Bullet{}, nil },
//	    InitialCapacity: 32,
//	})
//
//	b, err := reg.Acquire("bullet", pool.Placement{Position: muzzle})
//	// ... bullet flies ...
//	_ = reg.Release(b)
//
// All registry operations are synchronous, non-blocking, and serialized
// behind a single mutex, so a registry may be shared across goroutines.
// Callers borrow instances between Acquire and Release but never own them:
// an acquired instance must not be destroyed directly, and the only path
// back to the idle queue is an explicit Release call.
package pool
