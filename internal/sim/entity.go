// Package sim provides the tick-driven driver world for Prefab. It wires a
// pool registry to a small projectile simulation: entities are acquired at a
// configured spawn rate, advanced each tick, and released back when their
// lifetime expires.
package sim

import (
	"sync/atomic"

	"github.com/prefab-dev/prefab/pkg/pool"
)

// entitySeq hands out unique entity numbers across all pools.
var entitySeq atomic.Int64

// Entity is a pooled projectile. It carries transform state plus the
// bookkeeping the world needs to expire it.
type Entity struct {
	Number   int64
	Kind     pool.ID
	Position pool.Vec3
	Velocity pool.Vec3

	// Age counts ticks since the last acquire.
	Age int

	active bool
}

// NewEntity constructs an entity for the given pool. Used as the pool
// template.
func NewEntity(kind pool.ID) *Entity {
	return &Entity{
		Number: entitySeq.Add(1),
		Kind:   kind,
	}
}

// OnAcquire restarts the entity's lifetime clock. Runs after placement,
// before the world sees the instance.
func (e *Entity) OnAcquire() {
	e.Age = 0
	e.active = true
}

// OnRelease parks the entity. Velocity is zeroed so a stale vector can
// never leak into the next acquire.
func (e *Entity) OnRelease() {
	e.Velocity = pool.Vec3{}
	e.active = false
}

// Active reports whether the entity is currently issued to the world.
func (e *Entity) Active() bool {
	return e.active
}

// Advance integrates position by one tick of velocity and ages the entity.
func (e *Entity) Advance() {
	e.Position.X += e.Velocity.X
	e.Position.Y += e.Velocity.Y
	e.Position.Z += e.Velocity.Z
	e.Age++
}

// Expired reports whether the entity has outlived the given tick budget.
func (e *Entity) Expired(lifetime int) bool {
	return e.Age >= lifetime
}
