package pool

// ID names a pool within a Registry. IDs are opaque to the pool layer and
// immutable once a pool has been registered for them.
type ID string

// Template constructs a fresh, fully-built but inactive instance. It is
// called during eager pre-population at registration time and again whenever
// the idle queue is exhausted and the pool grows. Templates must be safe to
// call many times and should return an error only when the system is
// genuinely out of resources; that error surfaces to the caller as an
// allocation failure.
type Template[T comparable] func() (T, error)

// Blueprint is the immutable descriptor registered for a pool: who it is,
// how to build its instances, and how many to build up front.
type Blueprint[T comparable] struct {
	// ID uniquely names the pool within its registry.
	ID ID

	// Template fabricates new instances.
	Template Template[T]

	// InitialCapacity is the number of idle instances pre-populated at
	// registration time. Zero is legal; the pool then grows lazily.
	InitialCapacity int

	// MaxInstances caps the pool's total size (idle + issued). Zero means
	// unlimited. Acquire fails with an allocation failure once the cap is
	// reached and no idle instance is available.
	MaxInstances int
}

// Vec3 is a position or euler rotation in world space. The pool never
// interprets these values; they are forwarded to the placer callback.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Placement describes where and under which parent context an acquired
// instance should be activated. It is applied through the registry's placer
// callback before the acquire hook fires, so hooks observe the instance
// already positioned.
type Placement struct {
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Parent   string `json:"parent,omitempty"`
}
