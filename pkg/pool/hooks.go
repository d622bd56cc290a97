package pool

// Lifecycle is the optional capability an instance may implement to be
// notified of its acquire/release transitions. Instances without it are
// perfectly legal; the registry simply skips the calls.
//
// The capability is probed exactly once, when the instance is constructed,
// and cached for the instance's lifetime. Hot-path acquire/release calls
// never perform dynamic type queries.
//
// Hooks must confine their side effects to the instance itself and must not
// call back into the registry synchronously; the registry holds its mutex
// while hooks run.
type Lifecycle interface {
	// OnAcquire is called after placement has been applied and before the
	// caller receives the instance. Use it to reset transient state left
	// over from a previous active cycle.
	OnAcquire()

	// OnRelease is called before the instance returns to the idle queue.
	// Use it to halt outstanding timers or behaviors so a reused instance
	// starts clean.
	OnRelease()
}

// probeLifecycle resolves the optional hook capability for an instance.
func probeLifecycle[T comparable](inst T) (Lifecycle, bool) {
	l, ok := any(inst).(Lifecycle)
	return l, ok
}
