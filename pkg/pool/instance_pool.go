package pool

// instancePool holds the idle/issued partition for one identifier and
// performs the actual construction when growth is needed. It does no locking
// of its own; the owning registry serializes all access.
type instancePool[T comparable] struct {
	id       ID
	template Template[T]
	max      int // 0 = unlimited

	// idle is a FIFO queue: pop from the head, push to the tail. FIFO
	// approximates even wear and makes reuse order predictable (the
	// longest-idle instance is always reused first).
	idle    []T
	idleSet map[T]struct{}
	issued  map[T]struct{}

	created int64
	reused  int64
}

func newInstancePool[T comparable](bp Blueprint[T]) *instancePool[T] {
	capacity := bp.InitialCapacity
	if capacity < 0 {
		capacity = 0
	}
	return &instancePool[T]{
		id:       bp.ID,
		template: bp.Template,
		max:      bp.MaxInstances,
		idle:     make([]T, 0, capacity),
		idleSet:  make(map[T]struct{}, capacity),
		issued:   make(map[T]struct{}, capacity),
	}
}

// tryTakeIdle pops the head of the idle queue if non-empty. The registry
// decides whether to grow when nothing is available.
func (p *instancePool[T]) tryTakeIdle() (T, bool) {
	if len(p.idle) == 0 {
		var zero T
		return zero, false
	}
	inst := p.idle[0]
	p.idle = p.idle[1:]
	delete(p.idleSet, inst)
	p.reused++
	return inst, true
}

// returnIdle pushes an instance onto the idle queue tail. It rejects
// instances that are already idle: a duplicate release would put the same
// instance into the queue twice and corrupt the partition invariant.
func (p *instancePool[T]) returnIdle(inst T) error {
	if _, already := p.idleSet[inst]; already {
		return ErrDoubleRelease
	}
	p.idle = append(p.idle, inst)
	p.idleSet[inst] = struct{}{}
	return nil
}

// construct invokes the template. It does not touch the idle/issued
// bookkeeping; the registry updates that.
func (p *instancePool[T]) construct() (T, error) {
	inst, err := p.template()
	if err != nil {
		var zero T
		return zero, err
	}
	p.created++
	return inst, nil
}

// full reports whether the pool has reached its instance cap.
func (p *instancePool[T]) full() bool {
	return p.max > 0 && p.size() >= p.max
}

// size is the total number of instances the pool owns, idle and issued.
func (p *instancePool[T]) size() int {
	return len(p.idle) + len(p.issued)
}
