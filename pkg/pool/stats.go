package pool

// PoolStats is a point-in-time snapshot of one pool's occupancy and reuse
// counters.
type PoolStats struct {
	// Idle is the current idle queue depth.
	Idle int `json:"idle"`
	// Issued is the number of instances currently lent to callers.
	Issued int `json:"issued"`
	// Created is the total number of instances ever constructed, including
	// pre-population and growth.
	Created int64 `json:"total_created"`
	// Reused is the total number of acquires served from the idle queue.
	Reused int64 `json:"total_reused"`
	// ReuseRate is Reused / (Reused + Created) as a percentage.
	ReuseRate float64 `json:"reuse_rate"`
}

// RegistryStats aggregates the snapshots of every registered pool.
type RegistryStats struct {
	Pools        map[ID]PoolStats `json:"pools"`
	TotalIdle    int              `json:"total_idle"`
	TotalIssued  int              `json:"total_issued"`
	TotalCreated int64            `json:"total_created"`
	TotalReused  int64            `json:"total_reused"`
}

func snapshotPool[T comparable](p *instancePool[T]) PoolStats {
	ps := PoolStats{
		Idle:    len(p.idle),
		Issued:  len(p.issued),
		Created: p.created,
		Reused:  p.reused,
	}
	if total := ps.Created + ps.Reused; total > 0 {
		ps.ReuseRate = float64(ps.Reused) / float64(total) * 100
	}
	return ps
}
