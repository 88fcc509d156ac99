// Package pool provides a free-list allocator used to recycle sample objects
// between captures.
package pool

type (
	// Stats counts pool activity since creation.
	Stats struct {
		// New is the number of instances built by the factory, pre-warmed
		// ones included.
		New uint64
		// Hits is the number of Get calls served from the free list.
		Hits uint64
		// Misses is the number of Get calls that had to call the factory.
		Misses uint64
		// Frees is the number of Put calls.
		Frees uint64
		// Live is the number of instances handed out and not yet returned.
		Live int
		// Idle is the number of instances waiting in the free list.
		Idle int
	}

	// Pool is a free list of T. The free list grows as needed, the pre-warm
	// count only decides how many instances are built up front.
	//
	// A Pool is not safe for concurrent use.
	Pool[T any] struct {
		factory func() T
		reset   func(T)
		free    []T
		stats   Stats
	}
)

// New returns a pool building instances with factory and cleaning them with
// reset when they are returned. reset may be nil if callers clear instances
// themselves before calling Put.
func New[T any](factory func() T, reset func(T), prewarm int) *Pool[T] {
	if prewarm < 0 {
		prewarm = 0
	}
	p := &Pool[T]{
		factory: factory,
		reset:   reset,
		free:    make([]T, 0, prewarm),
	}
	for i := 0; i < prewarm; i++ {
		p.free = append(p.free, factory())
	}
	p.stats.New = uint64(prewarm)
	return p
}

// Get returns an instance from the free list, or a new one if it is empty.
func (p *Pool[T]) Get() T {
	p.stats.Live++
	n := len(p.free)
	if n == 0 {
		p.stats.Misses++
		p.stats.New++
		return p.factory()
	}
	p.stats.Hits++
	v := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return v
}

// Put resets v and stores it for reuse. The caller must not use v afterwards.
//
// Returning more instances than were taken is a programming error and panics.
// Other misuse, such as returning the same instance twice while another one
// is still out, is not detected.
func (p *Pool[T]) Put(v T) {
	if p.stats.Live == 0 {
		panic("pool: put without matching get")
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.stats.Live--
	p.stats.Frees++
	p.free = append(p.free, v)
}

// Live returns the number of instances currently handed out.
func (p *Pool[T]) Live() int {
	return p.stats.Live
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	s := p.stats
	s.Idle = len(p.free)
	return s
}
