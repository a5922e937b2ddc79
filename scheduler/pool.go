package scheduler

// This file contains the process-slot pool: the single shared mutable
// counter of one run. All admission and release goes through it.

import "sync"

// Pool tracks the fixed process-slot capacity of one run. Admission
// decrements the available count, completion restores it.
type Pool struct {
	mu        sync.Mutex
	capacity  int
	available int
	running   int
}

// NewPool creates a pool with the configured total capacity.
func NewPool(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{capacity: capacity, available: capacity}
}

// TryAcquire admits a test of the given weight if it fits the currently
// available capacity. A weight exceeding the configured total is admitted
// only when nothing else is running; it borrows the whole pool (available
// goes negative) so nothing else can be admitted until it completes. This
// guarantees forward progress for a single heavy test instead of deadlock.
func (p *Pool) TryAcquire(weight int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if weight <= p.available || (weight > p.capacity && p.running == 0) {
		p.available -= weight
		p.running++
		return true
	}
	return false
}

// Release returns a completed test's weight to the pool.
func (p *Pool) Release(weight int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available += weight
	p.running--
}

// Capacity returns the configured total.
func (p *Pool) Capacity() int {
	return p.capacity
}

// InUse returns the number of slots currently held by running tests.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity - p.available
}

// Running returns the number of currently running tests.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
