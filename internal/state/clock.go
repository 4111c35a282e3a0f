package state

import "sync/atomic"

// Clock is a lamport counter ordering history entries, including entries
// loaded from a scene file.
type Clock struct {
	counter atomic.Uint64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Observe moves the clock forward to at least v.
func (c *Clock) Observe(v uint64) {
	for {
		cur := c.counter.Load()
		if v <= cur || c.counter.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Now returns the current value without ticking.
func (c *Clock) Now() uint64 {
	return c.counter.Load()
}
