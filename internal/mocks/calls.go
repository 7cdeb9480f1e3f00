package mocks

import "sync"

// Calls counts invocations per method name. It is safe for concurrent use.
type Calls struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *Calls) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[method]++
}

// Count returns how often method was called.
func (c *Calls) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// Reset clears all counts.
func (c *Calls) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = nil
}
