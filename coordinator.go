package hostring

import "sync"

// Coordinator serializes membership changes of a single Ring and serves
// lookups concurrently with them.
//
// Every lookup observes the ring either fully before or fully after any given
// membership change, and changes become visible in the order they were made.
//
// The zero value for Coordinator serves an empty ring with default parameters.
// Coordinator instances must not be copied.
type Coordinator struct {
	// mu serializes write operations.
	// It is held while the next version of the ring is being prepared.
	mu sync.Mutex

	// ringMu protects the ring pointer.
	// It's write-end is held only while the pointer is being swapped, so
	// readers never wait for a mutation to be computed.
	ringMu sync.RWMutex

	// ring is the latest published version of the ring. Published rings are
	// never mutated.
	// It's protected by c.ringMu.
	ring *Ring
}

// NewCoordinator creates a Coordinator serving a copy of r.
// Later mutations of r are not visible to the Coordinator.
func NewCoordinator(r *Ring) *Coordinator {
	if r == nil {
		r = NewRing(Config{})
	}
	return &Coordinator{
		ring: r.Clone(),
	}
}

// Get returns hostname owning the key.
// It returns false when no hostname is on the ring.
func (c *Coordinator) Get(key string) (host string, ok bool) {
	return c.Snapshot().Lookup(key)
}

// Insert puts host on the ring.
func (c *Coordinator) Insert(host string) {
	c.update(func(r *Ring) {
		r.Insert(host)
	})
}

// Remove deletes host from the ring.
// It is a no-op if host is not on the ring.
func (c *Coordinator) Remove(host string) {
	c.update(func(r *Ring) {
		r.Remove(host)
	})
}

// Nodes returns sorted list of hostnames currently on the ring.
func (c *Coordinator) Nodes() []string {
	return c.Snapshot().Nodes()
}

// Snapshot returns the current version of the ring.
// Returned ring must not be mutated; Clone() it first.
func (c *Coordinator) Snapshot() *Ring {
	c.ringMu.RLock()
	r := c.ring
	c.ringMu.RUnlock()
	if r == nil {
		return new(Ring)
	}
	return r
}

func (c *Coordinator) update(fn func(*Ring)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.Snapshot().Clone()
	fn(next)

	c.ringMu.Lock()
	c.ring = next
	c.ringMu.Unlock()
}
