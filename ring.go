package hostring

import (
	"hash"
	"io"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gobwas/avl"
)

const (
	// DefaultModulus is the size of the ring space used when Config.Modulus
	// is zero.
	DefaultModulus = 1 << 20

	// DefaultReplicas is the number of ring entries per hostname used when
	// Config.Replicas is zero.
	DefaultReplicas = 16
)

// Config holds ring parameters. They are fixed for the lifetime of a Ring.
type Config struct {
	// Modulus is the size M of the ring space [0, M).
	// If Modulus is zero, then the DefaultModulus is used.
	Modulus uint64

	// Replicas is the number of "virtual" entries put on the ring per
	// hostname. The higher this number, the more equal distribution of keys
	// the ring produces and the more time is needed to update the ring.
	// If Replicas is less or equal to zero, then the DefaultReplicas is used.
	Replicas int

	// Hash is an optional function used to build up a new 64-bit hash
	// function for positions calculation. xxhash is used if Hash is nil.
	Hash func() hash.Hash64

	// Trace is an optional set of mutation callbacks.
	Trace RingTrace
}

// Ring is a consistent hashing ring of hostnames.
//
// Ring is not safe for concurrent mutation. A Ring which is no longer mutated
// may be read by any number of goroutines. See Coordinator for concurrent
// access with membership updates.
//
// The zero value for Ring is an empty ring with default parameters ready to
// use.
type Ring struct {
	modulus  uint64
	replicas int
	hash     func() hash.Hash64
	trace    RingTrace

	// hashPool is a pool of reusable hash functions.
	// It is shared between clones and may be nil.
	hashPool *sync.Pool

	// tree holds ring entries ordered by position.
	tree avl.Tree // tree<*entry>
}

// NewRing creates an empty ring with given parameters.
func NewRing(c Config) *Ring {
	r := &Ring{
		modulus:  c.Modulus,
		replicas: c.Replicas,
		hash:     c.Hash,
		trace:    c.Trace,
		hashPool: new(sync.Pool),
	}
	if r.modulus == 0 {
		r.modulus = DefaultModulus
	}
	if r.replicas <= 0 {
		r.replicas = DefaultReplicas
	}
	return r
}

// Modulus returns the size of the ring space.
func (r *Ring) Modulus() uint64 {
	if r.modulus == 0 {
		return DefaultModulus
	}
	return r.modulus
}

// Replicas returns the number of entries put on the ring per hostname.
func (r *Ring) Replicas() int {
	if r.replicas <= 0 {
		return DefaultReplicas
	}
	return r.replicas
}

// Insert puts Replicas entries owned by host on the ring. An entry of another
// host already placed at the same position is overwritten.
//
// Entry positions depend only on host and replica index. Inserting the same
// host again puts it back at the same positions: it is a no-op unless another
// host has overwritten some of them since, in which case those positions are
// taken back. Empty host is ignored.
func (r *Ring) Insert(host string) {
	if host == "" {
		return
	}
	for i, n := 0, r.Replicas(); i < n; i++ {
		e := &entry{
			pos:  r.replicaPosition(host, i),
			host: host,
		}
		if x := r.tree.Search(e); x != nil {
			prev := x.(*entry)
			if prev.host == host {
				// Replicas of the same host collided with each other or host
				// is already on the ring.
				continue
			}
			r.trace.onCollision(e.pos, prev.host, host)
			r.tree, _ = r.tree.Delete(prev)
		}
		r.tree, _ = r.tree.Insert(e)
		r.trace.onInsert(e.pos, host)
	}
}

// Remove deletes every entry owned by host from the ring.
// It is a no-op if host is not on the ring.
func (r *Ring) Remove(host string) {
	for i, n := 0, r.Replicas(); i < n; i++ {
		pos := r.replicaPosition(host, i)
		x := r.tree.Search(search(pos))
		if x == nil {
			continue
		}
		if e := x.(*entry); e.host != host {
			// Position was taken over by another host.
			continue
		}
		r.tree, _ = r.tree.Delete(x)
		r.trace.onRemove(pos, host)
	}
}

// Lookup returns hostname owning the key. That is, the owner of the nearest
// entry clockwise from the key's position.
// It returns false only when ring is empty.
func (r *Ring) Lookup(key string) (host string, ok bool) {
	return r.Locate(r.Position(key))
}

// Locate returns the owner of the first entry at or after position pos,
// wrapping around to the smallest entry position if there are no such
// entries. Position is taken modulo ring size.
// It returns false only when ring is empty.
func (r *Ring) Locate(pos uint64) (host string, ok bool) {
	s := search(pos % r.Modulus())
	x := r.tree.Search(s)
	if x == nil {
		x = r.tree.Successor(s)
	}
	if x == nil {
		x = r.tree.Min()
	}
	if x == nil {
		return "", false
	}
	return x.(*entry).host, true
}

// Position returns position of the key on the ring.
func (r *Ring) Position(key string) uint64 {
	return r.digest(key, nil) % r.Modulus()
}

// Has reports whether host owns at least one entry on the ring.
func (r *Ring) Has(host string) bool {
	for i, n := 0, r.Replicas(); i < n; i++ {
		x := r.tree.Search(search(r.replicaPosition(host, i)))
		if x != nil && x.(*entry).host == host {
			return true
		}
	}
	return false
}

// Len returns the number of entries on the ring.
func (r *Ring) Len() int {
	return r.tree.Size()
}

// Nodes returns sorted list of distinct hostnames on the ring.
func (r *Ring) Nodes() []string {
	seen := make(map[string]bool)
	var nodes []string
	r.tree.InOrder(func(x avl.Item) bool {
		host := x.(*entry).host
		if !seen[host] {
			seen[host] = true
			nodes = append(nodes, host)
		}
		return true
	})
	sort.Strings(nodes)
	return nodes
}

// Walk calls fn for every entry in order of increasing position until fn
// returns false.
func (r *Ring) Walk(fn func(pos uint64, host string) bool) {
	r.tree.InOrder(func(x avl.Item) bool {
		e := x.(*entry)
		return fn(e.pos, e.host)
	})
}

// Clone returns a copy of the ring. Mutations of the copy are not visible to
// r and vice versa.
// Clone is cheap since underlying tree is immutable.
func (r *Ring) Clone() *Ring {
	cp := *r
	return &cp
}

func (r *Ring) replicaPosition(host string, i int) uint64 {
	return r.digest(host, encodeSuffix(i)) % r.Modulus()
}

func (r *Ring) digest(s string, suffix []byte) uint64 {
	h := r.getHash()
	defer r.putHash(h)

	// hash.Hash never returns an error from Write().
	_, _ = io.WriteString(h, s)
	_, _ = h.Write(suffix)

	return h.Sum64()
}

func (r *Ring) getHash() hash.Hash64 {
	if r.hashPool != nil {
		if h, _ := r.hashPool.Get().(hash.Hash64); h != nil {
			return h
		}
	}
	if r.hash != nil {
		return r.hash()
	}
	return xxhash.New()
}

func (r *Ring) putHash(h hash.Hash64) {
	if r.hashPool == nil {
		return
	}
	h.Reset()
	r.hashPool.Put(h)
}
