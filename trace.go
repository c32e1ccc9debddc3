package hostring

// RingTrace holds optional callbacks invoked while a Ring is being mutated.
// Callbacks are called synchronously by the goroutine mutating the ring and
// must not call back into it.
type RingTrace struct {
	// OnInsert is called for every entry put on the ring.
	OnInsert func(pos uint64, host string)

	// OnRemove is called for every entry deleted from the ring.
	OnRemove func(pos uint64, host string)

	// OnCollision is called when a replica of next lands on a position
	// already owned by prev. The entry of prev is overwritten.
	OnCollision func(pos uint64, prev, next string)
}

// Compose returns a new RingTrace calling callbacks of t first and then
// callbacks of x.
func (t RingTrace) Compose(x RingTrace) RingTrace {
	var ret RingTrace
	ret.OnInsert = composeEntry(t.OnInsert, x.OnInsert)
	ret.OnRemove = composeEntry(t.OnRemove, x.OnRemove)
	switch {
	case t.OnCollision == nil:
		ret.OnCollision = x.OnCollision
	case x.OnCollision == nil:
		ret.OnCollision = t.OnCollision
	default:
		h1, h2 := t.OnCollision, x.OnCollision
		ret.OnCollision = func(pos uint64, prev, next string) {
			h1(pos, prev, next)
			h2(pos, prev, next)
		}
	}
	return ret
}

func composeEntry(h1, h2 func(uint64, string)) func(uint64, string) {
	if h1 == nil {
		return h2
	}
	if h2 == nil {
		return h1
	}
	return func(pos uint64, host string) {
		h1(pos, host)
		h2(pos, host)
	}
}

func (t RingTrace) onInsert(pos uint64, host string) {
	if fn := t.OnInsert; fn != nil {
		fn(pos, host)
	}
}

func (t RingTrace) onRemove(pos uint64, host string) {
	if fn := t.OnRemove; fn != nil {
		fn(pos, host)
	}
}

func (t RingTrace) onCollision(pos uint64, prev, next string) {
	if fn := t.OnCollision; fn != nil {
		fn(pos, prev, next)
	}
}
