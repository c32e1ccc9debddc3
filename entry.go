package hostring

import "github.com/gobwas/avl"

// entry is a single position on the ring owned by host.
type entry struct {
	pos  uint64
	host string
}

func (e *entry) Compare(x avl.Item) int {
	return compare(e.pos, position(x))
}

// search is a ring position used to query the tree.
type search uint64

func (s search) Compare(x avl.Item) int {
	return compare(uint64(s), position(x))
}

func position(x avl.Item) uint64 {
	switch v := x.(type) {
	case *entry:
		return v.pos
	case search:
		return uint64(v)
	}
	panic("hostring: internal error: unexpected tree item")
}

func compare(x0, x1 uint64) int {
	if x0 < x1 {
		return -1
	}
	if x0 > x1 {
		return 1
	}
	return 0
}
