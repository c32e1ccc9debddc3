package hostring

import (
	"encoding/binary"
)

const suffixSize = 8

var magic = (func() []byte {
	p := make([]byte, suffixSize)
	for i := range p {
		p[i] = byte(i)
	}
	return p
})()

// encodeSuffix encodes xs as little-endian 64-bit integers prefixed with the
// magic bytes. Fixed width keeps replica positions the same on 32 and 64-bit
// platforms.
func encodeSuffix(xs ...int) []byte {
	p := make([]byte, suffixSize*(len(xs)+1))
	copy(p, magic)
	for i, x := range xs {
		binary.LittleEndian.PutUint64(p[(i+1)*suffixSize:], uint64(x))
	}
	return p
}
