package hostring

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
)

type digestArgs struct {
	item   string
	n      int
	suffix [1]int
}

func (d digestArgs) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%#q", d.item)
	if d.n > 0 {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(d.suffix[0]))
		sb.WriteByte(']')
	}
	return sb.String()
}

// digestCall describes a digest of a key (no suffix) or of a host replica
// (one suffix int holding replica index).
func digestCall(s string, suffix ...int) digestArgs {
	args := digestArgs{item: s}
	if len(suffix) > 1 {
		panic(fmt.Sprintf(
			"digest hook: too many suffix ints for %#q: %v",
			s, suffix,
		))
	}
	args.n = copy(args.suffix[:], suffix)
	return args
}

func fixedDigest(t testing.TB, values map[digestArgs]uint64) func() hash.Hash64 {
	return func() hash.Hash64 {
		return &hash64{
			t:      t,
			values: values,
		}
	}
}

type hash64 struct {
	t      testing.TB
	values map[digestArgs]uint64
	buf    bytes.Buffer
}

func (h *hash64) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *hash64) Sum(b []byte) []byte {
	panic("hostring: hash Sum() must not be called")
}

func (h *hash64) Reset() {
	h.buf.Reset()
}

func (h *hash64) Size() int {
	return 8
}

func (h *hash64) BlockSize() int {
	return 1
}

func (h *hash64) Sum64() uint64 {
	item, suff := splitSuffix(h.buf.Bytes())
	call := digestCall(string(item), suff...)
	v, has := h.values[call]
	if has {
		h.t.Logf("using digest value for call %s: %d", call, v)
		return v
	}
	return xxhash.Sum64(h.buf.Bytes())
}

func splitSuffix(bts []byte) (_ []byte, xs []int) {
	i := bytes.Index(bts, magic)
	if i == -1 {
		return bts, nil
	}
	ret := bts[:i]
	suf := bts[i+suffixSize:]
	if len(suf) != suffixSize {
		panic(fmt.Sprintf(
			"unexpected size of hash suffix: %d (%#q)",
			len(suf), bts,
		))
	}
	return ret, []int{int(binary.LittleEndian.Uint64(suf))}
}
