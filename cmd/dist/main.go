package main

import (
	"flag"
	"fmt"
	"hash"
	"log"
	"math"
	"math/rand"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gobwas/avl"
	"github.com/spaolacci/murmur3"

	"github.com/gobwas/hostring"
)

func main() {
	var (
		p        int    // Number of goroutines.
		n        int    // Number of keys.
		s        int    // Number of servers on the ring.
		m        uint64 // Ring modulus.
		lo       int    // Min replicas.
		hi       int    // Max replicas.
		rs       string // Comma-separated replicas list.
		csv      bool
		hashFunc string // Optional hash function name.

		verbose bool
		silent  bool
	)
	flag.IntVar(&p,
		"parallelism", runtime.NumCPU(),
		"number of concurrent processors",
	)
	flag.IntVar(&n,
		"keys", 1e6,
		"number of keys to spread on ring",
	)
	flag.IntVar(&s,
		"servers", 10,
		"number of servers to place on ring",
	)
	flag.Uint64Var(&m,
		"modulus", hostring.DefaultModulus,
		"size of the ring space",
	)
	flag.IntVar(&lo,
		"lo", 1,
		"replicas number to start from",
	)
	flag.IntVar(&hi,
		"hi", 0,
		"replicas number to end at",
	)
	flag.StringVar(&rs,
		"replicas", "",
		"comma-separated list of replicas numbers",
	)
	flag.StringVar(&hashFunc,
		"hash", "",
		"custom hash function to be used (murmur3)",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.BoolVar(&silent,
		"s", false,
		"be silent",
	)
	flag.BoolVar(&csv,
		"csv", true,
		"print csv to standard output",
	)

	flag.Parse()

	logf := func(f string, args ...interface{}) {
		if !verbose {
			return
		}
		log.Printf(f, args...)
	}
	printf := func(f string, args ...interface{}) {
		if silent {
			return
		}
		fmt.Fprintf(os.Stderr, f, args...)
	}

	var newHash func() hash.Hash64
	switch hashFunc {
	case "", "xxhash":
	case "murmur3":
		newHash = murmur3.New64
	default:
		log.Fatalf("unexpected hash function: %q", hashFunc)
	}

	// Prepare servers to be put on ring(s).
	servers := make([]string, s)
	seenSrv := make(map[string]bool)
	for i := 0; i < s; {
		var b [4]byte
		_, err := rand.Read(b[:])
		if err != nil {
			panic(err)
		}
		host := net.IPv4(b[0], b[1], b[2], b[3]).String()
		if seenSrv[host] {
			logf("#%d server duplicated; repeat", i)
			continue
		}
		seenSrv[host] = true
		servers[i] = host
		i++
	}
	logf("%d servers are ready", len(servers))

	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%016x", rand.Int63())
	}
	logf("%d keys are ready", len(keys))

	replicas, err := replicaFactors(lo, hi, rs)
	if err != nil {
		log.Fatal(err)
	}
	logf("%d replicas numbers are ready", replicas.Size())

	mean := float64(n) / float64(s)

	var (
		work    = make(chan int)
		stop    = make(chan struct{})
		done    = make(chan struct{}, p)
		results = make(chan result, 1)
	)
	for i := 0; i < p; i++ {
		go func() {
			defer func() {
				done <- struct{}{}
			}()
			distribution := make(map[string]int, len(servers))
			owners := make([]string, len(keys))
			for {
				var f int
				select {
				case <-stop:
					return
				case f = <-work:
					// Process below.
				}

				r := hostring.NewRing(hostring.Config{
					Modulus:  m,
					Replicas: f,
					Hash:     newHash,
				})

				start := time.Now()
				for _, host := range servers {
					r.Insert(host)
				}
				latency := time.Since(start)

				for i, key := range keys {
					host, ok := r.Lookup(key)
					if !ok {
						panic("empty ring")
					}
					owners[i] = host
					distribution[host]++
				}
				var variance float64
				for host, d := range distribution {
					variance += math.Pow(float64(d)-mean, 2)
					distribution[host] = 0
				}
				// Divide by number of servers as for mean.
				variance /= float64(s)

				// Measure relocation caused by removal of a single server.
				r.Remove(servers[0])
				var moved int
				for i, key := range keys {
					host, _ := r.Lookup(key)
					if host != owners[i] {
						moved++
					}
				}

				results <- result{
					f:       f,
					latency: latency,
					stddev:  math.Sqrt(variance),
					moved:   moved,
				}
			}
		}()
	}

	go func() {
		replicas.InOrder(func(x avl.Item) bool {
			select {
			case <-stop:
				return false
			case work <- int(x.(factor)):
				return true
			}
		})
		close(stop)
		for i := 0; i < p; i++ {
			<-done
		}
		close(results)
	}()

	var t avl.Tree
	for r := range results {
		t, _ = t.Insert(r)
		printf(".")
		if n := t.Size(); n%80 == 0 {
			f := replicas.Size()
			printf(
				"%d/%d(%.1f%%)\n",
				n, f,
				float64(n)/float64(f)*100, // Progress percentage.
			)
		}
	}
	printf("\n")

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	t.InOrder(func(x avl.Item) bool {
		r := x.(result)
		var (
			devPct   = r.stddev / float64(n) * 100
			movedPct = float64(r.moved) / float64(n) * 100
		)
		logf(
			"%04d: stddev=%.2f(%.2f%%) moved=%d(%.2f%%; ideal %.2f%%) latency=%s\n",
			r.f,
			r.stddev, devPct,
			r.moved, movedPct, 100/float64(s),
			r.latency,
		)
		if csv {
			fmt.Fprintf(tw,
				"%d,\t%.4f,\t%.4f,\t%.2f\n",
				r.f, devPct, movedPct,
				r.latency.Seconds()*1000,
			)
		}
		return true
	})
	tw.Flush()

	printf("OK")
}

type result struct {
	f       int
	latency time.Duration
	stddev  float64
	moved   int
}

func (r result) Compare(x avl.Item) int {
	return r.f - x.(result).f
}

// replicaFactors merges replicas range [lo, hi) with comma-separated numbers
// in list. Tree is used to drop duplicates. Zero replicas means
// DefaultReplicas for a ring, so the range starts from 1.
func replicaFactors(lo, hi int, list string) (avl.Tree, error) {
	var replicas avl.Tree
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		r, err := strconv.Atoi(s)
		if err != nil {
			return replicas, fmt.Errorf("malformed replicas number %q: %v", s, err)
		}
		if r < 1 {
			return replicas, fmt.Errorf("replicas number must be positive: %d", r)
		}
		replicas, _ = replicas.Insert(factor(r))
	}
	if lo < 1 {
		lo = 1
	}
	for r := lo; r < hi; r++ {
		replicas, _ = replicas.Insert(factor(r))
	}
	if replicas.Size() == 0 {
		replicas, _ = replicas.Insert(factor(hostring.DefaultReplicas))
	}
	return replicas, nil
}

// factor is a number of replicas.
type factor int

func (f factor) Compare(x avl.Item) int {
	return int(f - x.(factor))
}
