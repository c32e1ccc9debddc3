package main

import (
	"reflect"
	"testing"

	"github.com/gobwas/avl"

	"github.com/gobwas/hostring"
)

func TestReplicaFactors(t *testing.T) {
	for _, test := range []struct {
		name string
		lo   int
		hi   int
		list string
		exp  []int
		err  bool
	}{
		{
			name: "default",
			exp:  []int{hostring.DefaultReplicas},
		},
		{
			name: "range from zero",
			lo:   0,
			hi:   4,
			exp:  []int{1, 2, 3},
		},
		{
			name: "range with list",
			lo:   2,
			hi:   4,
			list: "3, 8,,16",
			exp:  []int{2, 3, 8, 16},
		},
		{
			name: "zero in list",
			list: "0",
			err:  true,
		},
		{
			name: "malformed list",
			list: "1,x",
			err:  true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			tree, err := replicaFactors(test.lo, test.hi, test.list)
			if test.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			var act []int
			tree.InOrder(func(x avl.Item) bool {
				act = append(act, int(x.(factor)))
				return true
			})
			if !reflect.DeepEqual(act, test.exp) {
				t.Fatalf("unexpected factors: %v; want %v", act, test.exp)
			}
		})
	}
}
