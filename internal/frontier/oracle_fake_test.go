package frontier_test

import (
	"context"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// fakeOracle models a synthetic ID space: every ID in 1..upTo exists except
// the listed gaps. It counts probes so tests can assert on search cost.
type fakeOracle struct {
	upTo  item.ID
	gaps  map[item.ID]bool
	calls int
}

func (o *fakeOracle) Exists(_ context.Context, id item.ID) bool {
	o.calls++
	if id == 0 || id > o.upTo {
		return false
	}
	return !o.gaps[id]
}

func gapRange(lo, hi item.ID) map[item.ID]bool {
	gaps := make(map[item.ID]bool)
	for i := lo; i <= hi; i++ {
		gaps[i] = true
	}
	return gaps
}
