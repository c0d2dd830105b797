package frontier

import (
	"context"

	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// Advancer performs warm-start confirmation: a bounded linear scan past a
// checkpoint that is already confirmed to exist, reclaiming IDs published
// while the process was down.
type Advancer struct {
	oracle    Oracle
	window    int
	gapBudget int
	logger    *zap.Logger
}

// NewAdvancer constructs an Advancer. window bounds the scan length and
// gapBudget the run of consecutive misses tolerated before the scan stops —
// a longer run is read as a true gap, not as "not yet published".
func NewAdvancer(oracle Oracle, window, gapBudget int, logger *zap.Logger) *Advancer {
	if window < 0 {
		window = 0
	}
	if gapBudget < 0 {
		gapBudget = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advancer{oracle: oracle, window: window, gapBudget: gapBudget, logger: logger}
}

// Advance scans base+1..base+window and returns the highest confirmed
// existing ID, or base itself when nothing past it exists. The walk is
// strictly one ID at a time; a hit resets the miss counter, so narrow gaps
// are crossed, but unlike the locator's growth phase it never leaps, and the
// window bounds the total work. Calling it twice against an unchanged oracle
// returns the same result.
func (a *Advancer) Advance(ctx context.Context, base item.ID) item.ID {
	best := base
	misses := 0
	for i := base + 1; i <= base+item.ID(a.window); i++ {
		if ctx.Err() != nil {
			break
		}
		if a.oracle.Exists(ctx, i) {
			best = i
			misses = 0
			continue
		}
		misses++
		if misses > a.gapBudget {
			break
		}
	}
	if best > base {
		a.logger.Info("window advance reclaimed items",
			zap.Stringer("from", base),
			zap.Stringer("to", best),
		)
	}
	return best
}
