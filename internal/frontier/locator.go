package frontier

import (
	"context"

	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// Locator performs cold-start frontier discovery: exponential probing to
// bracket the frontier, then integer bisection to pinpoint it.
type Locator struct {
	oracle    Oracle
	gapBudget int
	logger    *zap.Logger
}

// NewLocator constructs a Locator. gapBudget bounds the run of consecutive
// misses the forward growth phase tolerates before it concludes it has
// passed the frontier.
func NewLocator(oracle Oracle, gapBudget int, logger *zap.Logger) *Locator {
	if gapBudget < 0 {
		gapBudget = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{oracle: oracle, gapBudget: gapBudget, logger: logger}
}

// Locate finds the exact frontier starting from seed. It returns 0 when no
// existing ID can be established at or below the search range — a valid,
// degenerate result, not an error.
func (l *Locator) Locate(ctx context.Context, seed item.ID) item.ID {
	if seed == 0 {
		return 0
	}
	if l.oracle.Exists(ctx, seed) {
		l.logger.Info("seed exists, searching forward", zap.Stringer("seed", seed))
		lo, hi := l.growForward(ctx, seed)
		return l.bisect(ctx, lo, hi)
	}

	l.logger.Info("seed absent, searching backward", zap.Stringer("seed", seed))
	lo, ok := l.backOff(ctx, seed)
	if !ok {
		l.logger.Warn("no existing item found below seed", zap.Stringer("seed", seed))
		return 0
	}
	return l.bisect(ctx, lo, seed)
}

// growForward brackets the frontier from a known-existing lo. The step
// doubles on every success; a miss nudges hi by one instead of growing. The
// miss counter resets on any success, so a narrow true gap followed by more
// existing IDs is crossed — intentionally more permissive than the
// advancer's linear scan.
func (l *Locator) growForward(ctx context.Context, lo item.ID) (item.ID, item.ID) {
	step := item.ID(1)
	hi := lo + step
	misses := 0
	for {
		if ctx.Err() != nil {
			return lo, hi
		}
		if l.oracle.Exists(ctx, hi) {
			lo = hi
			step *= 2
			hi = lo + step
			misses = 0
			continue
		}
		misses++
		if misses > l.gapBudget {
			return lo, hi
		}
		hi++
	}
}

// backOff walks down from an absent seed in doubling steps, floored at 1,
// until it finds an existing ID. ok is false when even ID 1 is absent.
func (l *Locator) backOff(ctx context.Context, seed item.ID) (item.ID, bool) {
	step := item.ID(1)
	for {
		if ctx.Err() != nil {
			return 0, false
		}
		lo := item.ID(1)
		if seed > step {
			lo = seed - step
		}
		if l.oracle.Exists(ctx, lo) {
			return lo, true
		}
		if lo == 1 {
			return 0, false
		}
		step *= 2
	}
}

// bisect narrows [lo, hi] to the exact frontier. Invariant: lo is confirmed
// to exist, hi is confirmed or assumed absent; the loop terminates when they
// are adjacent and lo is the answer.
func (l *Locator) bisect(ctx context.Context, lo, hi item.ID) item.ID {
	for hi-lo > 1 {
		if ctx.Err() != nil {
			return lo
		}
		mid := lo + (hi-lo)/2
		if l.oracle.Exists(ctx, mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	l.logger.Info("frontier located", zap.Stringer("frontier", lo))
	return lo
}
