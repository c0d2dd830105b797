package probe

import (
	"context"

	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/classify"
	"github.com/frontierlabs/itemwatch/internal/item"
)

// prober is the slice of Prober the oracle needs.
type prober interface {
	Probe(ctx context.Context, id item.ID) classify.Classification
}

// Oracle converts the three-valued probe signal into a boolean with one
// extra confirmation round. The bias is deliberately toward false negatives:
// an ID that truly exists but is unreachable twice in a row is reported
// absent, which callers recover from on a later poll. The opposite bias
// would permanently skip real items.
type Oracle struct {
	prober prober
	logger *zap.Logger
}

// NewOracle constructs an Oracle over a Prober.
func NewOracle(p prober, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{prober: p, logger: logger}
}

// Exists reports whether id exists. A first-round Exists or Missing is
// authoritative. Inconclusive gets one more spaced probe; only a clean
// Exists on that second round counts as present.
func (o *Oracle) Exists(ctx context.Context, id item.ID) bool {
	switch o.prober.Probe(ctx, id) {
	case classify.Exists:
		return true
	case classify.Missing:
		return false
	}

	second := o.prober.Probe(ctx, id)
	if second == classify.Inconclusive {
		o.logger.Debug("probe stayed inconclusive, treating as absent",
			zap.Stringer("item_id", id))
	}
	return second == classify.Exists
}
