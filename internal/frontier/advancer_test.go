package frontier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frontierlabs/itemwatch/internal/frontier"
	"github.com/frontierlabs/itemwatch/internal/item"
)

func TestAdvanceReclaimsRecentItems(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 112}
	adv := frontier.NewAdvancer(oracle, 200, 4, nil)
	assert.Equal(t, item.ID(112), adv.Advance(context.Background(), 100))
}

func TestAdvanceNothingBeyondBase(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 100}
	adv := frontier.NewAdvancer(oracle, 200, 4, nil)
	assert.Equal(t, item.ID(100), adv.Advance(context.Background(), 100))
	// Aborts after gapBudget+1 consecutive misses, not the full window.
	assert.Equal(t, 5, oracle.calls)
}

func TestAdvanceCrossesNarrowGap(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 110, gaps: gapRange(103, 106)}
	adv := frontier.NewAdvancer(oracle, 200, 4, nil)
	assert.Equal(t, item.ID(110), adv.Advance(context.Background(), 100))
}

func TestAdvanceStopsAtWideGap(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 110, gaps: gapRange(103, 107)}
	adv := frontier.NewAdvancer(oracle, 200, 4, nil)
	assert.Equal(t, item.ID(102), adv.Advance(context.Background(), 100))
}

// TestAdvanceGapBudgetIsConsecutive pins that the budget counts consecutive
// misses, not cumulative ones: alternating holes never trip it.
func TestAdvanceGapBudgetIsConsecutive(t *testing.T) {
	t.Parallel()

	gaps := make(map[item.ID]bool)
	for i := item.ID(101); i <= 119; i += 2 {
		gaps[i] = true // every odd ID in the window is a hole
	}
	oracle := &fakeOracle{upTo: 120, gaps: gaps}
	adv := frontier.NewAdvancer(oracle, 20, 1, nil)
	assert.Equal(t, item.ID(120), adv.Advance(context.Background(), 100))
}

func TestAdvanceBoundedByWindow(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 10_000}
	adv := frontier.NewAdvancer(oracle, 50, 4, nil)
	assert.Equal(t, item.ID(150), adv.Advance(context.Background(), 100))
}

func TestAdvanceIdempotent(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 110, gaps: gapRange(104, 105)}
	adv := frontier.NewAdvancer(oracle, 200, 4, nil)

	first := adv.Advance(context.Background(), 100)
	second := adv.Advance(context.Background(), 100)
	assert.Equal(t, first, second)
	assert.Equal(t, item.ID(110), first)
}

func TestAdvanceZeroWindowReturnsBase(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{upTo: 200}
	adv := frontier.NewAdvancer(oracle, 0, 4, nil)
	assert.Equal(t, item.ID(100), adv.Advance(context.Background(), 100))
	assert.Zero(t, oracle.calls)
}

func TestAdvanceCanceledContextReturnsBase(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := &fakeOracle{upTo: 200}
	adv := frontier.NewAdvancer(oracle, 50, 4, nil)
	assert.Equal(t, item.ID(100), adv.Advance(ctx, 100))
}
