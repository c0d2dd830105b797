// Package system exercises the real-time clock adapter.
package system

import (
	"context"
	"testing"
	"time"
)

// TestClockNowUTC ensures the clock returns UTC timestamps.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	clk := New()
	if clk == nil {
		t.Fatal("expected clock to be non-nil")
	}

	before := time.Now().UTC().Add(-time.Second)
	got := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
	if got.Before(before) || got.After(after) {
		t.Fatalf("expected %v to be between %v and %v", got, before, after)
	}
}

// TestClockNowMonotonic checks successive timestamps are non-decreasing.
func TestClockNowMonotonic(t *testing.T) {
	t.Parallel()

	clk := New()
	first := clk.Now()
	second := clk.Now()
	if second.Before(first) {
		t.Fatalf("expected second call %v to be >= first %v", second, first)
	}
}

// TestSleeperPauseHonorsDuration verifies the sleeper blocks roughly as asked.
func TestSleeperPauseHonorsDuration(t *testing.T) {
	t.Parallel()

	s := NewSleeper()
	start := time.Now()
	s.Pause(context.Background(), 20*time.Millisecond)
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("pause returned after %v, want >= 15ms", elapsed)
	}
}

// TestSleeperPauseCancellation verifies a canceled context wakes the sleeper.
func TestSleeperPauseCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSleeper()
	start := time.Now()
	s.Pause(ctx, time.Minute)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("pause ignored cancellation, blocked %v", elapsed)
	}
}

// TestSleeperPauseZeroDelay ensures non-positive delays return immediately.
func TestSleeperPauseZeroDelay(t *testing.T) {
	t.Parallel()

	s := NewSleeper()
	s.Pause(context.Background(), 0)
	s.Pause(context.Background(), -time.Second)
}
