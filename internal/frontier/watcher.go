package frontier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/clock"
	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/metrics"
	"github.com/frontierlabs/itemwatch/internal/state"
)

// Config controls watch loop behavior.
type Config struct {
	// StartID is the boot value when no checkpoint is persisted.
	StartID item.ID
	// SeedID seeds cold-start discovery when the checkpoint is stale/absent.
	SeedID item.ID
	// StopAt terminates the loop once the frontier reaches it; 0 runs forever.
	StopAt item.ID
	// Interval is the idle delay between polls of last+1.
	Interval time.Duration
	// ForceReseed skips checkpoint loading at boot.
	ForceReseed bool
	// PollLog emits a debug line on every idle poll.
	PollLog bool
}

// Watcher is the steady-state driver. It owns the frontier: only the watcher
// mutates it, and only after a positive oracle confirmation, so the value is
// monotonically non-decreasing for the life of the loop.
type Watcher struct {
	oracle   Oracle
	locator  *Locator
	advancer *Advancer
	notifier Notifier
	store    state.Store
	sleeper  clock.Sleeper
	cfg      Config
	logger   *zap.Logger

	frontier atomic.Uint64
}

// NewWatcher constructs a Watcher.
func NewWatcher(
	oracle Oracle,
	locator *Locator,
	advancer *Advancer,
	notifier Notifier,
	store state.Store,
	sleeper clock.Sleeper,
	cfg Config,
	logger *zap.Logger,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		oracle:   oracle,
		locator:  locator,
		advancer: advancer,
		notifier: notifier,
		store:    store,
		sleeper:  sleeper,
		cfg:      cfg,
		logger:   logger,
	}
}

// Frontier returns the last committed frontier. Safe for concurrent readers
// (the status API polls it while the loop runs).
func (w *Watcher) Frontier() item.ID {
	return item.ID(w.frontier.Load())
}

// Run boots the frontier and then watches for new items until the target is
// reached or the context finishes.
func (w *Watcher) Run(ctx context.Context) error {
	last, err := w.boot(ctx)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.cfg.StopAt > 0 && last >= w.cfg.StopAt {
			w.logger.Info("target reached, stopping",
				zap.Stringer("frontier", last),
				zap.Stringer("target", w.cfg.StopAt),
			)
			return nil
		}

		if !w.oracle.Exists(ctx, last+1) {
			if w.cfg.PollLog {
				w.logger.Debug("next item not yet published",
					zap.Stringer("next", last+1))
			}
			w.sleeper.Pause(ctx, w.cfg.Interval)
			continue
		}

		last, err = w.catchUp(ctx, last)
		if err != nil {
			return err
		}
	}
}

// catchUp drains the contiguous run of newly existing IDs starting at
// last+1, which the caller has already confirmed. Each advance is persisted
// before it is announced, so a crash never notifies about an uncommitted
// frontier.
func (w *Watcher) catchUp(ctx context.Context, last item.ID) (item.ID, error) {
	confirmed := 0
	for {
		last++
		if err := w.commit(ctx, last); err != nil {
			return last, err
		}
		w.notifier.Notify(last)
		confirmed++

		if ctx.Err() != nil {
			break
		}
		if !w.oracle.Exists(ctx, last+1) {
			break
		}
	}
	metrics.ObserveCatchup(confirmed)
	return last, nil
}

// boot recovers the initial frontier: warm path (checkpoint confirmed, scan
// the advance window) or cold path (rediscover from the seed). The result is
// committed before the loop starts.
func (w *Watcher) boot(ctx context.Context) (item.ID, error) {
	start := w.cfg.StartID
	persisted := false
	if w.cfg.ForceReseed {
		w.logger.Info("forced reseed, ignoring persisted checkpoint")
	} else {
		id, err := w.store.Load(ctx)
		switch {
		case err == nil:
			start, persisted = id, true
		case errors.Is(err, state.ErrNotFound):
			w.logger.Info("no checkpoint, using configured start",
				zap.Stringer("start_id", start))
		default:
			return 0, fmt.Errorf("load checkpoint: %w", err)
		}
	}

	var last item.ID
	if w.oracle.Exists(ctx, start) {
		w.logger.Info("boot value confirmed, scanning advance window",
			zap.Stringer("base", start),
			zap.Bool("persisted", persisted),
		)
		last = w.advancer.Advance(ctx, start)
	} else {
		w.logger.Info("boot value stale or absent, rediscovering frontier",
			zap.Stringer("boot_value", start),
			zap.Stringer("seed", w.cfg.SeedID),
		)
		last = w.locator.Locate(ctx, w.cfg.SeedID)
		if last == 0 {
			w.logger.Warn("no frontier found, watching from zero")
		}
	}

	if err := w.commit(ctx, last); err != nil {
		return 0, err
	}
	w.logger.Info("boot complete", zap.Stringer("frontier", last))
	return last, nil
}

// commit persists the frontier and publishes it to observers. Persistence
// failures are fatal: they mean a misconfigured environment, not noise.
func (w *Watcher) commit(ctx context.Context, id item.ID) error {
	if err := w.store.Save(ctx, id); err != nil {
		return fmt.Errorf("persist frontier %s: %w", id, err)
	}
	w.frontier.Store(uint64(id))
	metrics.SetFrontier(uint64(id))
	return nil
}
