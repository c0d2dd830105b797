package frontier_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/frontierlabs/itemwatch/internal/frontier"
	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/state"
)

// memStore is an in-memory checkpoint store that records every save.
type memStore struct {
	mu      sync.Mutex
	id      item.ID
	set     bool
	loadErr error
	saveErr error
	saves   []item.ID
	loads   int
}

func (s *memStore) Load(context.Context) (item.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	if !s.set {
		return 0, state.ErrNotFound
	}
	return s.id, nil
}

func (s *memStore) Save(_ context.Context, id item.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.id, s.set = id, true
	s.saves = append(s.saves, id)
	return nil
}

type recordingNotifier struct {
	ids []item.ID
}

func (n *recordingNotifier) Notify(id item.ID) {
	n.ids = append(n.ids, id)
}

// cancelSleeper cancels the run context instead of sleeping, so idle loops
// terminate deterministically.
type cancelSleeper struct {
	cancel context.CancelFunc
	pauses int
}

func (s *cancelSleeper) Pause(context.Context, time.Duration) {
	s.pauses++
	s.cancel()
}

func newTestWatcher(
	t *testing.T,
	oracle frontier.Oracle,
	store state.Store,
	notifier frontier.Notifier,
	sleeper *cancelSleeper,
	cfg frontier.Config,
) *frontier.Watcher {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return frontier.NewWatcher(
		oracle,
		frontier.NewLocator(oracle, 4, logger),
		frontier.NewAdvancer(oracle, 0, 4, logger),
		notifier,
		store,
		sleeper,
		cfg,
		logger,
	)
}

// TestWatcherCatchesUpToTarget resumes from a persisted frontier of 100 while
// 101..104 already exist: one catch-up pass confirms each in order, persists
// as it goes, and the loop exits cleanly at the target.
func TestWatcherCatchesUpToTarget(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &fakeOracle{upTo: 104}
	store := &memStore{id: 100, set: true}
	notifier := &recordingNotifier{}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, oracle, store, notifier, sleeper, frontier.Config{
		StartID: 1,
		StopAt:  104,
	})

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, []item.ID{101, 102, 103, 104}, notifier.ids)
	assert.Equal(t, item.ID(104), store.id)
	assert.Equal(t, item.ID(104), w.Frontier())
	assert.Zero(t, sleeper.pauses)
}

func TestWatcherIdlesUntilCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &fakeOracle{upTo: 100}
	store := &memStore{id: 100, set: true}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, oracle, store, &recordingNotifier{}, sleeper, frontier.Config{
		StartID:  1,
		Interval: time.Minute,
	})

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sleeper.pauses)
	assert.Equal(t, item.ID(100), w.Frontier())
}

// TestWatcherColdBootRediscovers has no checkpoint and a stale StartID, so
// boot falls back to seeded frontier discovery.
func TestWatcherColdBootRediscovers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &fakeOracle{upTo: 104}
	store := &memStore{}
	notifier := &recordingNotifier{}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, oracle, store, notifier, sleeper, frontier.Config{
		StartID: 500, // beyond the live space, forces rediscovery
		SeedID:  999,
		StopAt:  104,
	})

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, item.ID(104), w.Frontier())
	assert.Equal(t, item.ID(104), store.id)
	assert.Empty(t, notifier.ids) // boot commits without announcing
}

func TestWatcherForceReseedSkipsCheckpoint(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &fakeOracle{upTo: 104}
	store := &memStore{loadErr: errors.New("checkpoint backend down")}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, oracle, store, &recordingNotifier{}, sleeper, frontier.Config{
		StartID:     104,
		StopAt:      104,
		ForceReseed: true,
	})

	require.NoError(t, w.Run(ctx))
	assert.Zero(t, store.loads)
	assert.Equal(t, item.ID(104), w.Frontier())
}

func TestWatcherLoadErrorIsFatal(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &memStore{loadErr: errors.New("checkpoint backend down")}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, &fakeOracle{upTo: 104}, store, &recordingNotifier{}, sleeper, frontier.Config{StartID: 100})

	err := w.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load checkpoint")
}

func TestWatcherSaveErrorIsFatal(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &memStore{saveErr: errors.New("disk full")}
	sleeper := &cancelSleeper{cancel: cancel}
	w := newTestWatcher(t, &fakeOracle{upTo: 104}, store, &recordingNotifier{}, sleeper, frontier.Config{StartID: 100})

	err := w.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist frontier")
}
