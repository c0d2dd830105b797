package state_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/state"
)

func TestNewFileStore(t *testing.T) {
	t.Run("ValidDir", func(t *testing.T) {
		store, err := state.NewFileStore(t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("MissingDirIsCreated", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "state")
		store, err := state.NewFileStore(dir)
		require.NoError(t, err)
		assert.NotNil(t, store)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("EmptyDir", func(t *testing.T) {
		_, err := state.NewFileStore("  ")
		assert.Error(t, err)
	})

	t.Run("DirIsAFile", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
		_, err := state.NewFileStore(f)
		assert.Error(t, err)
	})

	t.Run("DirNotWritable", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0o500))
		t.Cleanup(func() {
			_ = os.Chmod(dir, 0o700)
		})
		_, err := state.NewFileStore(dir)
		assert.Error(t, err)
	})
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := state.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 999123))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, item.ID(999123), got)

	// Overwrite advances the checkpoint.
	require.NoError(t, store.Save(ctx, 999124))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, item.ID(999124), got)
}

func TestFileStoreFirstRun(t *testing.T) {
	t.Parallel()

	store, err := state.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestFileStoreCorruptCheckpoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := state.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not-a-number\n"), 0o600))

	_, err = store.Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, state.ErrNotFound)
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := state.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("  4321 \n"), 0o600))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, item.ID(4321), got)
}
