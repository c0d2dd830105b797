// Package state persists the frontier checkpoint across restarts.
package state

import (
	"context"
	"errors"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// ErrNotFound signals that no checkpoint has been written yet (first run).
var ErrNotFound = errors.New("frontier checkpoint not found")

// Store persists and reloads the single frontier integer. The watcher is the
// only writer; Save happens after every confirmed advance.
type Store interface {
	// Load returns the persisted frontier, or ErrNotFound on first run.
	Load(ctx context.Context) (item.ID, error)
	// Save persists the frontier.
	Save(ctx context.Context, id item.ID) error
}
