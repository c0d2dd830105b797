// Package frontier tracks the highest existing item ID against a binary
// existence oracle: cold-start discovery, warm-start confirmation, and the
// steady-state watch loop.
package frontier

import (
	"context"

	"github.com/frontierlabs/itemwatch/internal/item"
)

// Oracle is the sole existence predicate used by every algorithm in this
// package. It already encapsulates retries, throttling, and the documented
// false-negative bias.
type Oracle interface {
	Exists(ctx context.Context, id item.ID) bool
}

// Notifier is invoked once per newly confirmed item during catch-up.
type Notifier interface {
	Notify(id item.ID)
}
