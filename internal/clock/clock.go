// Package clock declares time primitives the watcher depends on.
package clock

import (
	"context"
	"time"
)

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Sleeper blocks for a duration, waking early if the context finishes.
type Sleeper interface {
	Pause(ctx context.Context, delay time.Duration)
}
