// Package probe turns noisy single-page fetches into existence signals.
package probe

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/frontierlabs/itemwatch/internal/classify"
	"github.com/frontierlabs/itemwatch/internal/clock"
	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/metrics"
)

// Fetcher retrieves the raw page body for one item ID.
type Fetcher interface {
	FetchItem(ctx context.Context, id item.ID) ([]byte, error)
}

// Classifier maps fetched markup to an existence signal.
type Classifier interface {
	Classify(body []byte) classify.Classification
}

// Throttle spaces out network requests. *rate.Limiter satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewThrottle builds the shared probe limiter: one request per delay, no
// bursting. Every probe in the process waits on the same limiter, so the
// aggregate request rate stays bounded no matter which algorithm is driving.
func NewThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// RetryPolicy bounds attempts per probe. The inter-attempt spacing comes from
// the shared Throttle, which keeps the policy independent of any particular
// sleep primitive.
type RetryPolicy struct {
	MaxAttempts int
}

// Prober fetches and classifies one ID, retrying Inconclusive outcomes up to
// the policy's attempt budget. Terminal outcomes short-circuit; transport
// failures are absorbed (reduced to an empty body) and never escape.
type Prober struct {
	fetcher    Fetcher
	classifier Classifier
	throttle   Throttle
	policy     RetryPolicy
	clk        clock.Clock
	logger     *zap.Logger
	probeLog   bool
}

// Option tweaks optional Prober behavior.
type Option func(*Prober)

// WithProbeLog enables a debug line per probe attempt.
func WithProbeLog(enabled bool) Option {
	return func(p *Prober) { p.probeLog = enabled }
}

// WithClock overrides the clock used for latency measurement.
func WithClock(clk clock.Clock) Option {
	return func(p *Prober) { p.clk = clk }
}

// NewProber constructs a Prober.
func NewProber(
	fetcher Fetcher,
	classifier Classifier,
	throttle Throttle,
	policy RetryPolicy,
	logger *zap.Logger,
	opts ...Option,
) *Prober {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Prober{
		fetcher:    fetcher,
		classifier: classifier,
		throttle:   throttle,
		policy:     policy,
		clk:        systemClock{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe classifies one ID. It returns Inconclusive when the attempt budget is
// exhausted or the context finishes first.
func (p *Prober) Probe(ctx context.Context, id item.ID) classify.Classification {
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if err := p.throttle.Wait(ctx); err != nil {
			return classify.Inconclusive
		}

		start := p.clk.Now()
		body, err := p.fetcher.FetchItem(ctx, id)
		if err != nil {
			// Failed fetches classify as an empty body: Inconclusive.
			body = nil
		}
		result := p.classifier.Classify(body)
		metrics.ObserveProbe(string(result), p.clk.Now().Sub(start))

		if p.probeLog {
			p.logger.Debug("probe attempt",
				zap.Stringer("item_id", id),
				zap.Int("attempt", attempt),
				zap.String("outcome", string(result)),
				zap.Error(err),
			)
		}

		if result != classify.Inconclusive {
			return result
		}
	}
	return classify.Inconclusive
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
