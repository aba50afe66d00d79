// Package retry layers a reliability policy over the one-shot open attempt.
// The core requester never retries (a failed window stays closed until the
// next background cycle); hosts that cannot afford to lose open events wrap
// the requester in a ReliableOpener instead of forking the core logic.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goliatone/go-attribution/pkg/attribution"
	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
)

// Opener is the requester slice the decorator drives. MarkBackground is
// needed because a failed attempt closes the window; the decorator reopens
// it before each retry.
type Opener interface {
	Open(ctx context.Context) (attribution.ReferringParams, error)
	MarkBackground()
}

// Option tweaks the decorator.
type Option func(*ReliableOpener)

// WithMaxRetries caps retry attempts (not counting the initial one).
func WithMaxRetries(n uint64) Option {
	return func(r *ReliableOpener) {
		r.maxRetries = n
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(r *ReliableOpener) {
		if d > 0 {
			r.initialInterval = d
		}
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *ReliableOpener) {
		if l != nil {
			r.logger = l
		}
	}
}

// ReliableOpener retries transient failures (transport errors, non-2xx
// statuses) with exponential backoff. Encode and decode failures are
// permanent: retrying cannot fix a malformed payload or response.
type ReliableOpener struct {
	opener          Opener
	maxRetries      uint64
	initialInterval time.Duration
	logger          logger.Logger
}

// New wraps the opener with the default policy (3 retries, 100ms initial
// backoff).
func New(opener Opener, opts ...Option) *ReliableOpener {
	r := &ReliableOpener{
		opener:          opener,
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		logger:          &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Open attempts the gated open call, reopening the window and backing off
// between transient failures. Returns the first permanent error, or the last
// transient one when the budget is exhausted.
func (r *ReliableOpener) Open(ctx context.Context) (attribution.ReferringParams, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval

	var params attribution.ReferringParams
	attempts := 0
	operation := func() error {
		if attempts > 0 {
			// A failed attempt leaves the window closed; reopen it.
			r.opener.MarkBackground()
		}
		attempts++

		got, err := r.opener.Open(ctx)
		if err == nil {
			params = got
			return nil
		}
		if retryable(err) {
			r.logger.Warn("open attempt failed, will retry",
				logger.F("attempt", attempts),
				logger.F("error", err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return params, nil
}

func retryable(err error) bool {
	return errors.Is(err, attribution.ErrTransport) || errors.Is(err, attribution.ErrStatus)
}
