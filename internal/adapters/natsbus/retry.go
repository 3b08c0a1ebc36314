package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	maxRequestAttempts = 3
	initialBackoff     = 50 * time.Millisecond
)

type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// requestWithRetry retries transient failures (no responders, per-attempt
// timeouts) with exponential backoff while respecting cancellation of ctx.
// A zero timeout puts no deadline on an attempt beyond ctx's own.
func requestWithRetry(
	ctx context.Context,
	bus requester,
	subject string,
	data []byte,
	timeout time.Duration,
) (*nats.Msg, error) {
	backoff := initialBackoff

	var lastErr error

	for attempt := 1; attempt <= maxRequestAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		msg, err := bus.RequestWithContext(attemptCtx, subject, data)
		cancel()
		if err == nil {
			return msg, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		retry := errors.Is(err, nats.ErrNoResponders) ||
			errors.Is(err, nats.ErrTimeout) ||
			errors.Is(err, context.DeadlineExceeded)

		if !retry || attempt == maxRequestAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, fmt.Errorf("request %s: %w", subject, lastErr)
}
