package utils

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by Poller.Until when the condition never held
// within the configured bound.
var ErrWaitTimeout = errors.New("wait: condition not met before timeout")

// Poller is the single bounded wait used wherever the crawler has to wait
// for a page to reach some state. It polls a condition at a fixed interval
// until it holds, the condition fails, or the timeout elapses.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Until blocks until cond returns true. An error from cond is returned
// immediately; it is never retried. A cond that fails because the poll
// deadline cut it short counts as a timeout.
func (p Poller) Until(ctx context.Context, cond func(ctx context.Context) (bool, error)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrWaitTimeout
			}
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrWaitTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
