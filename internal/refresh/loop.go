package refresh

import (
	"context"
	"errors"
	"time"
)

// Start runs the background refresh loop until ctx is cancelled.
//
// When bootstrap is set it first retries Bootstrap every retry interval
// until one succeeds. When interval is positive it then calls Trigger on
// every tick; ticks that land in a cooldown or overlap a manual refresh are
// rejected like any other trigger.
func (c *Coordinator) Start(ctx context.Context, bootstrap bool, retry, interval time.Duration) {
	if bootstrap && !c.bootstrapUntilLoaded(ctx, retry) {
		return
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("refresh loop stopped", "component", "refresh")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Coordinator) tick(ctx context.Context) {
	_, err := c.Trigger(ctx)
	var rej *RejectedError
	if errors.As(err, &rej) {
		c.logger.Debug("scheduled refresh skipped",
			"component", "refresh",
			"reason", string(rej.Reason),
			"retry_after_ms", rej.RetryAfter.Milliseconds(),
		)
	}
}

// bootstrapUntilLoaded returns false if ctx is cancelled first.
func (c *Coordinator) bootstrapUntilLoaded(ctx context.Context, retry time.Duration) bool {
	if retry <= 0 {
		retry = 30 * time.Second
	}
	for {
		_, err := c.Bootstrap(ctx)
		if err == nil {
			return true
		}

		// A manual refresh got there first. It only counts once it has
		// installed a snapshot; if it fails the loop keeps going.
		var rej *RejectedError
		if errors.As(err, &rej) {
			if c.store.Ready() {
				return true
			}
			c.logger.Info("initial schema load deferred to running refresh",
				"component", "refresh",
				"retry_in", retry.String(),
			)
		} else {
			c.logger.Warn("initial schema load failed, retrying",
				"component", "refresh",
				"retry_in", retry.String(),
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(retry):
		}
	}
}
