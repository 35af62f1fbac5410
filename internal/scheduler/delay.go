package scheduler

import (
	"context"
	"time"
)

// DelayPolicy spaces out consecutive gateway calls inside a batch. The flight
// provider rate-limits aggressively, so batches run sequentially with a pause
// between items rather than in parallel.
type DelayPolicy interface {
	Wait(ctx context.Context)
}

// FixedDelay pauses a constant interval between items.
type FixedDelay struct {
	Interval time.Duration
}

func (d FixedDelay) Wait(ctx context.Context) {
	if d.Interval <= 0 {
		return
	}
	t := time.NewTimer(d.Interval)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// NoDelay skips the pause entirely. Used by tests.
type NoDelay struct{}

func (NoDelay) Wait(context.Context) {}

// DefaultDelay is the production inter-item pause.
var DefaultDelay = FixedDelay{Interval: time.Second}
