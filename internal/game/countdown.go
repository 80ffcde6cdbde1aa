package game

import (
	"context"
	"time"
)

// Countdown drives TickRun for one timed run at a fixed real-time cadence.
// Missed ticks are dropped, never batched.
type Countdown struct {
	Engine   *Engine
	Interval time.Duration
	// RunID pins the countdown to one run id. Zero means the current run.
	RunID  uint64
	OnTick func(Snapshot)
}

// Run blocks until ctx is cancelled, the run it was started for is replaced,
// or the countdown reaches zero.
func (c Countdown) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	run := c.RunID
	if run == 0 {
		run = c.Engine.Snapshot().Run
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !c.Engine.TickRun(run) {
				return
			}
			snap := c.Engine.Snapshot()
			if c.OnTick != nil {
				c.OnTick(snap)
			}
			if snap.TimedOver {
				return
			}
		}
	}
}
