package run

import (
	"context"
	"sync"
	"time"
)

// Countdown drives Run.Tick from a ticker until the run reaches a terminal
// outcome, the context is cancelled or Stop is called.
type Countdown struct {
	run    *Run
	onTick func(Outcome)

	done     chan struct{}
	doneOnce sync.Once
	finished chan struct{}
}

// StartCountdown launches the tick loop. onTick, if non-nil, is called after
// every tick from the countdown goroutine.
func StartCountdown(ctx context.Context, r *Run, onTick func(Outcome)) *Countdown {
	c := &Countdown{
		run:      r,
		onTick:   onTick,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go c.loop(ctx)
	return c
}

func (c *Countdown) loop(ctx context.Context) {
	defer close(c.finished)

	interval := c.run.Timing().Tick
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			outcome := c.run.Tick(elapsed)
			if c.onTick != nil {
				c.onTick(outcome)
			}
			if outcome.Terminal() {
				return
			}
		case <-ctx.Done():
			return
		case <-c.done:
			return
		}
	}
}

// Stop cancels the countdown and waits for the goroutine to exit. Safe to
// call multiple times, but not from onTick.
func (c *Countdown) Stop() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
	<-c.finished
}

// Done returns a channel closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.finished
}
