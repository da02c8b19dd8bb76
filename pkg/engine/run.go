package engine

import (
	"context"
	"time"
)

// Loop wires Run to its host.
type Loop struct {
	// Ticks drives rendering, typically a time.Ticker's channel.
	Ticks <-chan time.Time
	// Updates replaces the configuration; the next model uses it. May be nil.
	Updates <-chan Config
	// Publish receives every model.
	Publish func(RenderModel)
	// Observe, if set, is told how long each Tick took.
	Observe func(RenderModel, time.Duration)
}

// Run owns a State for as long as ctx is live, ticking once per value on
// l.Ticks. A config update re-renders at the instant of the latest tick so
// settings changes show up without waiting a full period. If start is not
// zero a first model is rendered for it before any tick arrives.
func (e *Engine) Run(ctx context.Context, start time.Time, cfg Config, l Loop) {
	var st State
	last := start
	tick := func(now time.Time) {
		began := time.Now()
		var m RenderModel
		st, m = e.Tick(st, now, cfg)
		if l.Observe != nil {
			l.Observe(m, time.Since(began))
		}
		l.Publish(m)
	}

	if !start.IsZero() {
		tick(start)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-l.Ticks:
			if !ok {
				return
			}
			last = now
			tick(now)
		case next, ok := <-l.Updates:
			if !ok {
				l.Updates = nil
				continue
			}
			cfg = next
			if !last.IsZero() {
				tick(last)
			}
		}
	}
}
