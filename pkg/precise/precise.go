// Package precise produces a high resolution wall clock independently of the
// solar engine, which only needs to run about once a second.
package precise

import (
	"context"
	"time"
)

// Layout is the clock format of a Snapshot's Text.
const Layout = "15:04:05.000"

// DefaultInterval is fine enough for the millisecond digit to look alive.
const DefaultInterval = 10 * time.Millisecond

// Snapshot is one reading of the clock.
type Snapshot struct {
	Time time.Time
	Text string
}

// At makes the Snapshot for t as seen in zone. A nil zone means UTC.
func At(t time.Time, zone *time.Location) Snapshot {
	if zone == nil {
		zone = time.UTC
	}
	t = t.In(zone)
	return Snapshot{Time: t, Text: t.Format(Layout)}
}

// Run sends a Snapshot to out every interval until ctx is done, then closes
// out. A consumer that falls behind makes Run skip readings rather than queue
// stale ones.
func Run(ctx context.Context, interval time.Duration, zone *time.Location, out chan<- Snapshot) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	run(ctx, ticker.C, zone, out)
}

// run is Run with the ticker factored out.
func run(ctx context.Context, ticks <-chan time.Time, zone *time.Location, out chan<- Snapshot) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticks:
			select {
			case out <- At(t, zone):
			case <-ctx.Done():
				return
			default:
			}
		}
	}
}
