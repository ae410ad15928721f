package watcher

import (
	"context"
	"time"

	"github.com/ritzau/docgraph/pkg/logging"
)

// Debouncer batches rapid change events so consumers react once per burst
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. An event is emitted once the
// input has been quiet for quietPeriod, or maxWait after the first event of
// a batch, whichever comes first.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run owns all debouncer state; timers only signal through their channels.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet      <-chan time.Time
		deadline   <-chan time.Time
		quietTimer *time.Timer
		maxTimer   *time.Timer
		paths      []string
		seen       = make(map[string]bool)
		eventCount int
	)

	stop := func() {
		if quietTimer != nil {
			quietTimer.Stop()
		}
		if maxTimer != nil {
			maxTimer.Stop()
		}
		quiet, deadline = nil, nil
	}

	flush := func() {
		stop()
		if eventCount == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", eventCount, "paths", len(paths))
		d.output <- ChangeEvent{Paths: paths, Timestamp: time.Now()}
		paths = nil
		seen = make(map[string]bool)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			for _, p := range event.Paths {
				if !seen[p] {
					seen[p] = true
					paths = append(paths, p)
				}
			}
			eventCount++

			if quietTimer != nil {
				quietTimer.Stop()
			}
			quietTimer = time.NewTimer(d.quietPeriod)
			quiet = quietTimer.C

			if deadline == nil {
				maxTimer = time.NewTimer(d.maxWait)
				deadline = maxTimer.C
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events. It is closed when the
// input closes or the context ends.
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
