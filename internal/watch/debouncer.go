package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into a single signal emitted after a
// quiet period. Every Trigger restarts the period.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  []string
	output   chan []string
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		output:   make(chan []string, 1),
	}
}

// Output receives the names collected during each burst.
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Trigger records name and restarts the quiet period.
func (d *Debouncer) Trigger(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = appendUnique(d.pending, name)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Stop cancels a pending flush. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}
	batch := d.pending
	d.pending = nil

	// A batch still waiting to be consumed absorbs this one.
	select {
	case d.output <- batch:
	default:
		select {
		case prev := <-d.output:
			for _, name := range batch {
				prev = appendUnique(prev, name)
			}
			d.output <- prev
		default:
			d.output <- batch
		}
	}
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
