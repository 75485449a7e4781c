package watcher

import (
	"context"
	"sync"
	"time"
)

// debouncer coalesces bursts of change events. The first event of a burst
// opens a fixed window; everything arriving before it elapses joins the same
// batch. The window is not extended by later events, so a steady stream of
// changes still produces regular batches instead of starving the consumer.
type debouncer struct {
	window  time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.buffer(event)
		}
	}
}

func (d *debouncer) add(event ChangeEvent) {
	select {
	case d.events <- event:
	default:
		// Channel full; the cache re-reads everything each cycle anyway,
		// so a dropped event at worst delays one recompile.
	}
}

func (d *debouncer) buffer(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	// First event of a burst opens the window; later ones only join it.
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.flush)
	}
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.timer = nil
	if len(d.pending) == 0 {
		return
	}

	select {
	case d.output <- d.pending:
		d.pending = nil
	default:
		// Consumer has not drained the previous batch yet. Keep buffering
		// and retry after another window; a relevant event is never lost.
		d.timer = time.AfterFunc(d.window, d.flush)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
