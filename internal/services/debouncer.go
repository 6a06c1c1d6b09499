package services

import (
	"sync"
	"time"
)

// Debouncer collapses calls triggered under the same key within a window into one
// call of the most recently triggered function.
type Debouncer struct {
	window time.Duration

	mu       sync.Mutex
	gen      map[string]uint64
	timers   map[string]*time.Timer
	pending  map[string]func()
	inflight sync.WaitGroup
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		gen:     make(map[string]uint64),
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]func()),
	}
}

// Trigger schedules fn under key, replacing anything still waiting under that key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.gen[key]++
	gen := d.gen[key]
	d.pending[key] = fn
	d.timers[key] = time.AfterFunc(d.window, func() { d.fire(key, gen) })
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	if d.gen[key] != gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending[key]
	delete(d.pending, key)
	delete(d.timers, key)
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	if fn != nil {
		fn()
	}
}

// Pending returns the number of keys waiting for their window to elapse.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Cancel drops everything still waiting.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		d.gen[key]++
	}
	d.timers = make(map[string]*time.Timer)
	d.pending = make(map[string]func())
}

// Flush runs everything still waiting now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, fn := range d.pending {
		d.timers[key].Stop()
		d.gen[key]++
		fns = append(fns, fn)
	}
	d.timers = make(map[string]*time.Timer)
	d.pending = make(map[string]func())
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Wait blocks until the calls already fired have returned.
func (d *Debouncer) Wait() {
	d.inflight.Wait()
}
