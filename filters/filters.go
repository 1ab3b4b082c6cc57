// Package filters holds the current filter selection and notifies a single
// registered listener after a short quiet period, coalescing rapid UI input
// into one recompute.
package filters

import (
	"sync"
	"time"

	"github.com/enrollmap/enrollmap/enroll"
)

// DefaultQuiet is the debounce window applied to selection changes.
const DefaultQuiet = 100 * time.Millisecond

// Listener receives the selection once the quiet period passes.
type Listener func(enroll.Selection)

// Filters is safe for concurrent use; HTTP handlers mutate it.
type Filters struct {
	mu       sync.Mutex
	sel      enroll.Selection
	listener Listener
	quiet    time.Duration
	timer    *time.Timer
}

// Option configures a Filters.
type Option func(*Filters)

// WithQuiet overrides the debounce window. Zero fires synchronously.
func WithQuiet(d time.Duration) Option {
	return func(f *Filters) { f.quiet = d }
}

// New creates a filter state holder with an empty selection.
func New(opts ...Option) *Filters {
	f := &Filters{quiet: DefaultQuiet}
	for _, o := range opts {
		o(f)
	}
	return f
}

// OnChange registers the listener. Only one listener is supported; a second
// registration replaces the first.
func (f *Filters) OnChange(fn Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = fn
}

// Current returns the selection as of now.
func (f *Filters) Current() enroll.Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sel
}

// Set replaces the selection and schedules notification. Further calls
// inside the quiet window reset the timer, so only the final selection is
// delivered.
func (f *Filters) Set(sel enroll.Selection) {
	f.mu.Lock()
	f.sel = sel
	fn := f.listener
	if fn == nil {
		f.mu.Unlock()
		return
	}
	if f.quiet <= 0 {
		f.mu.Unlock()
		fn(sel)
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.quiet, func() {
		f.mu.Lock()
		cur := f.sel
		cb := f.listener
		f.mu.Unlock()
		if cb != nil {
			cb(cur)
		}
	})
	f.mu.Unlock()
}

// Flush fires any pending notification immediately. Used on shutdown and in
// tests.
func (f *Filters) Flush() {
	f.mu.Lock()
	if f.timer == nil || !f.timer.Stop() {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	cur := f.sel
	cb := f.listener
	f.mu.Unlock()
	if cb != nil {
		cb(cur)
	}
}
