package display

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce window for resize notifications
const DefaultQuietPeriod = 50 * time.Millisecond

// Fitter debounces window resize notifications: the fit only runs after a
// quiet period with no further notifications. Bursts of notifications
// inside the window collapse into a single fit.
type Fitter struct {
	mu    sync.Mutex
	timer *time.Timer
	quiet time.Duration
	fit   func()
}

// NewFitter creates a fitter invoking fit after each settled resize burst.
// A non-positive quiet period falls back to DefaultQuietPeriod.
func NewFitter(fit func(), quiet time.Duration) *Fitter {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Fitter{
		quiet: quiet,
		fit:   fit,
	}
}

// Notify records a resize notification, cancelling any pending fit and
// scheduling a fresh one a quiet period from now.
func (f *Fitter) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.quiet, f.fit)
}

// Cancel stops any pending fit
func (f *Fitter) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
