package session

import (
	"sync"
	"time"
)

// Stopwatch tracks elapsed workout time. It is read at save time and reset
// with the session. Elapsed time is not persisted; a process restart
// mid-workout loses it.
type Stopwatch struct {
	mu      sync.Mutex
	start   time.Time
	running bool
	now     func() time.Time
}

// NewStopwatch returns a stopped stopwatch.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

// Start begins timing. Starting a running stopwatch is a no-op, so the
// first exercise of a session anchors the start time.
func (w *Stopwatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.start = w.now()
	w.running = true
}

// Running reports whether the stopwatch has been started.
func (w *Stopwatch) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Elapsed returns whole elapsed seconds, 0 if never started.
func (w *Stopwatch) Elapsed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return 0
	}
	return int(w.now().Sub(w.start) / time.Second)
}

// Reset stops the stopwatch and clears the elapsed time.
func (w *Stopwatch) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.start = time.Time{}
}
