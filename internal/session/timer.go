package session

import (
	"sync"
	"time"
)

// RestTimer is a monotonically decreasing countdown. It ticks once per
// interval (one second in production), fires a single ended event when it
// reaches zero, and can be skipped (fires the event immediately, suppresses
// further ticks) or stopped (no event, for teardown). It holds no persistent
// state and is rebuilt fresh on every activation.
type RestTimer struct {
	interval time.Duration

	mu        sync.Mutex
	remaining int

	done       chan struct{}
	cancel     chan struct{}
	endOnce    sync.Once
	cancelOnce sync.Once
}

// NewRestTimer creates a timer counting down from seconds. The tick interval
// is configurable so tests do not sleep a wall-clock second per tick.
func NewRestTimer(seconds int, interval time.Duration) *RestTimer {
	return &RestTimer{
		interval:  interval,
		remaining: seconds,
		done:      make(chan struct{}),
		cancel:    make(chan struct{}),
	}
}

// Start begins the countdown. A timer created with zero or negative seconds
// ends immediately.
func (t *RestTimer) Start() {
	t.mu.Lock()
	rem := t.remaining
	t.mu.Unlock()
	if rem <= 0 {
		t.finish()
		return
	}
	go t.run()
}

func (t *RestTimer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			t.remaining--
			rem := t.remaining
			t.mu.Unlock()
			if rem <= 0 {
				t.finish()
				return
			}
		case <-t.cancel:
			return
		}
	}
}

// Done is closed exactly once, when the countdown reaches zero or Skip is
// called. Stop never closes it.
func (t *RestTimer) Done() <-chan struct{} {
	return t.done
}

// Remaining reports the seconds left.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Skip ends the countdown immediately: ticks stop and the ended event fires
// (once, even if the timer was about to expire on its own).
func (t *RestTimer) Skip() {
	t.stopTicks()
	t.finish()
}

// Stop cancels the countdown without firing the ended event.
func (t *RestTimer) Stop() {
	t.stopTicks()
}

func (t *RestTimer) stopTicks() {
	t.cancelOnce.Do(func() { close(t.cancel) })
}

func (t *RestTimer) finish() {
	t.endOnce.Do(func() { close(t.done) })
}
