package session

import (
	"testing"
	"time"
)

const tick = 2 * time.Millisecond

func waitDone(t *testing.T, timer *RestTimer) {
	t.Helper()
	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("timer did not end")
	}
}

// TestRestTimerCountsToZero verifies the countdown reaches zero and fires the
// ended event.
func TestRestTimerCountsToZero(t *testing.T) {
	timer := NewRestTimer(3, tick)
	timer.Start()
	waitDone(t, timer)
	if rem := timer.Remaining(); rem != 0 {
		t.Errorf("remaining = %d, want 0", rem)
	}
}

// TestRestTimerSkip verifies skip fires the ended event immediately and
// suppresses further ticks.
func TestRestTimerSkip(t *testing.T) {
	timer := NewRestTimer(3600, tick)
	timer.Start()
	timer.Skip()
	waitDone(t, timer)

	rem := timer.Remaining()
	time.Sleep(10 * tick)
	if got := timer.Remaining(); got != rem {
		t.Errorf("remaining moved from %d to %d after skip", rem, got)
	}
}

// TestRestTimerStopFiresNoEvent verifies teardown cancels the countdown
// without the ended event.
func TestRestTimerStopFiresNoEvent(t *testing.T) {
	timer := NewRestTimer(3600, tick)
	timer.Start()
	timer.Stop()

	select {
	case <-timer.Done():
		t.Fatal("stop fired the ended event")
	case <-time.After(10 * tick):
	}
}

// TestRestTimerZeroDuration verifies a zero-duration timer ends immediately.
func TestRestTimerZeroDuration(t *testing.T) {
	timer := NewRestTimer(0, tick)
	timer.Start()
	waitDone(t, timer)
}

// TestRestTimerSkipAfterEndIsIdempotent verifies the ended event fires
// exactly once even when skip races the natural expiry.
func TestRestTimerSkipAfterEndIsIdempotent(t *testing.T) {
	timer := NewRestTimer(1, tick)
	timer.Start()
	waitDone(t, timer)
	timer.Skip() // must not panic on a second close
}
